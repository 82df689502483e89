package otlayout

import "github.com/npillmayer/otview/ot"

// applyGPos applies a GPOS subtable at the cursor. Positioning is done in
// place. Attachment lookups (cursive and mark attachment) need glyph metrics
// and are left to shaping clients; they never apply here.
func (c *applyCtx) applyGPos(st ot.LookupSubtable) bool {
	switch st.Type {
	case ot.GPosLookupTypeSingle:
		return c.gposSingle(st)
	case ot.GPosLookupTypePair:
		return c.gposPair(st)
	case ot.GPosLookupTypeContextPos, ot.GPosLookupTypeChainedContextPos:
		return c.applyContext(st.SequenceContext())
	}
	return false
}

// applyValueRecord adds the adjustments of a value record to a glyph position.
// Placements become offsets, advances are added to advances.
func applyValueRecord(pos *GlyphPosition, vr ot.ValueRecord, vf ot.ValueFormat) bool {
	if vf&ot.ValueFormatXPlacement != 0 {
		pos.XOffset += int32(vr.XPlacement)
	}
	if vf&ot.ValueFormatYPlacement != 0 {
		pos.YOffset += int32(vr.YPlacement)
	}
	if vf&ot.ValueFormatXAdvance != 0 {
		pos.XAdvance += int32(vr.XAdvance)
	}
	if vf&ot.ValueFormatYAdvance != 0 {
		pos.YAdvance += int32(vr.YAdvance)
	}
	return vf != 0
}

// GPOS Lookup Type 1: Single Adjustment, with a single value for all covered
// glyphs (format 1) or one value per covered glyph (format 2).
func (c *applyCtx) gposSingle(st ot.LookupSubtable) bool {
	buf := c.buf
	inx, ok := st.Coverage().Index(buf.Cur().Glyph)
	if !ok {
		return false
	}
	vr, ok := st.SinglePosValue(inx)
	if !ok {
		return false
	}
	applyValueRecord(&buf.Pos[buf.Idx], vr, st.SinglePosFormat())
	buf.Idx++
	return true
}

// GPOS Lookup Type 2: Pair Adjustment, for pairs of glyphs (format 1) or pairs
// of glyph classes (format 2).
//
// The second glyph is the next glyph not skipped by the lookup flags. If the
// subtable adjusts the second glyph, the pair is consumed completely,
// otherwise the second glyph may start another pair.
func (c *applyCtx) gposPair(st ot.LookupSubtable) bool {
	buf := c.buf
	inx, ok := st.Coverage().Index(buf.Cur().Glyph)
	if !ok {
		return false
	}
	j, ok := c.skipForward(buf.Info, buf.Idx, buf.Len(), c.lookupMask)
	if !ok {
		return false
	}
	v1, v2, ok := st.PairPosValues(inx, buf.Cur().Glyph, buf.Info[j].Glyph)
	if !ok {
		return false
	}
	vf1, vf2 := st.PairPosFormats()
	applyValueRecord(&buf.Pos[buf.Idx], v1, vf1)
	applyValueRecord(&buf.Pos[j], v2, vf2)
	tracer().Debugf("GPOS 2/%d: kerning pair (%d, %d)", st.Format(), buf.Cur().Glyph, buf.Info[j].Glyph)
	if vf2 != 0 {
		j++
	}
	buf.Idx = j
	return true
}
