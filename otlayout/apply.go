package otlayout

import (
	"github.com/npillmayer/otview/ot"
)

// MaxNestingLevel is the maximum depth of lookups invoking other lookups from
// contextual rules.
const MaxNestingLevel = 6

// Limits on the number of nested lookup invocations per application, relative
// to the length of the buffer.
const (
	maxOpsFactor = 64
	maxOpsMin    = 16384
)

// Glyph properties set during substitution, in addition to the GDEF glyph
// class bits of ot.GlyphProps.
const (
	GlyphPropsSubstituted ot.GlyphProps = 0x10 // glyph results from a substitution
	GlyphPropsLigated     ot.GlyphProps = 0x20 // glyph results from a ligature substitution
	GlyphPropsMultiplied  ot.GlyphProps = 0x40 // glyph results from a multiple substitution

	glyphPropsPreserve = GlyphPropsSubstituted | GlyphPropsLigated | GlyphPropsMultiplied
)

// applyCtx holds the state of applying lookups of one layout table to a buffer.
type applyCtx struct {
	face            *ot.Face
	table           ot.Tag
	gdef            *ot.GDEF
	hasGlyphClasses bool
	accels          []*lookupAccel
	buf             *Buffer
	lookupMask      uint32
	lookupProps     uint32
	lookupIndex     int
	nestingLeft     int
}

func newApplyCtx(face *ot.Face, table ot.Tag, buf *Buffer) *applyCtx {
	gdef := GDEF(face)
	return &applyCtx{
		face:            face,
		table:           table,
		gdef:            gdef,
		hasGlyphClasses: gdef.HasGlyphClasses(),
		accels:          accelerators(face, table),
		buf:             buf,
		lookupMask:      GlobalMask,
		lookupIndex:     -1,
		nestingLeft:     MaxNestingLevel,
	}
}

func (buf *Buffer) resetOps() {
	buf.opsLeft = max(len(buf.Info)*maxOpsFactor, maxOpsMin)
}

func (buf *Buffer) ensurePositions() {
	if len(buf.Pos) != len(buf.Info) {
		buf.Pos = make([]GlyphPosition, len(buf.Info))
	}
}

// ApplyLookup applies lookup number lookup of layout table table (GSUB or
// GPOS) to buf. Only glyphs with a mask intersecting mask are considered as
// starting points of a match. It reports whether the lookup applied anywhere.
//
// Lookup flags filter glyphs by their glyph properties. Clients should call
// buf.SetGlyphProps before applying lookups.
func ApplyLookup(face *ot.Face, table ot.Tag, lookup int, buf *Buffer, mask uint32) bool {
	if buf == nil {
		return false
	}
	c := newApplyCtx(face, table, buf)
	if lookup < 0 || lookup >= len(c.accels) {
		tracer().Debugf("%s has no lookup #%d", table, lookup)
		return false
	}
	buf.resetOps()
	if table == ot.TagGPOS {
		buf.ensurePositions()
	}
	c.lookupMask = mask
	return c.applyString(lookup)
}

// applyString applies a lookup to the whole buffer.
func (c *applyCtx) applyString(lookup int) bool {
	buf := c.buf
	if buf.Len() == 0 || c.lookupMask == 0 {
		return false
	}
	accel := c.accels[lookup]
	c.lookupIndex = lookup
	c.lookupProps = accel.lookup.Props()
	if accel.lookup.IsReverse() {
		buf.RemoveOutput()
		buf.Idx = buf.Len() - 1
		return c.applyBackward(accel)
	}
	if c.table == ot.TagGSUB {
		buf.ClearOutput()
	} else {
		buf.RemoveOutput()
	}
	buf.Idx = 0
	applied := c.applyForward(accel)
	if c.table == ot.TagGSUB {
		buf.SwapBuffers()
	}
	return applied
}

func (c *applyCtx) applies(accel *lookupAccel, info *GlyphInfo) bool {
	return accel.digest.mayHave(info.Glyph) && info.Mask&c.lookupMask != 0 &&
		c.checkGlyphProperty(info, c.lookupProps)
}

func (c *applyCtx) applyForward(accel *lookupAccel) bool {
	buf, ret := c.buf, false
	for buf.Idx < buf.Len() {
		if c.applies(accel, buf.Cur()) && c.applySubtables(accel, true) {
			ret = true
			continue
		}
		buf.NextGlyph()
	}
	return ret
}

// applyBackward applies a reverse chaining lookup. Substitutions are done in
// place and do not move the cursor.
func (c *applyCtx) applyBackward(accel *lookupAccel) bool {
	buf, ret := c.buf, false
	for ; buf.Idx >= 0; buf.Idx-- {
		if c.applies(accel, buf.Cur()) {
			ret = c.applySubtables(accel, true) || ret
		}
	}
	buf.Idx = 0
	return ret
}

// applySubtables applies the first subtable of a lookup matching at the cursor.
func (c *applyCtx) applySubtables(accel *lookupAccel, useDigests bool) bool {
	g := c.buf.Cur().Glyph
	for i, st := range accel.subtables {
		if useDigests && !accel.digests[i].mayHave(g) {
			continue
		}
		if c.applySubtable(st) {
			return true
		}
	}
	return false
}

func (c *applyCtx) applySubtable(st ot.LookupSubtable) bool {
	switch st.Table {
	case ot.TagGSUB:
		return c.applyGSub(st)
	case ot.TagGPOS:
		return c.applyGPos(st)
	}
	return false
}

// recurse applies a nested lookup at the cursor, on behalf of a contextual
// rule. The lookup mask is kept, the lookup flags are the nested lookup's.
func (c *applyCtx) recurse(lookup int) bool {
	if c.nestingLeft == 0 || c.buf.opsLeft <= 0 || lookup < 0 || lookup >= len(c.accels) {
		return false
	}
	c.buf.opsLeft--
	accel := c.accels[lookup]
	savedProps, savedIndex := c.lookupProps, c.lookupIndex
	c.lookupProps, c.lookupIndex = accel.lookup.Props(), lookup
	c.nestingLeft--
	ret := c.applySubtables(accel, false)
	c.nestingLeft++
	c.lookupProps, c.lookupIndex = savedProps, savedIndex
	return ret
}

// checkGlyphProperty reports whether a glyph takes part in matching under the
// lookup flags and mark filtering set in matchProps.
func (c *applyCtx) checkGlyphProperty(info *GlyphInfo, matchProps uint32) bool {
	props := uint32(info.Props)
	if props&matchProps&uint32(ot.LOOKUP_FLAG_IGNORE_FLAGS) != 0 {
		return false
	}
	if info.Props&ot.GlyphPropsMark == 0 {
		return true
	}
	if matchProps&uint32(ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET) != 0 {
		return c.gdef.MarkSetCovers(int(matchProps>>16), info.Glyph)
	}
	if attach := matchProps & uint32(ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK); attach != 0 {
		return attach == props&uint32(ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK)
	}
	return true
}

// setGlyphProps updates the properties of info for a substitution by glyph g.
// Glyph classes are taken from GDEF if it has any, otherwise from guess.
func (c *applyCtx) setGlyphProps(info *GlyphInfo, g ot.GlyphIndex, guess ot.GlyphProps, ligature, component bool) {
	props := info.Props | GlyphPropsSubstituted
	if ligature {
		props |= GlyphPropsLigated
		props &^= GlyphPropsMultiplied
	}
	if component {
		props |= GlyphPropsMultiplied
	}
	switch {
	case c.hasGlyphClasses:
		props = props&glyphPropsPreserve | c.gdef.GlyphProps(g)
	case guess != 0:
		props = props&glyphPropsPreserve | guess
	}
	info.Props = props
}

// replaceGlyph substitutes the glyph at the cursor and advances the cursor.
func (c *applyCtx) replaceGlyph(g ot.GlyphIndex) {
	c.setGlyphProps(c.buf.Cur(), g, 0, false, false)
	c.buf.ReplaceGlyph(g)
}

// replaceGlyphInPlace substitutes the glyph at the cursor without moving it.
func (c *applyCtx) replaceGlyphInPlace(g ot.GlyphIndex) {
	cur := c.buf.Cur()
	c.setGlyphProps(cur, g, 0, false, false)
	cur.Glyph = g
}
