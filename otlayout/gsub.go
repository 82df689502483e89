package otlayout

import (
	"math/bits"

	"github.com/npillmayer/otview/ot"
)

// applyGSub applies a GSUB subtable at the cursor. Unknown lookup types and
// formats never apply.
func (c *applyCtx) applyGSub(st ot.LookupSubtable) bool {
	switch st.Type {
	case ot.GSubLookupTypeSingle:
		return c.gsubSingle(st)
	case ot.GSubLookupTypeMultiple:
		return c.gsubMultiple(st)
	case ot.GSubLookupTypeAlternate:
		return c.gsubAlternate(st)
	case ot.GSubLookupTypeLigature:
		return c.gsubLigature(st)
	case ot.GSubLookupTypeContext, ot.GSubLookupTypeChainingContext:
		return c.applyContext(st.SequenceContext())
	case ot.GSubLookupTypeReverseChaining:
		return c.gsubReverseChain(st)
	}
	return false
}

// GSUB LookupType 1: Single Substitution Subtable
//
// Single substitution subtables tell a client to replace a single glyph with
// another glyph. Format 1 adds a constant delta to the glyph index, format 2
// lists a substitute for every covered glyph.
func (c *applyCtx) gsubSingle(st ot.LookupSubtable) bool {
	g, ok := st.SingleSubstitute(c.buf.Cur().Glyph)
	if !ok {
		return false
	}
	tracer().Debugf("GSUB 1/%d: subst %d for %d", st.Format(), g, c.buf.Cur().Glyph)
	c.replaceGlyph(g)
	return true
}

// GSUB LookupType 2: Multiple Substitution Subtable
//
// A multiple substitution subtable replaces a single glyph with more than one
// glyph, as when multiple glyphs replace a single ligature. An empty sequence
// deletes the glyph, which the OpenType specification disallows but which is
// common practice.
func (c *applyCtx) gsubMultiple(st ot.LookupSubtable) bool {
	buf := c.buf
	inx, ok := st.Coverage().Index(buf.Cur().Glyph)
	if !ok || inx >= st.SequenceCount() {
		return false
	}
	seq := st.Sequence(inx)
	switch len(seq) {
	case 0:
		buf.skipGlyph()
		return true
	case 1:
		c.replaceGlyph(seq[0])
		return true
	}
	var guess ot.GlyphProps
	if buf.Cur().Props&ot.GlyphPropsLigature != 0 {
		guess = ot.GlyphPropsBaseGlyph
	}
	for i, g := range seq {
		cur := buf.Cur()
		cur.LigComponent = i
		c.setGlyphProps(cur, g, guess, false, true)
		buf.OutputGlyph(g)
	}
	buf.skipGlyph()
	return true
}

// GSUB LookupType 3: Alternate Substitution Subtable
//
// An alternate substitution subtable identifies any number of aesthetic
// alternatives from which a user can choose a glyph variant to replace the
// input glyph. The alternative is selected by the value of the lookup mask
// bits in the glyph's mask, 1 being the first alternate.
func (c *applyCtx) gsubAlternate(st ot.LookupSubtable) bool {
	cur := c.buf.Cur()
	inx, ok := st.Coverage().Index(cur.Glyph)
	if !ok {
		return false
	}
	alts := st.Alternates(inx)
	if len(alts) == 0 {
		return false
	}
	shift := bits.TrailingZeros32(c.lookupMask)
	alt := int((c.lookupMask & cur.Mask) >> shift)
	if alt == 0 || alt > len(alts) {
		return false
	}
	c.replaceGlyph(alts[alt-1])
	return true
}

// GSUB LookupType 4: Ligature Substitution Subtable
//
// A ligature substitution subtable identifies ligature substitutions where a
// single glyph replaces multiple glyphs. Ligatures of a ligature set are
// tried in order of preference, the first one matching applies. Glyphs skipped
// by the lookup flags (usually marks) are kept and follow the ligature.
func (c *applyCtx) gsubLigature(st ot.LookupSubtable) bool {
	inx, ok := st.Coverage().Index(c.buf.Cur().Glyph)
	if !ok {
		return false
	}
	for lig := range st.Ligatures(inx) {
		count := len(lig.Components) + 1
		if count > ot.MaxContextLength {
			continue
		}
		positions := make([]int, count)
		end, ok := c.matchInput(glyphSequence(componentValues(lig.Components)), positions)
		if !ok {
			continue
		}
		tracer().Debugf("GSUB 4/1: ligature %d for %d glyphs", lig.Glyph, count)
		c.ligate(positions, end, lig.Glyph)
		return true
	}
	return false
}

func componentValues(components []ot.GlyphIndex) []uint16 {
	values := make([]uint16, len(components))
	for i, g := range components {
		values[i] = uint16(g)
	}
	return values
}

// ligate replaces the glyphs at positions by a ligature glyph. Glyphs between
// the components are moved behind the ligature and remember the component they
// followed.
func (c *applyCtx) ligate(positions []int, end int, lig ot.GlyphIndex) {
	buf := c.buf
	markLigature := true
	for _, p := range positions {
		if buf.Info[p].Props&ot.GlyphPropsMark == 0 {
			markLigature = false
			break
		}
	}
	var guess ot.GlyphProps
	if !markLigature {
		guess = ot.GlyphPropsLigature
	}
	buf.mergeClusters(buf.Idx, end)
	c.setGlyphProps(buf.Cur(), lig, guess, true, false)
	buf.ReplaceGlyph(lig)
	for i := 1; i < len(positions); i++ {
		for buf.Idx < positions[i] {
			if !markLigature {
				buf.Cur().LigComponent = i
			}
			buf.NextGlyph()
		}
		buf.skipGlyph()
	}
}

// GSUB LookupType 8: Reverse Chaining Contextual Single Substitution Subtable
//
// Reverse chaining substitution is applied from the end of the glyph sequence
// to its start, substituting single glyphs in place. It is not allowed to
// invoke this type from a contextual lookup.
func (c *applyCtx) gsubReverseChain(st ot.LookupSubtable) bool {
	if c.nestingLeft != MaxNestingLevel {
		return false
	}
	inx, ok := st.Coverage().Index(c.buf.Cur().Glyph)
	if !ok {
		return false
	}
	rc := st.ReverseChain()
	if inx >= len(rc.Substitutes) {
		return false
	}
	if !c.matchBacktrack(coverageSequence(rc.Backtrack)) ||
		!c.matchLookahead(coverageSequence(rc.Lookahead), c.buf.Idx+1) {
		return false
	}
	c.replaceGlyphInPlace(rc.Substitutes[inx])
	return true
}
