package ot

import "iter"

// GSUB lookup subtables.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/gsub
//
// Accessors in this file interpret a LookupSubtable according to its type and
// return zero values if the subtable is of a different type or format.

// Ligature is a ligature substitution rule: the sequence of the first glyph
// (identified by coverage) followed by Components is replaced by Glyph.
type Ligature struct {
	Glyph      GlyphIndex
	Components []GlyphIndex
}

func (st LookupSubtable) isGSub(t LayoutTableLookupType) bool {
	return st.Table == TagGSUB && st.Type == t
}

// Coverage returns the primary coverage table of a subtable, i.e. the coverage
// of the glyph at the current position. For mark attachment subtables this is
// the mark coverage.
func (st LookupSubtable) Coverage() Coverage {
	if sc := st.SequenceContext(); sc.data != nil {
		return sc.Coverage()
	}
	return Coverage{data: st.data.link16(2)}
}

// SingleSubstitute returns the substitute for glyph g in a single substitution
// subtable. The second return value is false if g is not covered.
func (st LookupSubtable) SingleSubstitute(g GlyphIndex) (GlyphIndex, bool) {
	if !st.isGSub(GSubLookupTypeSingle) {
		return 0, false
	}
	inx, ok := st.Coverage().Index(g)
	if !ok {
		return 0, false
	}
	switch st.Format() {
	case 1:
		return GlyphIndex(int(g) + int(st.data.I16(4))), true
	case 2:
		if inx >= int(st.data.U16(4)) {
			return 0, false
		}
		return st.data.glyph(6 + 2*inx), true
	}
	return 0, false
}

// SingleMappings iterates over all (glyph, substitute) pairs of a single
// substitution subtable.
func (st LookupSubtable) SingleMappings() iter.Seq2[GlyphIndex, GlyphIndex] {
	return func(yield func(GlyphIndex, GlyphIndex) bool) {
		if !st.isGSub(GSubLookupTypeSingle) {
			return
		}
		for inx, g := range st.Coverage().Glyphs() {
			var subst GlyphIndex
			switch st.Format() {
			case 1:
				subst = GlyphIndex(int(g) + int(st.data.I16(4)))
			case 2:
				if inx >= int(st.data.U16(4)) {
					continue
				}
				subst = st.data.glyph(6 + 2*inx)
			default:
				return
			}
			if !yield(g, subst) {
				return
			}
		}
	}
}

func glyphArray(b binarySegm, at, count int) []GlyphIndex {
	if count <= 0 {
		return nil
	}
	r := make([]GlyphIndex, count)
	for i := range r {
		r[i] = b.glyph(at + 2*i)
	}
	return r
}

// indexedGlyphArray follows offset number inx of a count-prefixed offset
// array at position 4 and returns the count-prefixed glyph array found there.
func (st LookupSubtable) indexedGlyphArray(inx int) []GlyphIndex {
	if st.Format() != 1 || inx < 0 || inx >= int(st.data.U16(4)) {
		return nil
	}
	seq := st.data.link16(6 + 2*inx)
	return glyphArray(seq, 2, int(seq.U16(0)))
}

// Sequence returns the replacement sequence for coverage index inx of a
// multiple substitution subtable.
func (st LookupSubtable) Sequence(inx int) []GlyphIndex {
	if !st.isGSub(GSubLookupTypeMultiple) {
		return nil
	}
	return st.indexedGlyphArray(inx)
}

// Alternates returns the alternate glyphs for coverage index inx of an
// alternate substitution subtable.
func (st LookupSubtable) Alternates(inx int) []GlyphIndex {
	if !st.isGSub(GSubLookupTypeAlternate) {
		return nil
	}
	return st.indexedGlyphArray(inx)
}

// SequenceCount returns the number of sequences, alternate sets or ligature
// sets of a multiple, alternate or ligature substitution subtable.
func (st LookupSubtable) SequenceCount() int {
	if st.Table != TagGSUB || st.Format() != 1 {
		return 0
	}
	switch st.Type {
	case GSubLookupTypeMultiple, GSubLookupTypeAlternate, GSubLookupTypeLigature:
		return int(st.data.U16(4))
	}
	return 0
}

// Ligatures iterates over the ligatures of the ligature set for coverage index
// inx of a ligature substitution subtable, in order of preference.
func (st LookupSubtable) Ligatures(inx int) iter.Seq[Ligature] {
	return func(yield func(Ligature) bool) {
		if !st.isGSub(GSubLookupTypeLigature) || st.Format() != 1 || inx < 0 || inx >= int(st.data.U16(4)) {
			return
		}
		set := st.data.link16(6 + 2*inx)
		for i := 0; i < int(set.U16(0)); i++ {
			lig := set.link16(2 + 2*i)
			if lig == nil {
				continue
			}
			n := int(lig.U16(2))
			if !yield(Ligature{Glyph: lig.glyph(0), Components: glyphArray(lig, 4, n-1)}) {
				return
			}
		}
	}
}

// ReverseChainRule is the content of a reverse chaining contextual single
// substitution subtable.
type ReverseChainRule struct {
	Backtrack   []Coverage // Backtrack[0] covers the glyph immediately preceding the input
	Lookahead   []Coverage
	Substitutes []GlyphIndex // indexed by coverage index
}

// ReverseChain returns the rule of a reverse chaining substitution subtable.
func (st LookupSubtable) ReverseChain() ReverseChainRule {
	var r ReverseChainRule
	if !st.isGSub(GSubLookupTypeReverseChaining) || st.Format() != 1 {
		return r
	}
	b := st.data
	at := 4
	n := int(b.U16(at))
	r.Backtrack = coverageArray(b, at+2, n)
	at += 2 + 2*n
	n = int(b.U16(at))
	r.Lookahead = coverageArray(b, at+2, n)
	at += 2 + 2*n
	r.Substitutes = glyphArray(b, at+2, int(b.U16(at)))
	return r
}

// --- Sanitization ----------------------------------------------------------

func sanitizeGSubSubtable(s *sanitizer, st LookupSubtable) bool {
	b := st.data
	if !s.check("GSUB", b, 0, 2) {
		return false
	}
	format := b.U16(0)
	switch st.Type {
	case GSubLookupTypeSingle:
		switch format {
		case 1:
			return s.check("SingleSubst", b, 0, 6) && sanitizeCoverageLink(s, b, 2)
		case 2:
			return s.check("SingleSubst", b, 0, 6) && sanitizeCoverageLink(s, b, 2) &&
				s.checkArray("SingleSubst", b, 6, int(b.U16(4)), 2)
		}
	case GSubLookupTypeMultiple, GSubLookupTypeAlternate:
		if format == 1 {
			return sanitizeGlyphArrays(s, b)
		}
	case GSubLookupTypeLigature:
		if format == 1 {
			return sanitizeLigatureSubst(s, b)
		}
	case GSubLookupTypeContext:
		return sanitizeSequenceContext(s, b, false)
	case GSubLookupTypeChainingContext:
		return sanitizeSequenceContext(s, b, true)
	case GSubLookupTypeReverseChaining:
		if format == 1 {
			return sanitizeReverseChain(s, b)
		}
	}
	return true // unknown types and formats are ignored
}

// sanitizeGlyphArrays checks the structure shared by multiple and alternate
// substitution subtables.
func sanitizeGlyphArrays(s *sanitizer, b binarySegm) bool {
	if !s.check("GSUB", b, 0, 6) || !sanitizeCoverageLink(s, b, 2) {
		return false
	}
	count := int(b.U16(4))
	if !s.checkArray("GSUB", b, 6, count, 2) {
		return false
	}
	for i := 0; i < count; i++ {
		seq, ok := s.offset16("Sequence", b, 6+2*i)
		if !ok {
			return false
		}
		if seq != nil && (!s.check("Sequence", seq, 0, 2) || !s.checkArray("Sequence", seq, 2, int(seq.U16(0)), 2)) {
			return false
		}
	}
	return true
}

func sanitizeLigatureSubst(s *sanitizer, b binarySegm) bool {
	if !s.check("LigatureSubst", b, 0, 6) || !sanitizeCoverageLink(s, b, 2) {
		return false
	}
	count := int(b.U16(4))
	if !s.checkArray("LigatureSubst", b, 6, count, 2) {
		return false
	}
	for i := 0; i < count; i++ {
		set, ok := s.offset16("LigatureSet", b, 6+2*i)
		if !ok {
			return false
		}
		if set == nil {
			continue
		}
		if !s.check("LigatureSet", set, 0, 2) || !s.checkArray("LigatureSet", set, 2, int(set.U16(0)), 2) {
			return false
		}
		for j := 0; j < int(set.U16(0)); j++ {
			lig, ok := s.offset16("Ligature", set, 2+2*j)
			if !ok {
				return false
			}
			if lig != nil && (!s.check("Ligature", lig, 0, 4) ||
				!s.checkArray("Ligature", lig, 4, max(0, int(lig.U16(2))-1), 2)) {
				return false
			}
		}
	}
	return true
}

func sanitizeReverseChain(s *sanitizer, b binarySegm) bool {
	if !s.check("ReverseChain", b, 0, 4) || !sanitizeCoverageLink(s, b, 2) {
		return false
	}
	at, ok := sanitizeCoverageLinks(s, b, 4)
	if !ok {
		return false
	}
	if at, ok = sanitizeCoverageLinks(s, b, at); !ok {
		return false
	}
	return s.check("ReverseChain", b, at, 2) && s.checkArray("ReverseChain", b, at+2, int(b.U16(at)), 2)
}
