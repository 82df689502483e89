package otlayout

import (
	"github.com/npillmayer/otview/ot"
)

// LookupWouldSubstitute reports whether GSUB lookup number lookup would
// substitute the glyph sequence glyphs as a whole, i.e. whether the lookup
// matches at the first glyph and consumes exactly the given glyphs. Glyph
// properties, lookup flags and nested lookups are not taken into account.
//
// With zeroContext set, contextual rules requiring backtrack or lookahead
// glyphs do not match.
func LookupWouldSubstitute(face *ot.Face, lookup int, glyphs []ot.GlyphIndex, zeroContext bool) bool {
	accel := accelerator(face, ot.TagGSUB, lookup)
	if accel == nil || len(glyphs) == 0 || !accel.digest.mayHave(glyphs[0]) {
		return false
	}
	for _, st := range accel.subtables {
		if wouldApply(st, glyphs, zeroContext) {
			return true
		}
	}
	return false
}

func wouldApply(st ot.LookupSubtable, glyphs []ot.GlyphIndex, zeroContext bool) bool {
	switch st.Type {
	case ot.GSubLookupTypeSingle, ot.GSubLookupTypeMultiple, ot.GSubLookupTypeAlternate,
		ot.GSubLookupTypeReverseChaining:
		return len(glyphs) == 1 && st.Coverage().Contains(glyphs[0])
	case ot.GSubLookupTypeLigature:
		inx, ok := st.Coverage().Index(glyphs[0])
		if !ok {
			return false
		}
		for lig := range st.Ligatures(inx) {
			if matchesWhole(glyphSequence(componentValues(lig.Components)), glyphs) {
				return true
			}
		}
	case ot.GSubLookupTypeContext, ot.GSubLookupTypeChainingContext:
		for rule := range rulesFor(st.SequenceContext(), glyphs[0]) {
			if zeroContext && (rule.backtrack.len() > 0 || rule.lookahead.len() > 0) {
				continue
			}
			if matchesWhole(rule.input, glyphs) {
				return true
			}
		}
	}
	return false
}

// matchesWhole reports whether input, preceded by the first glyph, matches
// glyphs exactly.
func matchesWhole(input sequence, glyphs []ot.GlyphIndex) bool {
	if input.len()+1 != len(glyphs) {
		return false
	}
	for i := 0; i < input.len(); i++ {
		if !input.matches(i, glyphs[i+1]) {
			return false
		}
	}
	return true
}
