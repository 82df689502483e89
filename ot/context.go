package ot

import "iter"

// Sequence context subtables are shared between GSUB (lookup types 5 and 6)
// and GPOS (lookup types 7 and 8). They describe glyph sequences in terms of
// glyph IDs (format 1), glyph classes (format 2) or coverage tables (format 3),
// and nested lookups to apply to positions of a matched sequence.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-1-simple-glyph-contexts

// MaxContextLength is the maximum length of a context sequence we will match.
const MaxContextLength = 64

// SequenceLookupRecord identifies a nested lookup to apply at a position
// within a matched input sequence.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

// ContextRule is a rule of a format 1 or format 2 sequence context.
// Values are glyph IDs for format 1 and class values for format 2.
type ContextRule struct {
	Backtrack  []uint16 // Backtrack[0] is the value immediately preceding the input
	InputCount int      // length of the input sequence, including the first glyph
	Input      []uint16 // input sequence, excluding the first glyph
	Lookahead  []uint16
	Lookups    []SequenceLookupRecord
}

// CoverageRule is the single rule of a format 3 sequence context.
type CoverageRule struct {
	Backtrack []Coverage // Backtrack[0] covers the glyph immediately preceding the input
	Input     []Coverage // including the first glyph
	Lookahead []Coverage
	Lookups   []SequenceLookupRecord
}

// SequenceContext is a view onto a (chained) sequence context subtable.
type SequenceContext struct {
	chained bool
	data    binarySegm
}

// SequenceContext returns a view onto a contextual subtable. For subtables of
// other lookup types an empty SequenceContext is returned.
func (st LookupSubtable) SequenceContext() SequenceContext {
	switch {
	case st.Table == TagGSUB && st.Type == GSubLookupTypeContext,
		st.Table == TagGPOS && st.Type == GPosLookupTypeContextPos:
		return SequenceContext{data: st.data}
	case st.Table == TagGSUB && st.Type == GSubLookupTypeChainingContext,
		st.Table == TagGPOS && st.Type == GPosLookupTypeChainedContextPos:
		return SequenceContext{chained: true, data: st.data}
	}
	return SequenceContext{}
}

// IsChained reports whether the context has backtrack and lookahead sequences.
func (sc SequenceContext) IsChained() bool {
	return sc.chained
}

// Format returns the format of the subtable, or 0 for an empty view.
func (sc SequenceContext) Format() uint16 {
	return sc.data.U16(0)
}

// Coverage returns the coverage of the first glyph of the input sequence.
func (sc SequenceContext) Coverage() Coverage {
	switch sc.Format() {
	case 1, 2:
		return Coverage{data: sc.data.link16(2)}
	case 3:
		if r := sc.CoverageRule(); len(r.Input) > 0 {
			return r.Input[0]
		}
	}
	return Coverage{}
}

// ClassDefs returns the class definitions of a format 2 context. For
// non-chained contexts, backtrack and lookahead are empty.
func (sc SequenceContext) ClassDefs() (backtrack, input, lookahead ClassDef) {
	if sc.Format() != 2 {
		return
	}
	if !sc.chained {
		return ClassDef{}, ClassDef{data: sc.data.link16(4)}, ClassDef{}
	}
	return ClassDef{data: sc.data.link16(4)}, ClassDef{data: sc.data.link16(6)}, ClassDef{data: sc.data.link16(8)}
}

func (sc SequenceContext) ruleSetsAt() int {
	if sc.Format() == 2 && sc.chained {
		return 12
	} else if sc.Format() == 2 {
		return 8
	}
	return 6
}

// RuleSetCount returns the number of rule sets of a format 1 or 2 context.
// Rule sets are indexed by coverage index (format 1) or by input class (format 2).
func (sc SequenceContext) RuleSetCount() int {
	if f := sc.Format(); f != 1 && f != 2 {
		return 0
	}
	return int(sc.data.U16(sc.ruleSetsAt() - 2))
}

// Rules iterates over the rules of rule set number set.
func (sc SequenceContext) Rules(set int) iter.Seq[ContextRule] {
	return func(yield func(ContextRule) bool) {
		if set < 0 || set >= sc.RuleSetCount() {
			return
		}
		ruleSet := sc.data.link16(sc.ruleSetsAt() + 2*set)
		for i := 0; i < int(ruleSet.U16(0)); i++ {
			rule := ruleSet.link16(2 + 2*i)
			if rule == nil {
				continue
			}
			if !yield(decodeContextRule(rule, sc.chained)) {
				return
			}
		}
	}
}

func u16Array(b binarySegm, at, count int) []uint16 {
	if count <= 0 {
		return nil
	}
	r := make([]uint16, count)
	for i := range r {
		r[i] = b.U16(at + 2*i)
	}
	return r
}

func lookupRecords(b binarySegm, at, count int) []SequenceLookupRecord {
	if count <= 0 {
		return nil
	}
	r := make([]SequenceLookupRecord, count)
	for i := range r {
		r[i] = SequenceLookupRecord{
			SequenceIndex:   b.U16(at + 4*i),
			LookupListIndex: b.U16(at + 4*i + 2),
		}
	}
	return r
}

func decodeContextRule(b binarySegm, chained bool) ContextRule {
	var r ContextRule
	at := 0
	if chained {
		n := int(b.U16(at))
		r.Backtrack = u16Array(b, at+2, n)
		at += 2 + 2*n
		r.InputCount = int(b.U16(at))
		r.Input = u16Array(b, at+2, r.InputCount-1)
		at += 2 + 2*max(0, r.InputCount-1)
		n = int(b.U16(at))
		r.Lookahead = u16Array(b, at+2, n)
		at += 2 + 2*n
		n = int(b.U16(at))
		r.Lookups = lookupRecords(b, at+2, n)
		return r
	}
	r.InputCount = int(b.U16(0))
	n := int(b.U16(2))
	r.Input = u16Array(b, 4, r.InputCount-1)
	r.Lookups = lookupRecords(b, 4+2*max(0, r.InputCount-1), n)
	return r
}

func coverageArray(b binarySegm, at, count int) []Coverage {
	if count <= 0 {
		return nil
	}
	r := make([]Coverage, count)
	for i := range r {
		r[i] = Coverage{data: b.link16(at + 2*i)}
	}
	return r
}

// CoverageRule returns the rule of a format 3 context.
func (sc SequenceContext) CoverageRule() CoverageRule {
	var r CoverageRule
	if sc.Format() != 3 {
		return r
	}
	b := sc.data
	if !sc.chained {
		n, m := int(b.U16(2)), int(b.U16(4))
		r.Input = coverageArray(b, 6, n)
		r.Lookups = lookupRecords(b, 6+2*n, m)
		return r
	}
	at := 2
	n := int(b.U16(at))
	r.Backtrack = coverageArray(b, at+2, n)
	at += 2 + 2*n
	n = int(b.U16(at))
	r.Input = coverageArray(b, at+2, n)
	at += 2 + 2*n
	n = int(b.U16(at))
	r.Lookahead = coverageArray(b, at+2, n)
	at += 2 + 2*n
	r.Lookups = lookupRecords(b, at+2, int(b.U16(at)))
	return r
}

// --- Sanitization ----------------------------------------------------------

func sanitizeCoverageLink(s *sanitizer, b binarySegm, at int) bool {
	link, ok := s.offset16("Coverage", b, at)
	if !ok {
		return false
	}
	_, ok = sanitizeCoverage(s, link)
	return ok
}

func sanitizeClassDefLink(s *sanitizer, b binarySegm, at int) bool {
	link, ok := s.offset16("ClassDef", b, at)
	if !ok {
		return false
	}
	_, ok = sanitizeClassDef(s, link)
	return ok
}

// sanitizeCoverageLinks checks a count-prefixed array of coverage offsets at position at,
// and returns the position after the array.
func sanitizeCoverageLinks(s *sanitizer, b binarySegm, at int) (int, bool) {
	if !s.check("Context", b, at, 2) {
		return 0, false
	}
	n := int(b.U16(at))
	if !s.checkArray("Context", b, at+2, n, 2) {
		return 0, false
	}
	for i := 0; i < n; i++ {
		if !sanitizeCoverageLink(s, b, at+2+2*i) {
			return 0, false
		}
	}
	return at + 2 + 2*n, true
}

func sanitizeSequenceContext(s *sanitizer, b binarySegm, chained bool) bool {
	if !s.check("Context", b, 0, 2) {
		return false
	}
	switch b.U16(0) {
	case 1, 2:
		sc := SequenceContext{chained: chained, data: b}
		at := sc.ruleSetsAt()
		if !s.check("Context", b, 0, at) || !sanitizeCoverageLink(s, b, 2) {
			return false
		}
		if b.U16(0) == 2 {
			for cd := 4; cd < at-2; cd += 2 {
				if !sanitizeClassDefLink(s, b, cd) {
					return false
				}
			}
		}
		count := int(b.U16(at - 2))
		if !s.checkArray("Context", b, at, count, 2) {
			return false
		}
		for i := 0; i < count; i++ {
			ruleSet, ok := s.offset16("RuleSet", b, at+2*i)
			if !ok || (ruleSet != nil && !sanitizeRuleSet(s, ruleSet, chained)) {
				return false
			}
		}
		return true
	case 3:
		if !chained {
			if !s.check("Context", b, 0, 6) {
				return false
			}
			n, m := int(b.U16(2)), int(b.U16(4))
			if !s.checkArray("Context", b, 6, n, 2) || !s.checkArray("Context", b, 6+2*n, m, 4) {
				return false
			}
			for i := 0; i < n; i++ {
				if !sanitizeCoverageLink(s, b, 6+2*i) {
					return false
				}
			}
			return true
		}
		at, ok := 2, true
		for range 3 { // backtrack, input, lookahead
			if at, ok = sanitizeCoverageLinks(s, b, at); !ok {
				return false
			}
		}
		return s.check("Context", b, at, 2) && s.checkArray("Context", b, at+2, int(b.U16(at)), 4)
	}
	return true // unknown formats are ignored
}

func sanitizeRuleSet(s *sanitizer, b binarySegm, chained bool) bool {
	if !s.check("RuleSet", b, 0, 2) {
		return false
	}
	count := int(b.U16(0))
	if !s.checkArray("RuleSet", b, 2, count, 2) {
		return false
	}
	for i := 0; i < count; i++ {
		rule, ok := s.offset16("Rule", b, 2+2*i)
		if !ok || (rule != nil && !sanitizeRule(s, rule, chained)) {
			return false
		}
	}
	return true
}

func sanitizeRule(s *sanitizer, b binarySegm, chained bool) bool {
	if !chained {
		if !s.check("Rule", b, 0, 4) {
			return false
		}
		n := max(0, int(b.U16(0))-1)
		return s.checkArray("Rule", b, 4, n, 2) && s.checkArray("Rule", b, 4+2*n, int(b.U16(2)), 4)
	}
	at := 0
	for i := range 3 { // backtrack, input, lookahead
		if !s.check("Rule", b, at, 2) {
			return false
		}
		n := int(b.U16(at))
		if i == 1 {
			n = max(0, n-1)
		}
		if !s.checkArray("Rule", b, at+2, n, 2) {
			return false
		}
		at += 2 + 2*n
	}
	return s.check("Rule", b, at, 2) && s.checkArray("Rule", b, at+2, int(b.U16(at)), 4)
}
