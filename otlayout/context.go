package otlayout

import (
	"iter"

	"github.com/npillmayer/otview/ot"
)

// Contextual lookups come in three formats: rules listing glyphs (format 1),
// rules listing glyph classes (format 2) and a single rule listing coverage
// tables (format 3). A sequence unifies the three for matching, closure and
// glyph collection.

type seqKind uint8

const (
	seqGlyphs seqKind = iota
	seqClasses
	seqCoverages
)

// sequence is one part (backtrack, input or lookahead) of a context rule.
type sequence struct {
	kind    seqKind
	values  []uint16 // glyph indices or classes
	classes ot.ClassDef
	covs    []ot.Coverage
}

func glyphSequence(values []uint16) sequence {
	return sequence{kind: seqGlyphs, values: values}
}

func classSequence(cd ot.ClassDef, values []uint16) sequence {
	return sequence{kind: seqClasses, values: values, classes: cd}
}

func coverageSequence(covs []ot.Coverage) sequence {
	return sequence{kind: seqCoverages, covs: covs}
}

func (s sequence) len() int {
	if s.kind == seqCoverages {
		return len(s.covs)
	}
	return len(s.values)
}

// matches reports whether glyph g matches item i of the sequence.
func (s sequence) matches(i int, g ot.GlyphIndex) bool {
	switch s.kind {
	case seqGlyphs:
		return g == ot.GlyphIndex(s.values[i])
	case seqClasses:
		return s.classes.Class(g) == s.values[i]
	}
	return s.covs[i].Contains(g)
}

// intersects reports whether any glyph of gs matches item i of the sequence.
func (s sequence) intersects(i int, gs *GlyphSet) bool {
	switch s.kind {
	case seqGlyphs:
		return gs.Contains(ot.GlyphIndex(s.values[i]))
	case seqClasses:
		return gs.intersectsClass(s.classes, s.values[i])
	}
	return gs.intersectsCoverage(s.covs[i])
}

// intersectsAll reports whether every item of the sequence is matched by a
// glyph of gs.
func (s sequence) intersectsAll(gs *GlyphSet) bool {
	for i := 0; i < s.len(); i++ {
		if !s.intersects(i, gs) {
			return false
		}
	}
	return true
}

// collect adds all glyphs which may match any item of the sequence to gs.
// Class 0 of a class sequence cannot be enumerated and is left out.
func (s sequence) collect(gs *GlyphSet) {
	for i := 0; i < s.len(); i++ {
		switch s.kind {
		case seqGlyphs:
			gs.Add(ot.GlyphIndex(s.values[i]))
		case seqClasses:
			if s.values[i] != 0 {
				gs.AddAll(s.classes.GlyphsOfClass(s.values[i]))
			}
		default:
			gs.AddCoverage(s.covs[i])
		}
	}
}

// contextRule is a context rule in format independent representation. The
// input sequence excludes the first glyph, which is matched by the subtable's
// coverage (and class, for format 2).
type contextRule struct {
	backtrack sequence
	input     sequence
	lookahead sequence
	lookups   []ot.SequenceLookupRecord
}

// inputCount is the length of the input sequence including the first glyph.
func (r contextRule) inputCount() int {
	return r.input.len() + 1
}

func classRule(rule ot.ContextRule, backtrack, input, lookahead ot.ClassDef) contextRule {
	return contextRule{
		backtrack: classSequence(backtrack, rule.Backtrack),
		input:     classSequence(input, rule.Input),
		lookahead: classSequence(lookahead, rule.Lookahead),
		lookups:   rule.Lookups,
	}
}

func glyphRule(rule ot.ContextRule) contextRule {
	return contextRule{
		backtrack: glyphSequence(rule.Backtrack),
		input:     glyphSequence(rule.Input),
		lookahead: glyphSequence(rule.Lookahead),
		lookups:   rule.Lookups,
	}
}

func coverageRule(sc ot.SequenceContext) (contextRule, bool) {
	cr := sc.CoverageRule()
	if len(cr.Input) == 0 {
		return contextRule{}, false
	}
	return contextRule{
		backtrack: coverageSequence(cr.Backtrack),
		input:     coverageSequence(cr.Input[1:]),
		lookahead: coverageSequence(cr.Lookahead),
		lookups:   cr.Lookups,
	}, true
}

// rulesFor iterates over the rules of a context subtable which are candidates
// for an input sequence starting with glyph g, in order of preference.
func rulesFor(sc ot.SequenceContext, g ot.GlyphIndex) iter.Seq[contextRule] {
	return func(yield func(contextRule) bool) {
		switch sc.Format() {
		case 1:
			inx, ok := sc.Coverage().Index(g)
			if !ok {
				return
			}
			for rule := range sc.Rules(inx) {
				if !yield(glyphRule(rule)) {
					return
				}
			}
		case 2:
			if !sc.Coverage().Contains(g) {
				return
			}
			bcd, icd, lcd := sc.ClassDefs()
			for rule := range sc.Rules(int(icd.Class(g))) {
				if !yield(classRule(rule, bcd, icd, lcd)) {
					return
				}
			}
		case 3:
			if rule, ok := coverageRule(sc); ok && sc.Coverage().Contains(g) {
				yield(rule)
			}
		}
	}
}

// allRules iterates over all rules of a context subtable, together with the
// glyphs the rule's input sequence may start with.
func allRules(sc ot.SequenceContext) iter.Seq2[iter.Seq[ot.GlyphIndex], contextRule] {
	return func(yield func(iter.Seq[ot.GlyphIndex], contextRule) bool) {
		cov := sc.Coverage()
		switch sc.Format() {
		case 1:
			for inx, g := range cov.Glyphs() {
				first := func(yield func(ot.GlyphIndex) bool) { yield(g) }
				for rule := range sc.Rules(inx) {
					if !yield(first, glyphRule(rule)) {
						return
					}
				}
			}
		case 2:
			bcd, icd, lcd := sc.ClassDefs()
			for clz := 0; clz < sc.RuleSetCount(); clz++ {
				first := func(yield func(ot.GlyphIndex) bool) {
					for _, g := range cov.Glyphs() {
						if int(icd.Class(g)) == clz && !yield(g) {
							return
						}
					}
				}
				for rule := range sc.Rules(clz) {
					if !yield(first, classRule(rule, bcd, icd, lcd)) {
						return
					}
				}
			}
		case 3:
			if rule, ok := coverageRule(sc); ok {
				first := func(yield func(ot.GlyphIndex) bool) {
					for _, g := range cov.Glyphs() {
						if !yield(g) {
							return
						}
					}
				}
				yield(first, rule)
			}
		}
	}
}

// --- Matching --------------------------------------------------------------

// contextMask matches glyphs of backtrack and lookahead sequences regardless
// of their feature mask.
const contextMask = ^uint32(0)

// skipForward moves from position idx to the next glyph of info before end
// which is not ignored by the current lookup flags. The boolean result is
// false if there is no such glyph or its mask does not intersect mask.
func (c *applyCtx) skipForward(info []GlyphInfo, idx, end int, mask uint32) (int, bool) {
	for idx++; idx < end; idx++ {
		if !c.checkGlyphProperty(&info[idx], c.lookupProps) {
			continue
		}
		return idx, info[idx].Mask&mask != 0
	}
	return idx, false
}

// skipBackward is the backward counterpart of skipForward.
func (c *applyCtx) skipBackward(info []GlyphInfo, idx int, mask uint32) (int, bool) {
	for idx--; idx >= 0; idx-- {
		if !c.checkGlyphProperty(&info[idx], c.lookupProps) {
			continue
		}
		return idx, info[idx].Mask&mask != 0
	}
	return idx, false
}

// matchInput matches the input sequence of a rule against the glyphs following
// the cursor. It fills positions with the buffer positions of the matched
// glyphs, including the glyph at the cursor, and returns the position after the
// last matched glyph.
func (c *applyCtx) matchInput(input sequence, positions []int) (int, bool) {
	info := c.buf.Info
	idx := c.buf.Idx
	positions[0] = idx
	for i := 0; i < input.len(); i++ {
		var ok bool
		if idx, ok = c.skipForward(info, idx, len(info), c.lookupMask); !ok || !input.matches(i, info[idx].Glyph) {
			return 0, false
		}
		positions[i+1] = idx
	}
	return idx + 1, true
}

// matchBacktrack matches a backtrack sequence against the glyphs preceding
// the cursor, the nearest glyph first.
func (c *applyCtx) matchBacktrack(backtrack sequence) bool {
	info := c.buf.backtrack()
	idx := len(info)
	for i := 0; i < backtrack.len(); i++ {
		var ok bool
		if idx, ok = c.skipBackward(info, idx, contextMask); !ok || !backtrack.matches(i, info[idx].Glyph) {
			return false
		}
	}
	return true
}

// matchLookahead matches a lookahead sequence against the glyphs starting at
// position start.
func (c *applyCtx) matchLookahead(lookahead sequence, start int) bool {
	info := c.buf.Info
	idx := start - 1
	for i := 0; i < lookahead.len(); i++ {
		var ok bool
		if idx, ok = c.skipForward(info, idx, len(info), contextMask); !ok || !lookahead.matches(i, info[idx].Glyph) {
			return false
		}
	}
	return true
}

// --- Application -----------------------------------------------------------

// applyContext applies the first rule of a context subtable matching at the
// cursor.
func (c *applyCtx) applyContext(sc ot.SequenceContext) bool {
	for rule := range rulesFor(sc, c.buf.Cur().Glyph) {
		if c.applyRule(rule) {
			return true
		}
	}
	return false
}

func (c *applyCtx) applyRule(rule contextRule) bool {
	count := rule.inputCount()
	if count > ot.MaxContextLength {
		return false
	}
	positions := make([]int, count)
	end, ok := c.matchInput(rule.input, positions)
	if !ok || !c.matchLookahead(rule.lookahead, end) || !c.matchBacktrack(rule.backtrack) {
		return false
	}
	c.applyLookupRecords(positions, rule.lookups, end)
	return true
}

// applyLookupRecords applies the nested lookups of a matched rule, in the order
// they are listed.
//
// Nested lookups may change the number of glyphs. Positions are kept relative
// to the start of the output, and after each nested lookup changing the
// length, the positions following the current one are shifted. Glyphs added
// are assumed to follow the current position, glyphs removed to be the
// ones matched after it. Finally the cursor is moved behind the matched input.
func (c *applyCtx) applyLookupRecords(positions []int, records []ot.SequenceLookupRecord, matchEnd int) {
	buf := c.buf
	bl := buf.backtrackLen()
	end := bl + matchEnd - buf.Idx
	for j := range positions {
		positions[j] += bl - buf.Idx
	}
	for _, rec := range records {
		idx, count := int(rec.SequenceIndex), len(positions)
		if idx >= count {
			continue
		}
		origLen := buf.backtrackLen() + buf.lookaheadLen()
		if positions[idx] >= origLen {
			continue // earlier lookups removed glyphs
		}
		if !buf.moveTo(positions[idx]) || buf.opsLeft <= 0 {
			break
		}
		if !c.recurse(int(rec.LookupListIndex)) {
			continue
		}
		delta := buf.backtrackLen() + buf.lookaheadLen() - origLen
		if delta == 0 {
			continue
		}
		end += delta
		if end < positions[idx] {
			delta += positions[idx] - end
			end = positions[idx]
		}
		next := idx + 1
		if delta > 0 {
			if delta+count > ot.MaxContextLength {
				break
			}
			grown := make([]int, 0, count+delta)
			grown = append(grown, positions[:next]...)
			for j := 1; j <= delta; j++ {
				grown = append(grown, positions[idx]+j)
			}
			for _, p := range positions[next:] {
				grown = append(grown, p+delta)
			}
			positions = grown
			continue
		}
		delta = max(delta, next-count)
		positions = append(positions[:next], positions[next-delta:]...)
		for j := next; j < len(positions); j++ {
			positions[j] += delta
		}
	}
	buf.moveTo(end)
}
