package otbuild

// --- GSUB ------------------------------------------------------------------

// SingleSubst1 builds a single substitution subtable of format 1.
func SingleSubst1(cov *Table, delta int16) *Table {
	return New().U16(1).Off16(cov).I16(delta)
}

// SingleSubst2 builds a single substitution subtable of format 2.
func SingleSubst2(cov *Table, substitutes ...uint16) *Table {
	return New().U16(2).Off16(cov).U16(uint16(len(substitutes))).U16(substitutes...)
}

func glyphArrays(cov *Table, seqs [][]uint16) *Table {
	t := New().U16(1).Off16(cov).U16(uint16(len(seqs)))
	for _, seq := range seqs {
		t.Off16(New().U16(uint16(len(seq))).U16(seq...))
	}
	return t
}

// MultipleSubst builds a multiple substitution subtable.
func MultipleSubst(cov *Table, sequences ...[]uint16) *Table {
	return glyphArrays(cov, sequences)
}

// AlternateSubst builds an alternate substitution subtable.
func AlternateSubst(cov *Table, alternates ...[]uint16) *Table {
	return glyphArrays(cov, alternates)
}

// Ligature is a ligature rule: Components follow the covered first glyph.
type Ligature struct {
	Glyph      uint16
	Components []uint16
}

// LigatureSubst builds a ligature substitution subtable. sets[i] holds the
// ligatures for coverage index i.
func LigatureSubst(cov *Table, sets ...[]Ligature) *Table {
	t := New().U16(1).Off16(cov).U16(uint16(len(sets)))
	for _, set := range sets {
		st := New().U16(uint16(len(set)))
		for _, lig := range set {
			st.Off16(New().U16(lig.Glyph, uint16(len(lig.Components)+1)).U16(lig.Components...))
		}
		t.Off16(st)
	}
	return t
}

// LookupRecord is a sequence lookup record of a contextual subtable.
type LookupRecord struct {
	SequenceIndex uint16
	LookupIndex   uint16
}

func appendRecords(t *Table, records []LookupRecord) *Table {
	for _, r := range records {
		t.U16(r.SequenceIndex, r.LookupIndex)
	}
	return t
}

func appendCoverages(t *Table, covs []*Table) *Table {
	t.U16(uint16(len(covs)))
	for _, c := range covs {
		t.Off16(c)
	}
	return t
}

// Rule is a rule of a contextual subtable of format 1 or 2. Input excludes the
// first glyph (or class).
type Rule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Lookups   []LookupRecord
}

func ruleTable(r Rule, chained bool) *Table {
	t := New()
	if chained {
		t.U16(uint16(len(r.Backtrack))).U16(r.Backtrack...)
		t.U16(uint16(len(r.Input) + 1)).U16(r.Input...)
		t.U16(uint16(len(r.Lookahead))).U16(r.Lookahead...)
		t.U16(uint16(len(r.Lookups)))
	} else {
		t.U16(uint16(len(r.Input)+1), uint16(len(r.Lookups))).U16(r.Input...)
	}
	return appendRecords(t, r.Lookups)
}

func ruleSets(t *Table, sets [][]Rule, chained bool) *Table {
	t.U16(uint16(len(sets)))
	for _, set := range sets {
		if set == nil {
			t.Off16(nil)
			continue
		}
		st := New().U16(uint16(len(set)))
		for _, r := range set {
			st.Off16(ruleTable(r, chained))
		}
		t.Off16(st)
	}
	return t
}

// Context1 builds a (chained, if chained is set) sequence context subtable of
// format 1. sets[i] holds the rules for coverage index i.
func Context1(chained bool, cov *Table, sets ...[]Rule) *Table {
	return ruleSets(New().U16(1).Off16(cov), sets, chained)
}

// Context2 builds a sequence context subtable of format 2. sets[i] holds the
// rules for input class i. For non-chained contexts backtrack and lookahead
// are ignored.
func Context2(chained bool, cov, backtrack, input, lookahead *Table, sets ...[]Rule) *Table {
	t := New().U16(2).Off16(cov)
	if chained {
		t.Off16(backtrack).Off16(input).Off16(lookahead)
	} else {
		t.Off16(input)
	}
	return ruleSets(t, sets, chained)
}

// Context3 builds a sequence context subtable of format 3.
func Context3(input []*Table, records ...LookupRecord) *Table {
	t := New().U16(3, uint16(len(input)), uint16(len(records)))
	for _, c := range input {
		t.Off16(c)
	}
	return appendRecords(t, records)
}

// ChainContext3 builds a chained sequence context subtable of format 3.
func ChainContext3(backtrack, input, lookahead []*Table, records ...LookupRecord) *Table {
	t := New().U16(3)
	appendCoverages(t, backtrack)
	appendCoverages(t, input)
	appendCoverages(t, lookahead)
	t.U16(uint16(len(records)))
	return appendRecords(t, records)
}

// ReverseChain builds a reverse chaining single substitution subtable.
func ReverseChain(cov *Table, backtrack, lookahead []*Table, substitutes ...uint16) *Table {
	t := New().U16(1).Off16(cov)
	appendCoverages(t, backtrack)
	appendCoverages(t, lookahead)
	return t.U16(uint16(len(substitutes))).U16(substitutes...)
}

// Extension wraps a subtable of lookup type ltype into an extension subtable.
func Extension(ltype uint16, sub *Table) *Table {
	return New().U16(1, ltype).Off32(sub)
}

// --- GPOS ------------------------------------------------------------------

// Value format bits.
const (
	XPlacement uint16 = 0x0001
	YPlacement uint16 = 0x0002
	XAdvance   uint16 = 0x0004
	YAdvance   uint16 = 0x0008
)

// SinglePos1 builds a single adjustment subtable of format 1. values holds one
// field per bit set in valueFormat.
func SinglePos1(cov *Table, valueFormat uint16, values ...int16) *Table {
	return New().U16(1).Off16(cov).U16(valueFormat).I16(values...)
}

// SinglePos2 builds a single adjustment subtable of format 2, with one value
// record per covered glyph.
func SinglePos2(cov *Table, valueFormat uint16, records ...[]int16) *Table {
	t := New().U16(2).Off16(cov).U16(valueFormat, uint16(len(records)))
	for _, r := range records {
		t.I16(r...)
	}
	return t
}

// PairValue is a pair value record of a pair adjustment subtable of format 1.
type PairValue struct {
	Second uint16
	Value1 []int16
	Value2 []int16
}

// PairPos1 builds a pair adjustment subtable of format 1. sets[i] holds the
// pair values for coverage index i, sorted by second glyph.
func PairPos1(cov *Table, vf1, vf2 uint16, sets ...[]PairValue) *Table {
	t := New().U16(1).Off16(cov).U16(vf1, vf2, uint16(len(sets)))
	for _, set := range sets {
		st := New().U16(uint16(len(set)))
		for _, pv := range set {
			st.U16(pv.Second).I16(pv.Value1...).I16(pv.Value2...)
		}
		t.Off16(st)
	}
	return t
}

// PairPos2 builds a pair adjustment subtable of format 2. records is indexed
// by [class1][class2] and holds value1 followed by value2.
func PairPos2(cov *Table, vf1, vf2 uint16, cd1, cd2 *Table, class2Count int, records ...[]int16) *Table {
	t := New().U16(2).Off16(cov).U16(vf1, vf2).Off16(cd1).Off16(cd2)
	t.U16(uint16(len(records)/max(1, class2Count)), uint16(class2Count))
	for _, r := range records {
		t.I16(r...)
	}
	return t
}

// Anchor1 builds an anchor table of format 1.
func Anchor1(x, y int16) *Table {
	return New().U16(1).I16(x, y)
}

// MarkRecord assigns a class and an anchor to a mark glyph.
type MarkRecord struct {
	Class  uint16
	Anchor *Table
}

// MarkBasePos builds a mark-to-base (or mark-to-mark) attachment subtable.
// bases[i] holds one anchor per mark class for base coverage index i.
func MarkBasePos(markCov, baseCov *Table, marks []MarkRecord, classCount int, bases ...[]*Table) *Table {
	t := New().U16(1).Off16(markCov).Off16(baseCov).U16(uint16(classCount))
	markArray := New().U16(uint16(len(marks)))
	for _, m := range marks {
		markArray.U16(m.Class).Off16(m.Anchor)
	}
	baseArray := New().U16(uint16(len(bases)))
	for _, anchors := range bases {
		for _, a := range anchors {
			baseArray.Off16(a)
		}
	}
	return t.Off16(markArray).Off16(baseArray)
}

// CursivePos builds a cursive attachment subtable. anchors holds entry and exit
// anchors per covered glyph; either may be nil.
func CursivePos(cov *Table, anchors ...[2]*Table) *Table {
	t := New().U16(1).Off16(cov).U16(uint16(len(anchors)))
	for _, a := range anchors {
		t.Off16(a[0]).Off16(a[1])
	}
	return t
}
