package otlayout

import (
	"iter"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/otview/ot"
)

// GlyphSet is an ordered set of glyph indices. It is used for glyph closures,
// glyph collection and enumeration of glyph classes.
//
// A nil *GlyphSet is a valid, empty set for all read operations. Adding to a
// nil set is a no-op, which lets collection code use nil as a sink for glyphs
// the caller is not interested in.
type GlyphSet struct {
	set *treeset.Set
}

func glyphComparator(a, b any) int {
	return utils.UInt16Comparator(uint16(a.(ot.GlyphIndex)), uint16(b.(ot.GlyphIndex)))
}

// NewGlyphSet creates a glyph set, initially holding glyphs.
func NewGlyphSet(glyphs ...ot.GlyphIndex) *GlyphSet {
	gs := &GlyphSet{set: treeset.NewWith(glyphComparator)}
	gs.Add(glyphs...)
	return gs
}

// Add inserts glyphs into the set.
func (gs *GlyphSet) Add(glyphs ...ot.GlyphIndex) {
	if gs == nil {
		return
	}
	for _, g := range glyphs {
		gs.set.Add(g)
	}
}

// AddAll inserts every glyph of a sequence into the set.
func (gs *GlyphSet) AddAll(glyphs iter.Seq[ot.GlyphIndex]) {
	if gs == nil {
		return
	}
	for g := range glyphs {
		gs.set.Add(g)
	}
}

// AddCoverage inserts all glyphs covered by cov into the set.
func (gs *GlyphSet) AddCoverage(cov ot.Coverage) {
	if gs == nil {
		return
	}
	for _, g := range cov.Glyphs() {
		gs.set.Add(g)
	}
}

// Contains reports whether g is in the set.
func (gs *GlyphSet) Contains(g ot.GlyphIndex) bool {
	return gs != nil && gs.set.Contains(g)
}

// Len returns the number of glyphs in the set.
func (gs *GlyphSet) Len() int {
	if gs == nil {
		return 0
	}
	return gs.set.Size()
}

// IsEmpty reports whether the set holds no glyphs.
func (gs *GlyphSet) IsEmpty() bool {
	return gs.Len() == 0
}

// Clear removes all glyphs from the set.
func (gs *GlyphSet) Clear() {
	if gs != nil {
		gs.set.Clear()
	}
}

// All iterates over the glyphs of the set in ascending order.
// The set must not be modified during iteration.
func (gs *GlyphSet) All() iter.Seq[ot.GlyphIndex] {
	return func(yield func(ot.GlyphIndex) bool) {
		if gs == nil {
			return
		}
		it := gs.set.Iterator()
		for it.Next() {
			if !yield(it.Value().(ot.GlyphIndex)) {
				return
			}
		}
	}
}

// Glyphs returns the glyphs of the set in ascending order.
func (gs *GlyphSet) Glyphs() []ot.GlyphIndex {
	if gs == nil {
		return nil
	}
	r := make([]ot.GlyphIndex, 0, gs.set.Size())
	for g := range gs.All() {
		r = append(r, g)
	}
	return r
}

// intersectsCoverage reports whether any glyph covered by cov is in the set.
// It iterates over the smaller of both.
func (gs *GlyphSet) intersectsCoverage(cov ot.Coverage) bool {
	if gs.Len() < cov.Len() {
		for g := range gs.All() {
			if cov.Contains(g) {
				return true
			}
		}
		return false
	}
	return cov.Intersects(gs.Contains)
}

// intersectsClass reports whether any glyph in the set has class clz in cd.
// Class 0 holds all glyphs not listed in cd.
func (gs *GlyphSet) intersectsClass(cd ot.ClassDef, clz uint16) bool {
	for g := range gs.All() {
		if cd.Class(g) == clz {
			return true
		}
	}
	return false
}

// --- Index sets ------------------------------------------------------------

// indexSet collects feature or lookup indices, reporting them in ascending order.
type indexSet struct {
	set *treeset.Set
}

func newIndexSet() indexSet {
	return indexSet{set: treeset.NewWithIntComparator()}
}

func (is indexSet) add(inx int) {
	is.set.Add(inx)
}

func (is indexSet) has(inx int) bool {
	return is.set.Contains(inx)
}

func (is indexSet) remove(inx int) {
	is.set.Remove(inx)
}

func (is indexSet) len() int {
	return is.set.Size()
}

func (is indexSet) indexes() []int {
	r := make([]int, 0, is.set.Size())
	for _, v := range is.set.Values() {
		r = append(r, v.(int))
	}
	return r
}
