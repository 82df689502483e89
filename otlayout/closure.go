package otlayout

import (
	"iter"

	"github.com/npillmayer/otview/ot"
)

// DefaultClosureMaxStages is the number of passes over the lookups a glyph
// closure runs at most, if not configured otherwise.
const DefaultClosureMaxStages = 32

// ClosureOptions configure LookupsSubstituteClosure.
type ClosureOptions struct {
	MaxStages int // maximum number of passes; values < 1 select DefaultClosureMaxStages
}

// ClosureResult reports how a closure computation ended. Converged is false
// if the closure stopped after MaxStages passes with the glyph set still
// growing; the glyph set is then a subset of the closure.
type ClosureResult struct {
	Stages    int
	Converged bool
}

type closureCtx struct {
	glyphs      *GlyphSet
	accels      []*lookupAccel
	done        map[int]int // lookup index → glyph count at last visit
	nestingLeft int
}

func newClosureCtx(face *ot.Face, glyphs *GlyphSet) *closureCtx {
	return &closureCtx{
		glyphs:      glyphs,
		accels:      accelerators(face, ot.TagGSUB),
		done:        make(map[int]int),
		nestingLeft: MaxNestingLevel,
	}
}

// LookupSubstituteClosure adds to glyphs all glyphs GSUB lookup number lookup
// may substitute for glyphs of the set, in a single pass over the lookup.
// Lookups invoked from contextual rules are included.
func LookupSubstituteClosure(face *ot.Face, lookup int, glyphs *GlyphSet) {
	if glyphs == nil {
		return
	}
	newClosureCtx(face, glyphs).closeLookup(lookup)
}

// LookupsSubstituteClosure computes the closure of glyphs under a set of GSUB
// lookups: it adds all glyphs which may result from substituting glyphs of the
// set by any of the lookups, repeatedly, until the set does not grow any more
// or opts.MaxStages passes have run. With lookups nil, all lookups of the
// face's GSUB table are used. opts may be nil.
func LookupsSubstituteClosure(face *ot.Face, lookups []int, glyphs *GlyphSet, opts *ClosureOptions) ClosureResult {
	maxStages := DefaultClosureMaxStages
	if opts != nil && opts.MaxStages > 0 {
		maxStages = opts.MaxStages
	}
	if glyphs == nil {
		return ClosureResult{Converged: true}
	}
	c := newClosureCtx(face, glyphs)
	if lookups == nil {
		lookups = make([]int, len(c.accels))
		for i := range lookups {
			lookups[i] = i
		}
	}
	for stage := 1; ; stage++ {
		before := glyphs.Len()
		for _, lookup := range lookups {
			c.closeLookup(lookup)
		}
		if glyphs.Len() == before {
			return ClosureResult{Stages: stage, Converged: true}
		}
		if stage >= maxStages {
			tracer().Infof("glyph closure stopped after %d stages with %d glyphs", stage, glyphs.Len())
			return ClosureResult{Stages: stage, Converged: false}
		}
	}
}

// closeLookup runs the closure of a single lookup. A lookup is skipped if
// the glyph set has not changed since its last visit.
func (c *closureCtx) closeLookup(lookup int) {
	if lookup < 0 || lookup >= len(c.accels) {
		return
	}
	n := c.glyphs.Len()
	if count, ok := c.done[lookup]; ok && count == n {
		return
	}
	c.done[lookup] = n
	for _, st := range c.accels[lookup].subtables {
		c.closeSubtable(st)
	}
}

func (c *closureCtx) closeSubtable(st ot.LookupSubtable) {
	gs := c.glyphs
	switch st.Type {
	case ot.GSubLookupTypeSingle:
		var substitutes []ot.GlyphIndex
		for g, subst := range st.SingleMappings() {
			if gs.Contains(g) {
				substitutes = append(substitutes, subst)
			}
		}
		gs.Add(substitutes...)
	case ot.GSubLookupTypeMultiple, ot.GSubLookupTypeAlternate:
		var substitutes []ot.GlyphIndex
		for inx, g := range st.Coverage().Glyphs() {
			if !gs.Contains(g) {
				continue
			}
			if st.Type == ot.GSubLookupTypeMultiple {
				substitutes = append(substitutes, st.Sequence(inx)...)
			} else {
				substitutes = append(substitutes, st.Alternates(inx)...)
			}
		}
		gs.Add(substitutes...)
	case ot.GSubLookupTypeLigature:
		var ligatures []ot.GlyphIndex
		for inx, g := range st.Coverage().Glyphs() {
			if !gs.Contains(g) {
				continue
			}
			for lig := range st.Ligatures(inx) {
				if glyphSequence(componentValues(lig.Components)).intersectsAll(gs) {
					ligatures = append(ligatures, lig.Glyph)
				}
			}
		}
		gs.Add(ligatures...)
	case ot.GSubLookupTypeContext, ot.GSubLookupTypeChainingContext:
		c.closeContext(st.SequenceContext())
	case ot.GSubLookupTypeReverseChaining:
		rc := st.ReverseChain()
		if !coverageSequence(rc.Backtrack).intersectsAll(gs) || !coverageSequence(rc.Lookahead).intersectsAll(gs) {
			return
		}
		var substitutes []ot.GlyphIndex
		for inx, g := range st.Coverage().Glyphs() {
			if inx < len(rc.Substitutes) && gs.Contains(g) {
				substitutes = append(substitutes, rc.Substitutes[inx])
			}
		}
		gs.Add(substitutes...)
	}
}

// closeContext recurses into the nested lookups of all rules which may match
// glyphs of the set.
func (c *closureCtx) closeContext(sc ot.SequenceContext) {
	var nested []int
	for first, rule := range allRules(sc) {
		if !c.intersectsFirst(first) || !rule.input.intersectsAll(c.glyphs) ||
			!rule.backtrack.intersectsAll(c.glyphs) || !rule.lookahead.intersectsAll(c.glyphs) {
			continue
		}
		for _, rec := range rule.lookups {
			nested = append(nested, int(rec.LookupListIndex))
		}
	}
	if c.nestingLeft == 0 {
		return
	}
	c.nestingLeft--
	for _, lookup := range nested {
		c.closeLookup(lookup)
	}
	c.nestingLeft++
}

func (c *closureCtx) intersectsFirst(first iter.Seq[ot.GlyphIndex]) bool {
	for g := range first {
		if c.glyphs.Contains(g) {
			return true
		}
	}
	return false
}
