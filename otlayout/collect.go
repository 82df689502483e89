package otlayout

import (
	"slices"

	"github.com/npillmayer/otview/ot"
)

// --- Features and lookups --------------------------------------------------

type featureCollector struct {
	lt       *ot.LayoutTable
	indexes  indexSet
	filter   indexSet
	filtered bool
	scripts  map[int]bool
	langsys  map[[2]int]bool
}

// CollectFeatures returns the indices of all features of a layout table which
// are referenced by the language systems of scripts and languages and have
// one of the tags in features.
//
// A nil slice of scripts selects all scripts, a nil slice of languages selects
// all language systems of a script, including the default one. Scripts and
// languages not present in the table are ignored, without fallback. A nil
// slice of features selects all features, including required ones; otherwise
// required features are not reported. The indices are returned in ascending
// order.
func CollectFeatures(face *ot.Face, table ot.Tag, scripts, languages, features []ot.Tag) []int {
	fc := &featureCollector{
		lt:      layoutTable(face, table),
		indexes: newIndexSet(),
		scripts: make(map[int]bool),
		langsys: make(map[[2]int]bool),
	}
	if features != nil {
		fc.filtered = true
		fc.filter = newIndexSet()
		for i := 0; i < fc.lt.FeatureCount(); i++ {
			if slices.Contains(features, fc.lt.FeatureTag(i)) {
				fc.filter.add(i)
			}
		}
	}
	if scripts == nil {
		for i := 0; i < fc.lt.ScriptCount(); i++ {
			fc.collectScript(i, languages)
		}
	} else {
		for _, tag := range scripts {
			if i, ok := fc.lt.FindScript(tag); ok {
				fc.collectScript(i, languages)
			}
		}
	}
	return fc.indexes.indexes()
}

func (fc *featureCollector) collectScript(script int, languages []ot.Tag) {
	if fc.scripts[script] {
		return
	}
	fc.scripts[script] = true
	sc := fc.lt.Script(script)
	if languages == nil {
		if sc.HasDefaultLangSys() {
			fc.collectLangSys(script, ot.DefaultLanguageIndex)
		}
		for i := 0; i < sc.LangSysCount(); i++ {
			fc.collectLangSys(script, i)
		}
		return
	}
	for _, tag := range languages {
		if i, ok := sc.FindLangSys(tag); ok {
			fc.collectLangSys(script, i)
		}
	}
}

func (fc *featureCollector) collectLangSys(script, lang int) {
	key := [2]int{script, lang}
	if fc.langsys[key] {
		return
	}
	fc.langsys[key] = true
	ls := fc.lt.Script(script).LangSys(lang)
	if !fc.filtered {
		if ls.HasRequiredFeature() {
			fc.indexes.add(ls.RequiredFeatureIndex())
		}
		for i := 0; i < ls.FeatureCount(); i++ {
			fc.indexes.add(ls.FeatureIndex(i))
		}
		return
	}
	for i := 0; i < ls.FeatureCount() && fc.filter.len() > 0; i++ {
		if inx := ls.FeatureIndex(i); fc.filter.has(inx) {
			fc.indexes.add(inx)
			fc.filter.remove(inx)
		}
	}
}

// CollectLookups returns the indices of all lookups referenced by the
// features CollectFeatures selects, including the lookups of alternate
// feature tables of all feature variation records. The indices are returned
// in ascending order.
func CollectLookups(face *ot.Face, table ot.Tag, scripts, languages, features []ot.Tag) []int {
	lt := layoutTable(face, table)
	lookups := newIndexSet()
	add := func(f ot.Feature) {
		for i := 0; i < f.LookupCount(); i++ {
			lookups.add(f.LookupIndex(i))
		}
	}
	for _, inx := range CollectFeatures(face, table, scripts, languages, features) {
		add(lt.Feature(inx))
		for v := 0; v < lt.FeatureVariationCount(); v++ {
			add(lt.FeatureVariation(inx, uint32(v)))
		}
	}
	return lookups.indexes()
}

// --- Glyphs ----------------------------------------------------------------

type glyphCollector struct {
	before, input, after, output *GlyphSet
	accels                       []*lookupAccel
	recurse                      bool
	visited                      map[int]bool
}

// LookupCollectGlyphs collects the glyphs a lookup of a layout table may
// involve: glyphs matched before the input sequence (backtrack), glyphs of
// the input sequence, glyphs matched after it (lookahead) and, for GSUB,
// glyphs the lookup may output. GSUB lookups invoked from contextual rules
// contribute to the output glyphs.
//
// Glyphs of class 0 of class-based rules are not enumerated.
func LookupCollectGlyphs(face *ot.Face, table ot.Tag, lookup int) (before, input, after, output *GlyphSet) {
	gc := &glyphCollector{
		before:  NewGlyphSet(),
		input:   NewGlyphSet(),
		after:   NewGlyphSet(),
		output:  NewGlyphSet(),
		accels:  accelerators(face, table),
		recurse: table == ot.TagGSUB,
		visited: make(map[int]bool),
	}
	gc.collectLookup(lookup)
	return gc.before, gc.input, gc.after, gc.output
}

func (gc *glyphCollector) collectLookup(lookup int) {
	if lookup < 0 || lookup >= len(gc.accels) || gc.visited[lookup] {
		return
	}
	gc.visited[lookup] = true
	for _, st := range gc.accels[lookup].subtables {
		gc.collectSubtable(st)
	}
}

// recurseInto collects the output glyphs of nested lookups. Their
// context glyphs are not of interest to the caller.
func (gc *glyphCollector) recurseInto(records []ot.SequenceLookupRecord) {
	if !gc.recurse || len(records) == 0 {
		return
	}
	before, input, after := gc.before, gc.input, gc.after
	gc.before, gc.input, gc.after = nil, nil, nil
	for _, rec := range records {
		gc.collectLookup(int(rec.LookupListIndex))
	}
	gc.before, gc.input, gc.after = before, input, after
}

func (gc *glyphCollector) collectSubtable(st ot.LookupSubtable) {
	if sc := st.SequenceContext(); sc.Format() != 0 {
		gc.collectContext(sc)
		return
	}
	if st.Table == ot.TagGPOS {
		gc.collectGPos(st)
		return
	}
	cov := st.Coverage()
	gc.input.AddCoverage(cov)
	switch st.Type {
	case ot.GSubLookupTypeSingle:
		for _, subst := range st.SingleMappings() {
			gc.output.Add(subst)
		}
	case ot.GSubLookupTypeMultiple, ot.GSubLookupTypeAlternate:
		for inx := range cov.Glyphs() {
			if st.Type == ot.GSubLookupTypeMultiple {
				gc.output.Add(st.Sequence(inx)...)
			} else {
				gc.output.Add(st.Alternates(inx)...)
			}
		}
	case ot.GSubLookupTypeLigature:
		for inx := range cov.Glyphs() {
			for lig := range st.Ligatures(inx) {
				gc.input.Add(lig.Components...)
				gc.output.Add(lig.Glyph)
			}
		}
	case ot.GSubLookupTypeReverseChaining:
		rc := st.ReverseChain()
		coverageSequence(rc.Backtrack).collect(gc.before)
		coverageSequence(rc.Lookahead).collect(gc.after)
		gc.output.Add(rc.Substitutes...)
	}
}

func (gc *glyphCollector) collectGPos(st ot.LookupSubtable) {
	switch st.Type {
	case ot.GPosLookupTypeSingle, ot.GPosLookupTypeCursive:
		gc.input.AddCoverage(st.Coverage())
	case ot.GPosLookupTypePair:
		gc.input.AddCoverage(st.Coverage())
		if st.Format() == 1 {
			for inx := 0; inx < st.PairSetCount(); inx++ {
				gc.input.AddAll(st.PairSecondGlyphs(inx))
			}
			return
		}
		_, cd2 := st.PairClassDefs()
		for g := range cd2.Glyphs() {
			gc.input.Add(g)
		}
	case ot.GPosLookupTypeMarkToBase, ot.GPosLookupTypeMarkToLigature, ot.GPosLookupTypeMarkToMark:
		marks, bases := st.AttachmentCoverages()
		gc.input.AddCoverage(marks)
		gc.input.AddCoverage(bases)
	}
}

func (gc *glyphCollector) collectContext(sc ot.SequenceContext) {
	gc.input.AddCoverage(sc.Coverage())
	for _, rule := range allRules(sc) {
		rule.input.collect(gc.input)
		rule.backtrack.collect(gc.before)
		rule.lookahead.collect(gc.after)
		gc.recurseInto(rule.lookups)
	}
}
