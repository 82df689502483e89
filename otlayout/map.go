package otlayout

import (
	"math/bits"
	"slices"
	"sort"

	"github.com/npillmayer/otview/ot"
	"golang.org/x/text/language"
)

// A Map is the compiled plan of lookups to apply to a buffer for a set of
// features, for both GSUB and GPOS. Lookups are grouped into stages. After
// each stage an optional pause callback runs, which clients use for
// operations between lookup groups, such as reordering glyphs.
//
// Maps are created with a MapBuilder and are read-only afterwards. A Map
// may be used concurrently on different buffers.
type Map struct {
	chosenScript [2]ot.Tag
	foundScript  [2]bool
	features     []featureMap // sorted by tag
	stages       [2][]Stage
	globalMask   uint32
}

// LookupMapEntry is a lookup to apply, together with the mask of the
// features which selected it.
type LookupMapEntry struct {
	Index int    // lookup index
	Mask  uint32 // glyphs with a mask intersecting Mask are subject to the lookup
}

// PauseFunc is called between stages of lookups.
type PauseFunc func(m *Map, face *ot.Face, buf *Buffer)

// Stage is a group of lookups, applied in order of their index, followed by
// an optional pause callback.
type Stage struct {
	Lookups []LookupMapEntry
	Pause   PauseFunc
}

type featureMap struct {
	tag      ot.Tag
	index    [2]int // feature index in GSUB and GPOS, or ot.NotFoundIndex
	stage    [2]int
	shift    int
	mask     uint32
	oneMask  uint32 // mask for value 1
	fallback bool   // feature is not present in the font
}

func tableIndex(table ot.Tag) int {
	if table == ot.TagGPOS {
		return 1
	}
	return 0
}

var tableTags = [2]ot.Tag{ot.TagGSUB, ot.TagGPOS}

// GlobalMask returns the mask glyphs should initially carry, with the global
// bit and the default values of global features.
func (m *Map) GlobalMask() uint32 {
	return m.globalMask
}

// ChosenScript returns the script tag selected for a layout table and whether
// it has been found without falling back to a default script.
func (m *Map) ChosenScript(table ot.Tag) (ot.Tag, bool) {
	t := tableIndex(table)
	return m.chosenScript[t], m.foundScript[t]
}

func (m *Map) feature(tag ot.Tag) (featureMap, bool) {
	i := sort.Search(len(m.features), func(i int) bool { return m.features[i].tag >= tag })
	if i < len(m.features) && m.features[i].tag == tag {
		return m.features[i], true
	}
	return featureMap{}, false
}

// FeatureMask returns the mask bits allocated for a feature and the shift of
// the feature's value within them. Features not in the map have mask 0.
func (m *Map) FeatureMask(tag ot.Tag) (uint32, int) {
	f, ok := m.feature(tag)
	if !ok {
		return 0, 0
	}
	return f.mask, f.shift
}

// FeatureOneMask returns the mask for setting a feature to value 1.
func (m *Map) FeatureOneMask(tag ot.Tag) uint32 {
	f, _ := m.feature(tag)
	return f.oneMask
}

// FeatureIndex returns the index of a feature of the map in a layout table.
func (m *Map) FeatureIndex(table ot.Tag, tag ot.Tag) (int, bool) {
	f, ok := m.feature(tag)
	if !ok || f.index[tableIndex(table)] == ot.NotFoundIndex {
		return ot.NotFoundIndex, false
	}
	return f.index[tableIndex(table)], true
}

// NeedsFallback reports whether a feature has been added with
// FeatureHasFallback but is not present in the font.
func (m *Map) NeedsFallback(tag ot.Tag) bool {
	f, ok := m.feature(tag)
	return ok && f.fallback
}

// Stages returns the lookup stages for a layout table.
func (m *Map) Stages(table ot.Tag) []Stage {
	return m.stages[tableIndex(table)]
}

// Substitute sets the glyph properties of buf from the face's GDEF table and
// applies the GSUB stages of the map.
func (m *Map) Substitute(face *ot.Face, buf *Buffer) {
	buf.SetGlyphProps(face)
	m.apply(face, ot.TagGSUB, buf)
}

// Position applies the GPOS stages of the map. The glyph properties of buf
// must be set, which Substitute does.
func (m *Map) Position(face *ot.Face, buf *Buffer) {
	buf.ensurePositions()
	m.apply(face, ot.TagGPOS, buf)
}

func (m *Map) apply(face *ot.Face, table ot.Tag, buf *Buffer) {
	c := newApplyCtx(face, table, buf)
	buf.resetOps()
	for _, stage := range m.stages[tableIndex(table)] {
		for _, entry := range stage.Lookups {
			if entry.Index >= len(c.accels) {
				continue
			}
			c.lookupMask = entry.Mask
			c.applyString(entry.Index)
		}
		if stage.Pause != nil {
			buf.ClearOutput()
			stage.Pause(m, face, buf)
		}
	}
	buf.RemoveOutput()
	buf.Idx = 0
}

// --- Builder ---------------------------------------------------------------

// FeatureFlags control how a feature is added to a Map.
type FeatureFlags uint8

const (
	// FeatureGlobal enables a feature for all glyphs. Otherwise clients set the
	// feature's mask on ranges of glyphs with Buffer.SetMasks.
	FeatureGlobal FeatureFlags = 1 << iota
	// FeatureHasFallback keeps a feature in the map even if the font does not
	// provide it, for clients implementing it otherwise.
	FeatureHasFallback
)

// maxFeatureBits limits the mask bits a single feature may occupy.
const maxFeatureBits = 8

type featureInfo struct {
	tag          ot.Tag
	seq          int
	maxValue     uint32
	flags        FeatureFlags
	defaultValue uint32
	stage        [2]int
}

type stageInfo struct {
	index int
	pause PauseFunc
}

// MapBuilder collects features and pauses and compiles them into a Map.
type MapBuilder struct {
	face         *ot.Face
	script       [2]int
	langsys      [2]int
	chosenScript [2]ot.Tag
	foundScript  [2]bool
	variations   [2]uint32
	features     []featureInfo
	currentStage [2]int
	stages       [2][]stageInfo
}

// NewMapBuilder creates a builder for a face, selecting script and language
// system of GSUB and GPOS for a BCP 47 language tag.
func NewMapBuilder(face *ot.Face, lang language.Tag) *MapBuilder {
	scripts, languages := TagsFor(lang)
	mb := &MapBuilder{face: face}
	for t, table := range tableTags {
		mb.script[t], mb.chosenScript[t], mb.foundScript[t] = TableSelectScript(face, table, scripts)
		mb.langsys[t], _ = ScriptSelectLanguage(face, table, mb.script[t], languages)
		mb.variations[t] = ot.NoVariationsIndex
	}
	return mb
}

// SetVariations selects the feature variations matching normalized variation
// coordinates (F2DOT14), for both layout tables.
func (mb *MapBuilder) SetVariations(coords []int) {
	for t, table := range tableTags {
		mb.variations[t], _ = TableFindFeatureVariations(mb.face, table, coords)
	}
}

// AddFeature adds a feature with a maximum value. For global features,
// value is also the default value of all glyphs. Adding a feature with value
// 0 disables it.
func (mb *MapBuilder) AddFeature(tag ot.Tag, flags FeatureFlags, value uint32) {
	if tag == ot.TagNone {
		return
	}
	info := featureInfo{
		tag:      tag,
		seq:      len(mb.features) + 1,
		maxValue: value,
		flags:    flags,
		stage:    mb.currentStage,
	}
	if flags&FeatureGlobal != 0 {
		info.defaultValue = value
	}
	mb.features = append(mb.features, info)
}

// EnableFeature adds a global feature with value 1.
func (mb *MapBuilder) EnableFeature(tag ot.Tag) {
	mb.AddFeature(tag, FeatureGlobal, 1)
}

// AddGSubPause ends the current GSUB stage. pause, if non-nil, is called
// after the stage's lookups have been applied.
func (mb *MapBuilder) AddGSubPause(pause PauseFunc) {
	mb.addPause(0, pause)
}

// AddGPosPause ends the current GPOS stage.
func (mb *MapBuilder) AddGPosPause(pause PauseFunc) {
	mb.addPause(1, pause)
}

func (mb *MapBuilder) addPause(t int, pause PauseFunc) {
	mb.stages[t] = append(mb.stages[t], stageInfo{index: mb.currentStage[t], pause: pause})
	mb.currentStage[t]++
}

// mergeFeatures sorts features by tag and merges duplicates. A later global
// addition overrides earlier ones, a later non-global one widens the value
// range.
func mergeFeatures(features []featureInfo) []featureInfo {
	slices.SortStableFunc(features, func(a, b featureInfo) int {
		if a.tag != b.tag {
			if a.tag < b.tag {
				return -1
			}
			return 1
		}
		return a.seq - b.seq
	})
	if len(features) == 0 {
		return features
	}
	j := 0
	for i := 1; i < len(features); i++ {
		if features[i].tag != features[j].tag {
			j++
			features[j] = features[i]
			continue
		}
		f := &features[j]
		if features[i].flags&FeatureGlobal != 0 {
			f.flags |= FeatureGlobal
			f.maxValue = features[i].maxValue
			f.defaultValue = features[i].defaultValue
		} else {
			f.flags &^= FeatureGlobal
			f.maxValue = max(f.maxValue, features[i].maxValue)
		}
		f.flags |= features[i].flags & FeatureHasFallback
		f.stage[0] = min(f.stage[0], features[i].stage[0])
		f.stage[1] = min(f.stage[1], features[i].stage[1])
	}
	return features[:j+1]
}

// Compile creates the lookup map. Features not present in the font (and
// without fallback) are dropped, as are features for which no mask bits are
// left.
func (mb *MapBuilder) Compile() *Map {
	m := &Map{
		chosenScript: mb.chosenScript,
		foundScript:  mb.foundScript,
		globalMask:   GlobalMask,
	}
	var requiredIndex, requiredStage [2]int
	var requiredTag [2]ot.Tag
	for t, table := range tableTags {
		requiredIndex[t], requiredTag[t], _ = LanguageRequiredFeature(mb.face, table, mb.script[t], mb.langsys[t])
	}
	nextBit := bits.Len32(GlobalMask)
	for _, info := range mergeFeatures(slices.Clone(mb.features)) {
		bitsNeeded := 0
		globalBit := info.flags&FeatureGlobal != 0 && info.maxValue == 1
		if !globalBit {
			bitsNeeded = min(maxFeatureBits, bits.Len32(info.maxValue))
		}
		if info.maxValue == 0 || nextBit+bitsNeeded > 32 {
			tracer().Debugf("feature %s disabled or out of mask bits", info.tag)
			continue
		}
		found := false
		var index [2]int
		for t, table := range tableTags {
			if requiredTag[t] == info.tag {
				requiredStage[t] = info.stage[t]
			}
			var ok bool
			index[t], ok = LanguageFindFeature(mb.face, table, mb.script[t], mb.langsys[t], info.tag)
			found = found || ok
		}
		if !found && info.flags&FeatureHasFallback == 0 {
			continue
		}
		fm := featureMap{tag: info.tag, index: index, stage: info.stage, fallback: !found}
		if globalBit {
			fm.shift, fm.mask = 0, GlobalMask
		} else {
			fm.shift = nextBit
			fm.mask = uint32((uint64(1)<<(nextBit+bitsNeeded) - 1) &^ (uint64(1)<<nextBit - 1))
			nextBit += bitsNeeded
			m.globalMask |= (info.defaultValue << fm.shift) & fm.mask
		}
		fm.oneMask = (1 << fm.shift) & fm.mask
		m.features = append(m.features, fm)
	}
	for t := range tableTags {
		m.stages[t] = mb.compileStages(t, m, requiredIndex[t], requiredStage[t])
	}
	return m
}

// compileStages collects the lookups of the features of m, stage by stage. The
// last stage, without pause, holds the lookups added after the last pause.
func (mb *MapBuilder) compileStages(t int, m *Map, required, requiredStage int) []Stage {
	table := tableTags[t]
	lookupCount := TableLookupCount(mb.face, table)
	addLookups := func(lookups []LookupMapEntry, feature int, mask uint32) []LookupMapEntry {
		if feature == ot.NotFoundIndex {
			return lookups
		}
		f := layoutTable(mb.face, table).FeatureVariation(feature, mb.variations[t])
		for i := 0; i < f.LookupCount(); i++ {
			if inx := f.LookupIndex(i); inx < lookupCount {
				lookups = append(lookups, LookupMapEntry{Index: inx, Mask: mask})
			}
		}
		return lookups
	}
	pauses := append(slices.Clone(mb.stages[t]), stageInfo{index: mb.currentStage[t]})
	stages := make([]Stage, len(pauses))
	for stage := range stages {
		var lookups []LookupMapEntry
		if required != ot.NotFoundIndex && requiredStage == stage {
			lookups = addLookups(lookups, required, GlobalMask)
		}
		for _, f := range m.features {
			if f.stage[t] == stage {
				lookups = addLookups(lookups, f.index[t], f.mask)
			}
		}
		stages[stage] = Stage{Lookups: mergeLookups(lookups), Pause: pauses[stage].pause}
	}
	return stages
}

// mergeLookups sorts lookups by index and merges duplicates, combining their masks.
func mergeLookups(lookups []LookupMapEntry) []LookupMapEntry {
	if len(lookups) == 0 {
		return nil
	}
	slices.SortStableFunc(lookups, func(a, b LookupMapEntry) int { return a.Index - b.Index })
	j := 0
	for i := 1; i < len(lookups); i++ {
		if lookups[i].Index != lookups[j].Index {
			j++
			lookups[j] = lookups[i]
		} else {
			lookups[j].Mask |= lookups[i].Mask
		}
	}
	return lookups[:j+1]
}
