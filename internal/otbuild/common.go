package otbuild

import "slices"

// Coverage1 builds a coverage table of format 1. Glyphs must be sorted.
func Coverage1(glyphs ...uint16) *Table {
	return New().U16(1, uint16(len(glyphs))).U16(glyphs...)
}

// Range is a glyph range of a coverage table of format 2.
type Range struct {
	Start, End uint16
	StartIndex uint16
}

// Coverage2 builds a coverage table of format 2.
func Coverage2(ranges ...Range) *Table {
	t := New().U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		t.U16(r.Start, r.End, r.StartIndex)
	}
	return t
}

// CoverageOf builds a coverage table of format 1 for a set of glyphs in any order.
func CoverageOf(glyphs ...uint16) *Table {
	sorted := slices.Clone(glyphs)
	slices.Sort(sorted)
	return Coverage1(slices.Compact(sorted)...)
}

// ClassDef1 builds a class definition table of format 1, assigning classes
// to consecutive glyphs starting at start.
func ClassDef1(start uint16, classes ...uint16) *Table {
	return New().U16(1, start, uint16(len(classes))).U16(classes...)
}

// ClassRange is a class range record of a class definition table of format 2.
type ClassRange struct {
	Start, End uint16
	Class      uint16
}

// ClassDef2 builds a class definition table of format 2.
func ClassDef2(ranges ...ClassRange) *Table {
	t := New().U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		t.U16(r.Start, r.End, r.Class)
	}
	return t
}

// --- Layout tables ---------------------------------------------------------

// NoFeature marks the absence of a required feature.
const NoFeature = 0xFFFF

// LangSys describes a language system. Required is the index of the required
// feature, or NoFeature.
type LangSys struct {
	Tag      string
	Required uint16
	Features []uint16
}

// Script describes a script table. Default may be nil.
type Script struct {
	Tag     string
	Default *LangSys
	LangSys []LangSys
}

// Feature describes a feature table. Params may be nil.
type Feature struct {
	Tag     string
	Params  *Table
	Lookups []uint16
}

// Lookup describes a lookup table. MarkFilteringSet is written only if the
// lookup flag asks for it.
type Lookup struct {
	Type             uint16
	Flag             uint16
	MarkFilteringSet uint16
	Subtables        []*Table
}

// Layout describes a GSUB or GPOS table. If Variations is non-nil, a
// version 1.1 header is written.
type Layout struct {
	Scripts    []Script
	Features   []Feature
	Lookups    []Lookup
	Variations *Table
}

const useMarkFilteringSet = 0x0010

func langSysTable(ls *LangSys) *Table {
	return New().U16(0, ls.Required, uint16(len(ls.Features))).U16(ls.Features...)
}

// FeatureTable builds a feature table, without its tag.
func FeatureTable(f Feature) *Table {
	return New().Off16(f.Params).U16(uint16(len(f.Lookups))).U16(f.Lookups...)
}

// LookupTable builds a lookup table.
func LookupTable(l Lookup) *Table {
	t := New().U16(l.Type, l.Flag, uint16(len(l.Subtables)))
	for _, st := range l.Subtables {
		t.Off16(st)
	}
	if l.Flag&useMarkFilteringSet != 0 {
		t.U16(l.MarkFilteringSet)
	}
	return t
}

// Table builds the layout table.
func (l Layout) Table() *Table {
	scripts := New().U16(uint16(len(l.Scripts)))
	for _, sc := range l.Scripts {
		st := New()
		if sc.Default != nil {
			st.Off16(langSysTable(sc.Default))
		} else {
			st.Off16(nil)
		}
		st.U16(uint16(len(sc.LangSys)))
		for i := range sc.LangSys {
			st.Tag(sc.LangSys[i].Tag).Off16(langSysTable(&sc.LangSys[i]))
		}
		scripts.Tag(sc.Tag).Off16(st)
	}
	features := New().U16(uint16(len(l.Features)))
	for _, f := range l.Features {
		features.Tag(f.Tag).Off16(FeatureTable(f))
	}
	lookups := New().U16(uint16(len(l.Lookups)))
	for _, lu := range l.Lookups {
		lookups.Off16(LookupTable(lu))
	}
	t := New()
	if l.Variations != nil {
		t.U16(1, 1)
	} else {
		t.U16(1, 0)
	}
	t.Off16(scripts).Off16(features).Off16(lookups)
	if l.Variations != nil {
		t.Off32(l.Variations)
	}
	return t
}

// Bytes serializes the layout table.
func (l Layout) Bytes() []byte {
	return l.Table().Bytes()
}

// Condition is a format 1 axis range condition, in F2DOT14 units.
type Condition struct {
	Axis     uint16
	Min, Max int16
}

// Substitution replaces feature number FeatureIndex by an alternate feature.
type Substitution struct {
	FeatureIndex uint16
	Feature      Feature
}

// VariationRecord pairs a condition set with feature substitutions.
type VariationRecord struct {
	Conditions    []Condition
	Substitutions []Substitution
}

// FeatureVariations builds a FeatureVariations table.
func FeatureVariations(records ...VariationRecord) *Table {
	t := New().U16(1, 0).U32(uint32(len(records)))
	for _, rec := range records {
		cs := New().U16(uint16(len(rec.Conditions)))
		for _, c := range rec.Conditions {
			cs.Off32(New().U16(1, c.Axis).I16(c.Min, c.Max))
		}
		subst := New().U16(1, 0).U16(uint16(len(rec.Substitutions)))
		for _, s := range rec.Substitutions {
			subst.U16(s.FeatureIndex).Off32(FeatureTable(s.Feature))
		}
		t.Off32(cs).Off32(subst)
	}
	return t
}

// StylisticSetParams builds feature parameters for a 'ssXX' feature.
func StylisticSetParams(uiNameID uint16) *Table {
	return New().U16(0, uiNameID)
}

// CharacterVariantParams builds feature parameters for a 'cvXX' feature.
func CharacterVariantParams(labelID, tooltipID, sampleID, numNamed, firstParamID uint16, chars ...rune) *Table {
	t := New().U16(0, labelID, tooltipID, sampleID, numNamed, firstParamID, uint16(len(chars)))
	for _, r := range chars {
		t.Data([]byte{byte(r >> 16), byte(r >> 8), byte(r)})
	}
	return t
}

// SizeParams builds feature parameters for a 'size' feature.
func SizeParams(designSize, subfamilyID, nameID, rangeStart, rangeEnd uint16) *Table {
	return New().U16(designSize, subfamilyID, nameID, rangeStart, rangeEnd)
}
