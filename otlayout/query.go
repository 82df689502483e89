package otlayout

import (
	"github.com/npillmayer/otview/ot"
)

// Layout queries address a layout table of a face by its tag, which is either
// GSUB or GPOS. Scripts, language systems, features and lookups are addressed
// by index. Indices are positions in the table's lists, as returned by the
// Find… and Select… functions.

// layoutTable returns the sanitized layout table of a face, or nil, which
// behaves like an empty table.
func layoutTable(face *ot.Face, table ot.Tag) *ot.LayoutTable {
	if face == nil {
		return nil
	}
	return face.LayoutTable(table)
}

func langSys(face *ot.Face, table ot.Tag, script, lang int) ot.LangSys {
	return layoutTable(face, table).Script(script).LangSys(lang)
}

// --- Table level -----------------------------------------------------------

// HasSubstitution reports whether face has a valid GSUB table.
func HasSubstitution(face *ot.Face) bool {
	return layoutTable(face, ot.TagGSUB).HasData()
}

// HasPositioning reports whether face has a valid GPOS table.
func HasPositioning(face *ot.Face) bool {
	return layoutTable(face, ot.TagGPOS).HasData()
}

// TableScriptTags copies the script tags of a layout table into buf, starting
// with script number start. It returns the total number of scripts and the
// number of tags copied.
func TableScriptTags(face *ot.Face, table ot.Tag, start int, buf []ot.Tag) (int, int) {
	return layoutTable(face, table).ScriptTags(start, buf)
}

// TableFindScript finds the index of a script by tag.
//
// If the script is not present, TableFindScript falls back to 'DFLT', 'dflt'
// and 'latn', in this order. The boolean result is true only if tag itself has
// been found. If neither tag nor a fallback is present, the index is
// ot.NotFoundIndex.
func TableFindScript(face *ot.Face, table ot.Tag, tag ot.Tag) (int, bool) {
	lt := layoutTable(face, table)
	if i, ok := lt.FindScript(tag); ok {
		return i, true
	}
	for _, fallback := range []ot.Tag{ot.TagDFLT, ot.TagDflt, ot.TagLatn} {
		if i, ok := lt.FindScript(fallback); ok {
			tracer().Debugf("script %s not found, falling back to %s", tag, fallback)
			return i, false
		}
	}
	return ot.NotFoundIndex, false
}

// TableSelectScript selects the first script of tags present in a layout table.
//
// It returns the script's index, the tag of the script chosen and true, if one of
// tags matched. Otherwise the same fallbacks as for TableFindScript are tried
// and reported with false. If nothing matches, TableSelectScript returns
// ot.NotFoundIndex, ot.TagNone and false.
func TableSelectScript(face *ot.Face, table ot.Tag, tags []ot.Tag) (int, ot.Tag, bool) {
	lt := layoutTable(face, table)
	for _, tag := range tags {
		if i, ok := lt.FindScript(tag); ok {
			return i, tag, true
		}
	}
	for _, fallback := range []ot.Tag{ot.TagDFLT, ot.TagDflt, ot.TagLatn} {
		if i, ok := lt.FindScript(fallback); ok {
			return i, fallback, false
		}
	}
	return ot.NotFoundIndex, ot.TagNone, false
}

// TableFeatureTags copies the feature tags of a layout table into buf, starting
// with feature number start.
func TableFeatureTags(face *ot.Face, table ot.Tag, start int, buf []ot.Tag) (int, int) {
	return layoutTable(face, table).FeatureTags(start, buf)
}

// TableFindFeature finds the index of the first feature with a given tag in
// the table's feature list.
func TableFindFeature(face *ot.Face, table ot.Tag, tag ot.Tag) (int, bool) {
	return layoutTable(face, table).FindFeature(tag)
}

// TableLookupCount returns the number of lookups of a layout table.
func TableLookupCount(face *ot.Face, table ot.Tag) int {
	return layoutTable(face, table).LookupCount()
}

// TableFindFeatureVariations returns the index of the first feature variation
// record matching the normalized variation coordinates coords (F2DOT14).
// If no record matches, ot.NoVariationsIndex and false are returned.
func TableFindFeatureVariations(face *ot.Face, table ot.Tag, coords []int) (uint32, bool) {
	return layoutTable(face, table).FindVariationsIndex(coords)
}

// --- Scripts and language systems ------------------------------------------

// ScriptLanguageTags copies the language system tags of a script into buf,
// starting with language system number start.
func ScriptLanguageTags(face *ot.Face, table ot.Tag, script int, start int, buf []ot.Tag) (int, int) {
	return layoutTable(face, table).Script(script).LangSysTags(start, buf)
}

// ScriptFindLanguage finds the index of a script's language system by tag.
// It is a shortcut for ScriptSelectLanguage with a single tag.
func ScriptFindLanguage(face *ot.Face, table ot.Tag, script int, tag ot.Tag) (int, bool) {
	return ScriptSelectLanguage(face, table, script, []ot.Tag{tag})
}

// ScriptSelectLanguage selects the first language system of tags present in
// a script and returns its index and true.
//
// If none of tags is present, the 'dflt' language system is returned, if the
// script lists one explicitly. Otherwise the index is ot.DefaultLanguageIndex,
// denoting the script's default language system. In both cases the boolean
// result is false.
func ScriptSelectLanguage(face *ot.Face, table ot.Tag, script int, tags []ot.Tag) (int, bool) {
	sc := layoutTable(face, table).Script(script)
	for _, tag := range tags {
		if i, ok := sc.FindLangSys(tag); ok {
			return i, true
		}
	}
	if i, ok := sc.FindLangSys(ot.TagDflt); ok {
		return i, false
	}
	return ot.DefaultLanguageIndex, false
}

// LanguageRequiredFeature returns the index and tag of the required feature of
// a language system. If there is none, it returns ot.NotFoundIndex, ot.TagNone
// and false.
func LanguageRequiredFeature(face *ot.Face, table ot.Tag, script, lang int) (int, ot.Tag, bool) {
	ls := langSys(face, table, script, lang)
	if !ls.HasRequiredFeature() {
		return ot.NotFoundIndex, ot.TagNone, false
	}
	inx := ls.RequiredFeatureIndex()
	return inx, layoutTable(face, table).FeatureTag(inx), true
}

// LanguageFeatureIndexes copies the feature indices of a language system into
// buf, starting with entry start. The required feature is not included.
func LanguageFeatureIndexes(face *ot.Face, table ot.Tag, script, lang int, start int, buf []int) (int, int) {
	return langSys(face, table, script, lang).FeatureIndexes(start, buf)
}

// LanguageFeatureTags copies the tags of the features of a language system
// into buf, starting with entry start. The required feature is not included.
func LanguageFeatureTags(face *ot.Face, table ot.Tag, script, lang int, start int, buf []ot.Tag) (int, int) {
	lt := layoutTable(face, table)
	ls := lt.Script(script).LangSys(lang)
	return ot.Page(ls.FeatureCount(), start, buf, func(i int) ot.Tag {
		return lt.FeatureTag(ls.FeatureIndex(i))
	})
}

// LanguageFindFeature finds a feature of a language system by tag and returns
// the feature's index into the table's feature list.
func LanguageFindFeature(face *ot.Face, table ot.Tag, script, lang int, tag ot.Tag) (int, bool) {
	lt := layoutTable(face, table)
	ls := lt.Script(script).LangSys(lang)
	for i := 0; i < ls.FeatureCount(); i++ {
		inx := ls.FeatureIndex(i)
		if lt.FeatureTag(inx) == tag {
			return inx, true
		}
	}
	return ot.NotFoundIndex, false
}

// --- Features --------------------------------------------------------------

// FeatureLookups copies the lookup indices of a feature into buf, starting
// with entry start.
func FeatureLookups(face *ot.Face, table ot.Tag, feature int, start int, buf []int) (int, int) {
	return layoutTable(face, table).Feature(feature).LookupIndexes(start, buf)
}

// FeatureWithVariationsLookups copies the lookup indices of a feature, as
// substituted by feature variation record variations, into buf. With
// variations set to ot.NoVariationsIndex it behaves like FeatureLookups.
func FeatureWithVariationsLookups(face *ot.Face, table ot.Tag, feature int, variations uint32,
	start int, buf []int) (int, int) {
	//
	return layoutTable(face, table).FeatureVariation(feature, variations).LookupIndexes(start, buf)
}

// --- GDEF ------------------------------------------------------------------

// HasGlyphClasses reports whether the face's GDEF table defines glyph classes.
func HasGlyphClasses(face *ot.Face) bool {
	return GDEF(face).HasGlyphClasses()
}

// GlyphClass returns the GDEF glyph class of g.
func GlyphClass(face *ot.Face, g ot.GlyphIndex) ot.GlyphClass {
	return GDEF(face).GlyphClass(g)
}

// GlyphsInClass returns the set of glyphs of a GDEF glyph class.
func GlyphsInClass(face *ot.Face, class ot.GlyphClass) *GlyphSet {
	gs := NewGlyphSet()
	gs.AddAll(GDEF(face).GlyphsInClass(class))
	return gs
}

// AttachPoints copies the attachment point indices of glyph g into buf,
// starting with point number start.
func AttachPoints(face *ot.Face, g ot.GlyphIndex, start int, buf []uint16) (int, int) {
	return GDEF(face).AttachPoints(g, start, buf)
}

// LigatureCarets copies the ligature caret values of glyph g into buf, starting
// with caret number start. Caret values are reported as stored in the font,
// without any adjustment for text direction or device tables.
func LigatureCarets(face *ot.Face, g ot.GlyphIndex, start int, buf []ot.CaretValue) (int, int) {
	return GDEF(face).LigCarets(g, start, buf)
}
