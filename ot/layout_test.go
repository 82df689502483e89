package ot

import (
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLayout is a GSUB table with
//
//	scripts:  DFLT (default: liga), latn (default: liga smcp; TRK: required ss01, cv01)
//	features: 0 liga → 0, 1 smcp → 1, 2 ss01 → 1 with params, 3 cv01 → 0 1 with params
//	lookups:  0 ligature, 1 single (via extension, with mark filtering set 1)
func testLayout() otbuild.Layout {
	return otbuild.Layout{
		Scripts: []otbuild.Script{
			{Tag: "DFLT", Default: &otbuild.LangSys{Required: otbuild.NoFeature, Features: []uint16{0}}},
			{Tag: "latn",
				Default: &otbuild.LangSys{Required: otbuild.NoFeature, Features: []uint16{0, 1}},
				LangSys: []otbuild.LangSys{
					{Tag: "TRK ", Required: 2, Features: []uint16{3}},
				}},
		},
		Features: []otbuild.Feature{
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "smcp", Lookups: []uint16{1}},
			{Tag: "ss01", Lookups: []uint16{1}, Params: otbuild.StylisticSetParams(256)},
			{Tag: "cv01", Lookups: []uint16{0, 1},
				Params: otbuild.CharacterVariantParams(257, 258, 259, 2, 260, 'a', 'b', 0x1F600)},
		},
		Lookups: []otbuild.Lookup{
			{Type: 4, Subtables: []*otbuild.Table{
				otbuild.LigatureSubst(otbuild.Coverage1(1), []otbuild.Ligature{{Glyph: 50, Components: []uint16{2, 3}}}),
			}},
			{Type: 7, Flag: 0x0010 | 0x0008, MarkFilteringSet: 1, Subtables: []*otbuild.Table{
				otbuild.Extension(1, otbuild.SingleSubst1(otbuild.Coverage1(4, 5), 10)),
			}},
		},
	}
}

func gsubFace(t *testing.T, layout otbuild.Layout) *Face {
	return testFace(t, map[string][]byte{"GSUB": layout.Bytes(), "maxp": otbuild.Maxp(100)})
}

func TestLayoutScripts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	face := gsubFace(t, testLayout())
	require.Equal(t, Passed, face.Sanitize(TagGSUB), "errors: %v", face.Errors())
	gsub := face.GSUB()
	require.True(t, gsub.HasData())
	assert.Equal(t, TagGSUB, gsub.TableTag())
	assert.Equal(t, 2, gsub.ScriptCount())
	assert.Equal(t, TagDFLT, gsub.ScriptTag(0))
	assert.Equal(t, TagNone, gsub.ScriptTag(2))
	inx, ok := gsub.FindScript(TagLatn)
	assert.True(t, ok)
	assert.Equal(t, 1, inx)
	inx, ok = gsub.FindScript(T("cyrl"))
	assert.False(t, ok)
	assert.Equal(t, NotFoundIndex, inx)
	//
	latn := gsub.Script(1)
	assert.Equal(t, TagLatn, latn.Tag())
	assert.True(t, latn.HasDefaultLangSys())
	assert.Equal(t, 1, latn.LangSysCount())
	assert.Equal(t, T("TRK "), latn.LangSysTag(0))
	trk, ok := latn.FindLangSys(T("TRK "))
	assert.True(t, ok)
	ls := latn.LangSys(trk)
	assert.True(t, ls.HasRequiredFeature())
	assert.Equal(t, 2, ls.RequiredFeatureIndex())
	assert.Equal(t, 1, ls.FeatureCount())
	assert.Equal(t, 3, ls.FeatureIndex(0))
	assert.Equal(t, NotFoundIndex, ls.FeatureIndex(1))
	deflt := latn.LangSys(DefaultLanguageIndex)
	assert.False(t, deflt.HasRequiredFeature())
	buf := make([]int, 4)
	total, n := deflt.FeatureIndexes(0, buf)
	assert.Equal(t, 2, total)
	assert.Equal(t, []int{0, 1}, buf[:n])
	//
	empty := gsub.Script(5)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.LangSysCount())
	assert.False(t, empty.DefaultLangSys().HasRequiredFeature())
}

func TestLayoutPagedTags(t *testing.T) {
	face := gsubFace(t, testLayout())
	gsub := face.GSUB()
	want := []Tag{T("liga"), T("smcp"), T("ss01"), T("cv01")}
	for size := 1; size <= 5; size++ {
		buf := make([]Tag, size)
		var tags []Tag
		for start := 0; ; {
			total, n := gsub.FeatureTags(start, buf)
			if total != len(want) {
				t.Fatalf("expected total %d, have %d", len(want), total)
			}
			if n == 0 {
				break
			}
			tags = append(tags, buf[:n]...)
			start += n
		}
		assert.Equal(t, want, tags, "buffer size %d", size)
	}
}

func TestLayoutFeaturesAndLookups(t *testing.T) {
	face := gsubFace(t, testLayout())
	gsub := face.GSUB()
	assert.Equal(t, 4, gsub.FeatureCount())
	inx, ok := gsub.FindFeature(T("smcp"))
	require.True(t, ok)
	smcp := gsub.Feature(inx)
	assert.Equal(t, T("smcp"), smcp.Tag())
	assert.Equal(t, 1, smcp.LookupCount())
	assert.Equal(t, 1, smcp.LookupIndex(0))
	assert.False(t, smcp.HasParams())
	assert.True(t, gsub.Feature(9).IsEmpty())
	//
	assert.Equal(t, 2, gsub.LookupCount())
	lig := gsub.Lookup(0)
	assert.Equal(t, GSubLookupTypeLigature, lig.Type())
	assert.False(t, lig.IsReverse())
	assert.Equal(t, NotFoundIndex, lig.MarkFilteringSet())
	ext := gsub.Lookup(1)
	assert.Equal(t, GSubLookupTypeExtensionSubs, ext.Type())
	assert.Equal(t, GSubLookupTypeSingle, ext.ResolvedType())
	assert.Equal(t, 1, ext.MarkFilteringSet())
	assert.Equal(t, uint32(0x0018|1<<16), ext.Props())
	st := ext.SubTable(0)
	assert.Equal(t, GSubLookupTypeSingle, st.Type)
	g, ok := st.SingleSubstitute(5)
	assert.True(t, ok)
	assert.Equal(t, GlyphIndex(15), g)
	assert.True(t, gsub.Lookup(2).IsEmpty())
}

func TestLayoutFeatureParams(t *testing.T) {
	face := gsubFace(t, testLayout())
	gsub := face.GSUB()
	ss01 := gsub.Feature(2)
	ss, ok := ss01.StylisticSetParams().Unwrap()
	require.True(t, ok)
	assert.Equal(t, NameID(256), ss.UINameID)
	assert.False(t, ss01.CharacterVariantParams().IsSome(), "ss01 has no cv params")
	assert.False(t, ss01.SizeParams().IsSome())
	//
	cv01 := gsub.Feature(3)
	cv, ok := cv01.CharacterVariantParams().Unwrap()
	require.True(t, ok)
	assert.Equal(t, NameID(257), cv.UILabelNameID)
	assert.Equal(t, NameID(260), cv.FirstParamUILabelNameID)
	assert.Equal(t, 2, cv.NumNamedParameters)
	assert.Equal(t, 3, cv.CharacterCount)
	chars := make([]rune, 2)
	total, n := cv01.Characters(1, chars)
	assert.Equal(t, 3, total)
	assert.Equal(t, []rune{'b', 0x1F600}, chars[:n])
	total, _ = ss01.Characters(0, chars)
	assert.Equal(t, 0, total)
	assert.True(t, IsStylisticSet(T("ss20")))
	assert.False(t, IsStylisticSet(T("ssty")))
	assert.True(t, IsCharacterVariant(T("cv99")))
}

func TestLayoutMismatchedParams(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	layout := otbuild.Layout{
		Features: []otbuild.Feature{
			// cv params truncated: claims 200 characters
			{Tag: "cv02", Params: otbuild.New().U16(0, 1, 2, 3, 0, 0, 200)},
			{Tag: "liga", Params: otbuild.StylisticSetParams(256)},
			// look like 'ssXX' and 'cvXX', but are not numbered
			{Tag: "ssty", Params: otbuild.StylisticSetParams(256)},
			{Tag: "cvxx", Params: otbuild.CharacterVariantParams(256, 0, 0, 0, 0, 'a')},
		},
	}
	face := gsubFace(t, layout)
	require.Equal(t, Passed, face.Sanitize(TagGSUB), "broken params must not reject the table")
	gsub := face.GSUB()
	assert.False(t, gsub.Feature(0).CharacterVariantParams().IsSome())
	assert.False(t, gsub.Feature(1).StylisticSetParams().IsSome())
	assert.False(t, gsub.Feature(1).HasParams())
	assert.False(t, gsub.Feature(2).StylisticSetParams().IsSome())
	assert.False(t, gsub.Feature(3).CharacterVariantParams().IsSome())
	assert.False(t, IsCharacterVariant(T("cvxx")))
}

func TestLayoutSizeParams(t *testing.T) {
	layout := otbuild.Layout{
		Features: []otbuild.Feature{
			{Tag: "size", Params: otbuild.SizeParams(100, 1, 256, 80, 120)},
			{Tag: "kern"},
		},
	}
	face := testFace(t, map[string][]byte{"GPOS": layout.Bytes()})
	gpos := face.GPOS()
	size, ok := gpos.Feature(0).SizeParams().Unwrap()
	require.True(t, ok)
	assert.Equal(t, uint16(100), size.DesignSize)
	assert.Equal(t, NameID(256), size.SubfamilyNameID)
	assert.Equal(t, uint16(120), size.RangeEnd)
	assert.False(t, gpos.Feature(1).SizeParams().IsSome())
}

func TestLayoutFeatureVariations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	layout := testLayout()
	layout.Variations = otbuild.FeatureVariations(
		otbuild.VariationRecord{
			Conditions: []otbuild.Condition{{Axis: 0, Min: 0x2000, Max: 0x4000}},
			Substitutions: []otbuild.Substitution{
				{FeatureIndex: 0, Feature: otbuild.Feature{Lookups: []uint16{1}}},
			},
		},
		otbuild.VariationRecord{
			Conditions: []otbuild.Condition{{Axis: 1, Min: -0x4000, Max: 0}},
		},
	)
	face := gsubFace(t, layout)
	require.Equal(t, Passed, face.Sanitize(TagGSUB), "errors: %v", face.Errors())
	gsub := face.GSUB()
	assert.Equal(t, 2, gsub.FeatureVariationCount())
	v, ok := gsub.FindVariationsIndex([]int{0x3000})
	assert.True(t, ok)
	assert.Equal(t, uint32(0), v)
	v, ok = gsub.FindVariationsIndex([]int{0x1000}) // axis 1 missing → 0
	assert.True(t, ok)
	assert.Equal(t, uint32(1), v)
	v, ok = gsub.FindVariationsIndex([]int{0x1000, 0x1000})
	assert.False(t, ok)
	assert.Equal(t, NoVariationsIndex, v)
	//
	f := gsub.FeatureVariation(0, 0)
	assert.Equal(t, T("liga"), f.Tag())
	assert.Equal(t, 1, f.LookupIndex(0), "substituted feature")
	assert.Equal(t, 0, gsub.FeatureVariation(0, 1).LookupIndex(0), "no substitution in record 1")
	assert.Equal(t, 0, gsub.FeatureVariation(0, NoVariationsIndex).LookupIndex(0))
}

func TestLayoutEmptyTable(t *testing.T) {
	face := testFace(t, map[string][]byte{"maxp": otbuild.Maxp(1)})
	gsub := face.GSUB()
	assert.False(t, gsub.HasData())
	assert.Equal(t, 0, gsub.ScriptCount())
	total, n := gsub.ScriptTags(0, make([]Tag, 3))
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, n)
	_, ok := gsub.FindScript(TagDFLT)
	assert.False(t, ok)
	assert.True(t, gsub.Lookup(0).IsEmpty())
	assert.Equal(t, 0, gsub.Feature(0).LookupCount())
	_, ok = gsub.FindVariationsIndex(nil)
	assert.False(t, ok)
}
