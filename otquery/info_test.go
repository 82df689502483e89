package otquery

import (
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	face *ot.Face
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.layout").SetTraceLevel(tracing.LevelError)
	env.face = infoFace(env.T())
	tracing.Select("font.layout").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestNames() {
	name, ok := Name(env.face, sfnt.NameIDFull)
	env.True(ok)
	env.Equal("Test Sans Regular", name)
	_, ok = Name(env.face, sfnt.NameIDCopyright)
	env.False(ok, "expected no copyright string")
	count := 0
	for id, value := range NamesRange(env.face) {
		env.NotEmpty(value, "expected name %d to be non-empty", id)
		count++
	}
	env.Equal(11, count)
}

func (env *InfoTestEnviron) TestPalettes() {
	palettes := Palettes(env.face)
	env.Require().Len(palettes, 2)
	env.Equal("Dark", palettes[0].Name)
	env.Equal(ot.NameID(256), palettes[0].NameID)
	env.Equal([]ot.Color{0xFFFF0000, 0xFF00FF00}, palettes[0].Colors)
	env.True(palettes[0].UsableWithDarkBackground())
	env.False(palettes[0].UsableWithLightBackground())
	env.Equal("Light", palettes[1].Name)
	env.True(palettes[1].UsableWithLightBackground())
	//
	name, ok := PaletteName(env.face, 1)
	env.True(ok)
	env.Equal("Light", name)
	_, ok = PaletteName(env.face, 2)
	env.False(ok, "expected no name for palette 2")
	name, ok = PaletteEntryName(env.face, 0)
	env.True(ok)
	env.Equal("Red", name)
	_, ok = PaletteEntryName(env.face, 1)
	env.False(ok, "expected entry 1 to be unnamed")
}

func (env *InfoTestEnviron) TestFeatureLabels() {
	label, ok := FeatureUILabel(env.face, ot.TagGSUB, 1)
	env.True(ok)
	env.Equal("Swash set", label)
	_, ok = FeatureUILabel(env.face, ot.TagGSUB, 0)
	env.False(ok, "'liga' has no UI label")
	//
	ui, ok := FeatureUINames(env.face, ot.TagGSUB, 2)
	env.Require().True(ok)
	env.Equal("Alt a", ui.Label)
	env.Equal("Tooltip", ui.Tooltip)
	env.Equal("Sample", ui.Sample)
	env.Equal([]string{"Param 1", "Param 2"}, ui.Params)
}

func (env *InfoTestEnviron) TestSupportsScript() {
	latn, trk := ot.T("latn"), ot.T("TRK ")
	scr, lang := SupportsScript(env.face, latn, trk)
	env.Equal(latn, scr)
	env.Equal(trk, lang)
	scr, lang = SupportsScript(env.face, latn, ot.T("DEU "))
	env.Equal(latn, scr)
	env.Equal(ot.TagDflt, lang)
	scr, lang = SupportsScript(env.face, ot.T("cyrl"), ot.T("RUS "))
	env.Equal(ot.TagDFLT, scr)
	env.Equal(ot.TagDflt, lang)
}

func (env *InfoTestEnviron) TestSummary() {
	sum := Summary(env.face)
	env.Equal(ot.FlavorTrueType, sum.Flavor)
	env.Equal(500, sum.GlyphCount)
	env.Equal("Test Sans Regular", sum.FullName)
	env.Equal(sfnt.Units(1000), sum.UnitsPerEm)
	env.True(sum.HasGSUB)
	env.True(sum.HasGPOS)
	env.False(sum.HasGDEF)
	env.True(sum.HasCPAL)
	env.Equal(2, sum.Palettes)
	env.Equal([]ot.Tag{ot.TagDFLT, ot.T("grek"), ot.T("latn")}, sum.Scripts)
	env.Equal([]ot.Tag{ot.T("CPAL"), ot.T("GPOS"), ot.T("GSUB"), ot.T("head"), ot.T("maxp"), ot.T("name")},
		sum.Tables)
}

func (env *InfoTestEnviron) TestLayoutInfo() {
	layouts := LayoutTables(env.face)
	env.T().Logf("test font layout tables: %v", layouts)
	env.Equal([]string{"GSUB", "GPOS"}, layouts)
}

// --- Tests without a suite -------------------------------------------------

func TestMacintoshNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	deutsch := otbuild.New()
	for _, r := range "Deutsch" {
		deutsch.U16(uint16(r))
	}
	// records: Macintosh Roman, Windows German, Windows UCS-4 (not supported)
	name := otbuild.New().U16(0, 3, 6+3*12).
		U16(1, 0, 0, 1, 4, 0).
		U16(3, 1, 0x0407, 1, 14, 4).
		U16(3, 10, 0x0409, 1, 4, 18).
		Data([]byte{'C', 'a', 'f', 0x8E}).Data(deutsch.Bytes()).Data([]byte{0, 0, 0, 'x'}).
		Bytes()
	face := testFace(t, map[string][]byte{"name": name})
	family, ok := Name(face, sfnt.NameIDFamily)
	if !ok || family != "Café" {
		t.Errorf("expected family name 'Café', have %q", family)
	}
	var all []string
	for _, value := range NamesRange(face) {
		all = append(all, value)
	}
	if len(all) != 2 || all[1] != "Deutsch" {
		t.Errorf("expected 2 decodable names, have %v", all)
	}
}

func TestMissingTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := testFace(t, map[string][]byte{"name": {0, 0, 0, 200}})
	if _, ok := Name(face, sfnt.NameIDFull); ok {
		t.Errorf("expected truncated name table to yield no names")
	}
	if p := Palettes(face); p != nil {
		t.Errorf("expected no palettes, have %v", p)
	}
	sum := Summary(face)
	if sum.UnitsPerEm != 0 || sum.HasGSUB || len(sum.Scripts) != 0 {
		t.Errorf("expected empty summary, have %+v", sum)
	}
	if sum := Summary(nil); sum.GlyphCount != 0 {
		t.Errorf("expected zero summary for nil face")
	}
}

// --- Helpers ----------------------------------------------------------

func testFace(t *testing.T, tables map[string][]byte) *ot.Face {
	t.Helper()
	if _, ok := tables["maxp"]; !ok {
		tables["maxp"] = otbuild.Maxp(500)
	}
	face, err := ot.NewFace(ot.NewBlob(otbuild.Font(tables)))
	if err != nil {
		t.Fatalf("cannot create face from synthetic font: %v", err)
	}
	return face
}

func headTable(unitsPerEm uint16) []byte {
	return otbuild.New().
		U32(0x00010000, 0x00018000, 0, 0x5F0F3CF5). // version, revision, checksum, magic
		U16(0, unitsPerEm).
		U32(0, 0, 0, 0).
		I16(-50, -200, 950, 800).
		U16(0, 8).I16(2, 0, 0).
		Bytes()
}

func infoFace(t *testing.T) *ot.Face {
	names := otbuild.Name(map[uint16]string{
		4:   "Test Sans Regular",
		256: "Dark",
		257: "Light",
		258: "Red",
		300: "Swash set",
		301: "Alt a",
		302: "Tooltip",
		303: "Sample",
		304: "Param 1",
		305: "Param 2",
		306: "unused",
	})
	cpal := otbuild.CPAL{
		Version:     1,
		Entries:     2,
		Palettes:    [][]uint32{{0xFFFF0000, 0xFF00FF00}, {0x80000000, 0xFFFFFFFF}},
		Types:       []uint32{uint32(ot.PaletteUsableWithDarkBackground), uint32(ot.PaletteUsableWithLightBackground)},
		Labels:      []uint16{256, 257},
		EntryLabels: []uint16{258, 0xFFFF},
	}
	gsub := otbuild.Layout{
		Scripts: []otbuild.Script{{
			Tag:     "latn",
			Default: &otbuild.LangSys{Required: otbuild.NoFeature, Features: []uint16{0, 1, 2}},
			LangSys: []otbuild.LangSys{{Tag: "TRK ", Required: otbuild.NoFeature, Features: []uint16{0}}},
		}},
		Features: []otbuild.Feature{
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "ss01", Params: otbuild.StylisticSetParams(300), Lookups: []uint16{0}},
			{Tag: "cv01", Params: otbuild.CharacterVariantParams(301, 302, 303, 2, 304, 'a')},
		},
		Lookups: []otbuild.Lookup{{
			Type:      1,
			Subtables: []*otbuild.Table{otbuild.SingleSubst1(otbuild.Coverage1(1), 1)},
		}},
	}
	gpos := otbuild.Layout{
		Scripts: []otbuild.Script{
			{Tag: "DFLT", Default: &otbuild.LangSys{Required: otbuild.NoFeature}},
			{Tag: "grek", Default: &otbuild.LangSys{Required: otbuild.NoFeature}},
		},
	}
	return testFace(t, map[string][]byte{
		"name": names,
		"CPAL": cpal.Bytes(),
		"GSUB": gsub.Bytes(),
		"GPOS": gpos.Bytes(),
		"head": headTable(1000),
	})
}
