package otlayout

import (
	"testing"

	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func tags(ss ...string) []ot.Tag {
	r := make([]ot.Tag, len(ss))
	for i, s := range ss {
		r[i] = ot.T(s)
	}
	return r
}

func TestScriptTagsFor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	for _, test := range []struct {
		script string
		tags   []ot.Tag
	}{
		{"Latn", tags("latn")},
		{"Cyrl", tags("cyrl")},
		{"Deva", tags("dev3", "dev2", "deva")},
		{"Mymr", tags("mym2", "mymr")},
		{"Hira", tags("kana")},
		{"Kana", tags("kana")},
		{"Laoo", tags("lao ")},
		{"Zyyy", nil},
		{"Zinh", nil},
	} {
		assert.Equal(t, test.tags, ScriptTagsFor(language.MustParseScript(test.script)), test.script)
	}
}

func TestLanguageTagsFor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	for _, test := range []struct {
		lang string
		tags []ot.Tag
	}{
		{"en", tags("ENG ")},
		{"de-CH", tags("DEU ")},
		{"tr", tags("TRK ")},
		{"ro", tags("ROM ", "MOL ")},
		{"zh", tags("ZHS ")},
		{"zh-TW", tags("ZHT ")},
		{"zh-Hant", tags("ZHT ")},
		{"zh-HK", tags("ZHH ")},
		{"en-x-hbot-abc", tags("ABC ")},
		{"und", nil},
		{"und-Latn", nil},
		{"und-x-hbot-tro", tags("TRO ")},
	} {
		assert.Equal(t, test.tags, LanguageTagsFor(language.MustParse(test.lang)), test.lang)
	}
}

func TestTagsFor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	scripts, languages := TagsFor(language.MustParse("sr-Cyrl"))
	assert.Equal(t, tags("cyrl"), scripts)
	assert.Equal(t, tags("SRB "), languages)
	scripts, languages = TagsFor(language.MustParse("en-x-hbsc-grek"))
	assert.Equal(t, tags("grek"), scripts)
	assert.Equal(t, tags("ENG "), languages)
	scripts, _ = TagsFor(language.MustParse("hi"))
	assert.Equal(t, tags("dev3", "dev2", "deva"), scripts)
	_, languages = TagsFor(language.Und)
	assert.Nil(t, languages, "undetermined language must not map to 'ENG '")
}

func TestSelectScriptAndLanguage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := queryFace(t)
	script, lang, ok := SelectScriptAndLanguage(face, ot.TagGSUB, language.MustParse("de-Latn"))
	assert.True(t, ok)
	assert.Equal(t, 1, script)
	assert.Equal(t, 0, lang)
	script, lang, ok = SelectScriptAndLanguage(face, ot.TagGSUB, language.MustParse("fr-Latn"))
	assert.False(t, ok)
	assert.Equal(t, 1, script)
	assert.Equal(t, 1, lang, "explicit 'dflt' language system")
	script, lang, ok = SelectScriptAndLanguage(face, ot.TagGSUB, language.MustParse("und-Latn"))
	assert.False(t, ok)
	assert.Equal(t, 1, script)
	assert.Equal(t, 1, lang, "undetermined language selects 'dflt'")
	script, lang, ok = SelectScriptAndLanguage(face, ot.TagGSUB, language.MustParse("ru-Cyrl"))
	assert.False(t, ok)
	assert.Equal(t, 0, script, "DFLT")
	assert.Equal(t, ot.DefaultLanguageIndex, lang)
}
