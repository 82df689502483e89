package otlayout

import (
	"strings"

	"github.com/npillmayer/otview/ot"
	"golang.org/x/text/language"
)

// Mapping of BCP 47 language tags and ISO 15924 scripts to OpenType script
// and language system tags.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/scripttags
// and https://docs.microsoft.com/en-us/typography/opentype/spec/languagetags

// Script tags differing from the lower-cased ISO 15924 code.
var scriptTagExceptions = map[string]ot.Tag{
	"Hira": ot.T("kana"), // Hiragana and Katakana both map to 'kana'
	"Laoo": ot.T("lao "),
	"Nkoo": ot.T("nko "),
	"Vaii": ot.T("vai "),
	"Yiii": ot.T("yi  "),
	"Zmth": ot.T("math"),
}

// Indic scripts with a second ('xxx2') and third ('xxx3') shaping model.
var indicScriptTags = map[string]string{
	"Beng": "bng",
	"Deva": "dev",
	"Gujr": "gjr",
	"Guru": "gur",
	"Knda": "knd",
	"Mlym": "mlm",
	"Orya": "ory",
	"Taml": "tml",
	"Telu": "tel",
	"Mymr": "mym",
}

// ScriptTagsFor returns the OpenType script tags for an ISO 15924 script, in
// order of preference. For Indic scripts these are the tags of the newer
// shaping models followed by the old one. Scripts without a specific tag
// (common, inherited, unknown) yield nil.
func ScriptTagsFor(script language.Script) []ot.Tag {
	code := script.String()
	if len(code) != 4 {
		return nil
	}
	switch code {
	case "Zyyy", "Zinh", "Zzzz":
		return nil
	}
	var tags []ot.Tag
	if prefix, ok := indicScriptTags[code]; ok {
		if code != "Mymr" { // there is no 'mym3'
			tags = append(tags, ot.T(prefix+"3"))
		}
		tags = append(tags, ot.T(prefix+"2"))
	}
	if tag, ok := scriptTagExceptions[code]; ok {
		return append(tags, tag)
	}
	if code == "Kana" {
		return append(tags, ot.T("kana"))
	}
	return append(tags, ot.T(strings.ToLower(code)))
}

// OpenType language system tags differing from the upper-cased ISO 639-3 code.
var languageTagExceptions = map[string][]ot.Tag{
	"afr": {ot.T("AFK ")},
	"bul": {ot.T("BGR ")},
	"ces": {ot.T("CSY ")},
	"cym": {ot.T("WEL ")},
	"est": {ot.T("ETI ")},
	"eus": {ot.T("EUQ ")},
	"fas": {ot.T("FAR ")},
	"fil": {ot.T("PIL ")},
	"gla": {ot.T("GAE ")},
	"gle": {ot.T("IRI ")},
	"glg": {ot.T("GAL ")},
	"heb": {ot.T("IWR ")},
	"jpn": {ot.T("JAN ")},
	"lav": {ot.T("LVI ")},
	"lit": {ot.T("LTH ")},
	"mlt": {ot.T("MTS ")},
	"mon": {ot.T("MNG ")},
	"msa": {ot.T("MLY ")},
	"mya": {ot.T("BRM ")},
	"nno": {ot.T("NYN ")},
	"nob": {ot.T("NOR ")},
	"nor": {ot.T("NOR ")},
	"pol": {ot.T("PLK ")},
	"por": {ot.T("PTG ")},
	"pus": {ot.T("PAS ")},
	"ron": {ot.T("ROM "), ot.T("MOL ")},
	"sin": {ot.T("SNH ")},
	"slk": {ot.T("SKY ")},
	"som": {ot.T("SML ")},
	"spa": {ot.T("ESP ")},
	"srp": {ot.T("SRB ")},
	"swa": {ot.T("SWK ")},
	"swe": {ot.T("SVE ")},
	"tur": {ot.T("TRK ")},
	"vie": {ot.T("VIT ")},
	"xho": {ot.T("XHS ")},
	"yid": {ot.T("JII ")},
	"yor": {ot.T("YBA ")},
}

// LanguageTagsFor returns the OpenType language system tags for a BCP 47
// language tag, in order of preference. A private use subtag '-hbot-xxxx'
// overrides the mapping. Undetermined languages yield nil, even if package
// language is able to guess a base language for them.
func LanguageTagsFor(lang language.Tag) []ot.Tag {
	if tag, ok := privateUseTag(lang, "-hbot", strings.ToUpper); ok {
		return []ot.Tag{tag}
	}
	base, conf := lang.Base()
	if conf != language.Exact {
		return nil
	}
	iso3 := base.ISO3()
	if iso3 == "zho" {
		return []ot.Tag{chineseTag(lang)}
	}
	if tags, ok := languageTagExceptions[iso3]; ok {
		return append([]ot.Tag(nil), tags...)
	}
	if len(iso3) != 3 {
		return nil
	}
	return []ot.Tag{ot.T(strings.ToUpper(iso3) + " ")}
}

// chineseTag distinguishes Chinese written in simplified characters, in
// traditional characters, and as used in Hong Kong.
func chineseTag(lang language.Tag) ot.Tag {
	region, conf := lang.Region()
	if conf != language.No && region.String() == "HK" {
		return ot.T("ZHH ")
	}
	if script, conf := lang.Script(); conf != language.No && script.String() == "Hant" {
		return ot.T("ZHT ")
	}
	if conf != language.No && (region.String() == "TW" || region.String() == "MO") {
		return ot.T("ZHT ")
	}
	return ot.T("ZHS ")
}

// TagsFor returns OpenType script and language system tags for a BCP 47
// language tag. The script is taken from a private use subtag '-hbsc-xxxx' if
// present, otherwise from the (possibly inferred) script of lang.
func TagsFor(lang language.Tag) (scripts []ot.Tag, languages []ot.Tag) {
	if tag, ok := privateUseTag(lang, "-hbsc", strings.ToLower); ok {
		scripts = []ot.Tag{tag}
	} else if script, conf := lang.Script(); conf != language.No {
		scripts = ScriptTagsFor(script)
	}
	return scripts, LanguageTagsFor(lang)
}

// privateUseTag extracts an OpenType tag from a private use subtag of lang
// starting with prefix, e.g. 'x-hbsc-latn'.
func privateUseTag(lang language.Tag, prefix string, normalize func(string) string) (ot.Tag, bool) {
	var private string
	for _, ext := range lang.Extensions() {
		if ext.Type() == 'x' {
			private = "-" + ext.String()
		}
	}
	s := strings.Index(private, prefix+"-")
	if s < 0 {
		return ot.TagNone, false
	}
	value := private[s+len(prefix)+1:]
	if end := strings.IndexByte(value, '-'); end >= 0 {
		value = value[:end]
	}
	if value == "" || len(value) > 4 {
		return ot.TagNone, false
	}
	value = normalize(value)
	value += strings.Repeat(" ", 4-len(value))
	tag := ot.T(value)
	if strings.EqualFold(value, "DFLT") {
		tag = ot.TagDFLT
	}
	return tag, true
}

// SelectScriptAndLanguage selects script and language system of a layout
// table for a BCP 47 language tag. The boolean result is true only if both
// script and language have been matched without falling back to defaults.
func SelectScriptAndLanguage(face *ot.Face, table ot.Tag, lang language.Tag) (int, int, bool) {
	scriptTags, langTags := TagsFor(lang)
	script, chosen, sok := TableSelectScript(face, table, scriptTags)
	langsys, lok := ScriptSelectLanguage(face, table, script, langTags)
	tracer().Debugf("language %s selects script %s (%v) and language system #%d (%v)", lang, chosen, sok, langsys, lok)
	return script, langsys, sok && lok
}
