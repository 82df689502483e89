package otquery

import (
	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/otview/otlayout"
)

// FeatureUILabel returns the user interface label of a stylistic set ('ssXX')
// or character variant ('cvXX') feature.
func FeatureUILabel(face *ot.Face, table ot.Tag, feature int) (string, bool) {
	names, ok := otlayout.FeatureNameIDs(face, table, feature)
	if !ok {
		return "", false
	}
	return nameFor(face, names.Label)
}

// FeatureUIStrings holds the resolved UI strings of a character variant feature.
// Stylistic sets have a label only.
type FeatureUIStrings struct {
	Label   string
	Tooltip string
	Sample  string
	Params  []string // labels of named parameters, in order
}

// FeatureUINames resolves all 'name' table strings of a stylistic set or
// character variant feature. Missing strings are left empty.
func FeatureUINames(face *ot.Face, table ot.Tag, feature int) (FeatureUIStrings, bool) {
	var ui FeatureUIStrings
	names, ok := otlayout.FeatureNameIDs(face, table, feature)
	if !ok {
		return ui, false
	}
	ui.Label, _ = nameFor(face, names.Label)
	ui.Tooltip, _ = nameFor(face, names.Tooltip)
	ui.Sample, _ = nameFor(face, names.Sample)
	if names.NumNamedParameters > 0 && names.FirstParam != ot.NoNameID {
		ui.Params = make([]string, names.NumNamedParameters)
		for i := range ui.Params {
			id := int(names.FirstParam) + i
			if id >= int(ot.NoNameID) {
				break
			}
			ui.Params[i], _ = nameFor(face, ot.NameID(id))
		}
	}
	return ui, true
}

// SupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag, as found in table GSUB. If the language
// has no special support in the font, 'dflt' will be returned. If the script
// has no support in the font, 'DFLT' will be returned for the script.
func SupportsScript(face *ot.Face, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	if face == nil {
		return ot.TagNone, ot.TagNone
	}
	script, ok := otlayout.TableFindScript(face, ot.TagGSUB, scr)
	if !ok {
		tracer().Infof("cannot find script %s in font", scr)
		return ot.TagDFLT, ot.TagDflt
	}
	tracer().Debugf("script %s is contained in GSUB", scr)
	if _, ok := otlayout.ScriptFindLanguage(face, ot.TagGSUB, script, lang); ok {
		return scr, lang
	}
	return scr, ot.TagDflt
}
