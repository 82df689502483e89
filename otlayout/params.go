package otlayout

import (
	"github.com/npillmayer/otview/ot"
)

var tagSize = ot.T("size")

// SizeParams returns the parameters of the first 'size' feature of the face's
// GPOS table carrying a non-zero design size.
func SizeParams(face *ot.Face) (ot.SizeParams, bool) {
	gpos := layoutTable(face, ot.TagGPOS)
	for i := 0; i < gpos.FeatureCount(); i++ {
		if gpos.FeatureTag(i) != tagSize {
			continue
		}
		if p, ok := gpos.Feature(i).SizeParams().Unwrap(); ok && p.DesignSize != 0 {
			return p, true
		}
	}
	return ot.SizeParams{}, false
}

// FeatureNames holds the 'name' table IDs a stylistic set or character
// variant feature provides for user interfaces. Unused IDs are ot.NoNameID.
type FeatureNames struct {
	Label              ot.NameID // UI label of the feature
	Tooltip            ot.NameID // tooltip text (character variants only)
	Sample             ot.NameID // sample text (character variants only)
	NumNamedParameters int       // number of named parameters (character variants only)
	FirstParam         ot.NameID // first of NumNamedParameters consecutive name IDs
}

var noFeatureNames = FeatureNames{
	Label:      ot.NoNameID,
	Tooltip:    ot.NoNameID,
	Sample:     ot.NoNameID,
	FirstParam: ot.NoNameID,
}

// FeatureNameIDs returns the name IDs of a 'ssXX' or 'cvXX' feature.
// For other features, or features without valid parameters, all IDs are
// ot.NoNameID and false is returned.
func FeatureNameIDs(face *ot.Face, table ot.Tag, feature int) (FeatureNames, bool) {
	f := layoutTable(face, table).Feature(feature)
	if ss, ok := f.StylisticSetParams().Unwrap(); ok {
		names := noFeatureNames
		names.Label = ss.UINameID
		return names, true
	}
	if cv, ok := f.CharacterVariantParams().Unwrap(); ok {
		return FeatureNames{
			Label:              cv.UILabelNameID,
			Tooltip:            cv.TooltipTextNameID,
			Sample:             cv.SampleTextNameID,
			NumNamedParameters: cv.NumNamedParameters,
			FirstParam:         cv.FirstParamUILabelNameID,
		}, true
	}
	return noFeatureNames, false
}

// FeatureCharacters copies the Unicode characters a 'cvXX' feature lists as
// affected into buf, starting with character number start.
func FeatureCharacters(face *ot.Face, table ot.Tag, feature int, start int, buf []rune) (int, int) {
	return layoutTable(face, table).Feature(feature).Characters(start, buf)
}
