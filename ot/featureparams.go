package ot

// Feature parameters are an opaque blob attached to a feature. Their
// interpretation depends on the feature's tag:
//
//	'size'  optical size information (GPOS)
//	'ssXX'  stylistic set with a UI name
//	'cvXX'  character variant with UI names and a list of characters
//
// A parameter blob is interpreted only if the feature's tag matches the
// blob's type. For all other combinations, accessors report "not present".

// SizeParams are the parameters of a 'size' feature.
type SizeParams struct {
	DesignSize      uint16 // in decipoints
	SubfamilyID     uint16
	SubfamilyNameID NameID
	RangeStart      uint16 // small end of usage range, in decipoints
	RangeEnd        uint16 // large end of usage range, in decipoints
}

// StylisticSetParams are the parameters of an 'ssXX' feature.
type StylisticSetParams struct {
	Version  uint16
	UINameID NameID
}

// CharacterVariantParams are the parameters of a 'cvXX' feature.
type CharacterVariantParams struct {
	Format                  uint16
	UILabelNameID           NameID
	TooltipTextNameID       NameID
	SampleTextNameID        NameID
	NumNamedParameters      int
	FirstParamUILabelNameID NameID
	CharacterCount          int
}

const (
	sizeParamsSize     = 10
	ssParamsSize       = 4
	cvParamsHeaderSize = 14
)

var tagSize = T("size")

// IsStylisticSet reports whether a tag has the form 'ssXX', with XX being
// two decimal digits.
func IsStylisticSet(t Tag) bool {
	return t.isNumbered("ss")
}

// IsCharacterVariant reports whether a tag has the form 'cvXX', with XX being
// two decimal digits.
func IsCharacterVariant(t Tag) bool {
	return t.isNumbered("cv")
}

// featureParamsAt locates and checks the parameters of a feature.
// It returns nil if there are no parameters, if their type does not match the
// feature tag, or if they do not fit into the table.
//
// Some earlier versions of Adobe tools calculated the offset of the 'size'
// parameters from the beginning of the FeatureList table instead of the
// Feature table. If 'size' parameters are not sane at the specified offset,
// we try again relative to the feature list.
func featureParamsAt(list, feature binarySegm, tag Tag) binarySegm {
	off := int(feature.U16(0))
	if off == 0 {
		return nil
	}
	switch {
	case tag == tagSize:
		if p := feature.from(off); saneSizeParams(p) {
			return p
		}
		if list != nil {
			if p := list.from(off); saneSizeParams(p) {
				return p
			}
		}
	case IsStylisticSet(tag):
		if p := feature.from(off); len(p) >= ssParamsSize {
			return p
		}
	case IsCharacterVariant(tag):
		p := feature.from(off)
		if len(p) < cvParamsHeaderSize {
			return nil
		}
		if _, err := p.view(cvParamsHeaderSize, 3*int(p.U16(12))); err != nil {
			return nil
		}
		return p
	}
	return nil
}

// saneSizeParams tests 'size' feature parameters for plausibility.
// The OpenType specification permits an all-zero subfamily/range; otherwise
// the design size must lie within the range, and the subfamily name ID must be
// in the range reserved for font-specific names.
func saneSizeParams(p binarySegm) bool {
	if len(p) < sizeParamsSize {
		return false
	}
	designSize, subfamilyID, nameID := p.U16(0), p.U16(2), p.U16(4)
	rangeStart, rangeEnd := p.U16(6), p.U16(8)
	if designSize == 0 {
		return false
	}
	if subfamilyID == 0 && nameID == 0 && rangeStart == 0 && rangeEnd == 0 {
		return true
	}
	return designSize >= rangeStart && designSize <= rangeEnd && nameID >= 256 && nameID <= 32767
}

func (f Feature) params() binarySegm {
	if f.data == nil {
		return nil
	}
	return featureParamsAt(f.list, f.data, f.tag)
}

// HasParams reports whether the feature carries parameters matching its tag.
func (f Feature) HasParams() bool {
	return f.params() != nil
}

// SizeParams returns the parameters of a 'size' feature.
func (f Feature) SizeParams() Option[SizeParams] {
	if f.tag != tagSize {
		return None[SizeParams]()
	}
	p := f.params()
	if p == nil {
		return None[SizeParams]()
	}
	return Some(SizeParams{
		DesignSize:      p.U16(0),
		SubfamilyID:     p.U16(2),
		SubfamilyNameID: NameID(p.U16(4)),
		RangeStart:      p.U16(6),
		RangeEnd:        p.U16(8),
	})
}

// StylisticSetParams returns the parameters of an 'ssXX' feature.
func (f Feature) StylisticSetParams() Option[StylisticSetParams] {
	if !IsStylisticSet(f.tag) {
		return None[StylisticSetParams]()
	}
	p := f.params()
	if p == nil {
		return None[StylisticSetParams]()
	}
	return Some(StylisticSetParams{Version: p.U16(0), UINameID: NameID(p.U16(2))})
}

// CharacterVariantParams returns the parameters of a 'cvXX' feature.
func (f Feature) CharacterVariantParams() Option[CharacterVariantParams] {
	if !IsCharacterVariant(f.tag) {
		return None[CharacterVariantParams]()
	}
	p := f.params()
	if p == nil {
		return None[CharacterVariantParams]()
	}
	return Some(CharacterVariantParams{
		Format:                  p.U16(0),
		UILabelNameID:           NameID(p.U16(2)),
		TooltipTextNameID:       NameID(p.U16(4)),
		SampleTextNameID:        NameID(p.U16(6)),
		NumNamedParameters:      int(p.U16(8)),
		FirstParamUILabelNameID: NameID(p.U16(10)),
		CharacterCount:          int(p.U16(12)),
	})
}

// Characters copies the Unicode code points listed by a 'cvXX' feature into
// buf, starting with entry start. It returns the total number of characters
// and the number of characters copied. For all other features, both are 0.
func (f Feature) Characters(start int, buf []rune) (int, int) {
	if !IsCharacterVariant(f.tag) {
		return 0, 0
	}
	p := f.params()
	if p == nil {
		return 0, 0
	}
	return Page(int(p.U16(12)), start, buf, func(i int) rune {
		return rune(p.U24(cvParamsHeaderSize + 3*i))
	})
}
