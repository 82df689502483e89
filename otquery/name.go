package otquery

import (
	"fmt"
	"iter"

	"github.com/npillmayer/otview/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// nameKey identifies a NameRecord entry in OpenType table 'name'.
// The key follows the OpenType NameRecord fields directly.
type nameKey struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     sfnt.NameID // see https://pkg.go.dev/golang.org/x/image/font/sfnt#NameID
}

type PlatformID uint16

const (
	PlatformIDUnicode   PlatformID = 0
	PlatformIDMacintosh PlatformID = 1
	PlatformIDWindows   PlatformID = 3
)

type EncodingID uint16

const (
	EncodingIDUnicodeBMP    EncodingID = 3
	EncodingIDMacRoman      EncodingID = 0
	EncodingIDWindowsSymbol EncodingID = 0 // symbol fonts are not supported
	EncodingIDWindowsBMP    EncodingID = 1
)

const languageIDWindowsEnglishUS = 0x0409

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table, in record order.
//
// Only currently supported encodings are yielded (Unicode BMP, Windows BMP and
// Macintosh Roman), and malformed or out-of-bounds records are skipped.
func NamesRange(face *ot.Face) iter.Seq2[sfnt.NameID, string] {
	return func(yield func(sfnt.NameID, string) bool) {
		for key, value := range nameRecords(face) {
			if !yield(key.Name, value) {
				return
			}
		}
	}
}

// Name returns the string for a name ID. Windows records for US English are
// preferred; otherwise the first decodable record for id is returned.
func Name(face *ot.Face, id sfnt.NameID) (string, bool) {
	var first string
	found := false
	for key, value := range nameRecords(face) {
		if key.Name != id {
			continue
		}
		if key.Platform == PlatformIDWindows && key.Language == languageIDWindowsEnglishUS {
			return value, true
		}
		if !found {
			first, found = value, true
		}
	}
	return first, found
}

// nameFor resolves a name ID as used by layout and color tables.
func nameFor(face *ot.Face, id ot.NameID) (string, bool) {
	if id == ot.NoNameID {
		return "", false
	}
	return Name(face, sfnt.NameID(id))
}

func nameRecords(face *ot.Face) iter.Seq2[nameKey, string] {
	names := checkNameTableSafe(face)
	return func(yield func(nameKey, string) bool) {
		if names == nil {
			return
		}
		count := int(u16(names[2:4])) // number of name records
		stringStorageOffset := int(u16(names[4:6]))
		for i := range count {
			recordSlice := names[nameHeaderSize+i*nameRecordSize : nameHeaderSize+(i+1)*nameRecordSize]
			key := nameKey{
				Platform: PlatformID(u16(recordSlice[0:2])),
				Encoding: EncodingID(u16(recordSlice[2:4])),
				Language: u16(recordSlice[4:6]),
				Name:     sfnt.NameID(u16(recordSlice[6:8])),
			}
			dec := nameDecoder(key)
			if dec == nil {
				continue
			}
			strLen := int(u16(recordSlice[8:10]))
			start := stringStorageOffset + int(u16(recordSlice[10:12]))
			end := start + strLen
			if end > len(names) {
				continue
			}
			stringValue, err := decodeName(dec, names[start:end])
			if err != nil || stringValue == "" {
				tracer().Debugf("name record %d not decodable: %v", i, err)
				continue
			}
			if !yield(key, stringValue) {
				return
			}
		}
	}
}

// checkNameTableSafe checks if the name table is safe to use, i.e. no out-of-bounds access,
// no empty tables, etc.
func checkNameTableSafe(face *ot.Face) []byte {
	if face == nil {
		return nil
	}
	b := face.TableData(ot.TagName)
	if b == nil {
		tracer().Debugf("no name table found in font")
		return nil
	}
	if len(b) < nameHeaderSize {
		tracer().Debugf("name table too short: %d", len(b))
		return nil
	}
	count := int(u16(b[2:4]))
	strOff := int(u16(b[4:6]))
	if strOff > len(b) {
		tracer().Debugf("name table invalid string offset: %d", strOff)
		return nil
	}
	recordsEnd := nameHeaderSize + count*nameRecordSize
	if recordsEnd > len(b) {
		tracer().Debugf("name table record section out of bounds: count=%d", count)
		return nil
	}
	return b
}

// nameDecoder returns a decoder for the encoding of a name record, or nil if
// the encoding is not supported.
func nameDecoder(key nameKey) *encoding.Decoder {
	switch {
	case key.Platform == PlatformIDUnicode && key.Encoding == EncodingIDUnicodeBMP,
		key.Platform == PlatformIDWindows && key.Encoding == EncodingIDWindowsBMP:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case key.Platform == PlatformIDMacintosh && key.Encoding == EncodingIDMacRoman:
		return charmap.Macintosh.NewDecoder()
	}
	return nil
}

func decodeName(dec *encoding.Decoder, str []byte) (string, error) {
	s, err := dec.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding name error: %v", err)
	}
	return string(s), nil
}
