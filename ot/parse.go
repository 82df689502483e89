package ot

import (
	"fmt"
	"slices"
)

// Code comment often will cite passage from the
// OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/otff.

// Font flavours, as given by the sfntVersion field of the table directory.
const (
	FlavorTrueType   Tag = 0x00010000
	FlavorCFF        Tag = 0x4F54544F // 'OTTO'
	FlavorAppleTrue  Tag = 0x74727565 // 'true'
	FlavorAppleType1 Tag = 0x74797031 // 'typ1'
	tagCollection    Tag = 0x74746366 // 'ttcf'
)

const (
	tableDirectoryHeaderSize = 12
	tableRecordSize          = 16
	collectionHeaderSize     = 12
)

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

// tableRecord locates a table within the font's blob.
type tableRecord struct {
	tag    Tag
	offset uint32
	length uint32
}

// parseTableDirectory reads the table directory for face number index of a blob.
// For fonts which are not a collection, index must be 0.
//
// An error is returned only if the blob is not a font at all. Table records
// pointing outside of the blob are dropped and recorded in ec.
func parseTableDirectory(src binarySegm, index int, ec *errorCollector) (Tag, []tableRecord, error) {
	if len(src) < tableDirectoryHeaderSize {
		return 0, nil, errFontFormat("font data too short")
	}
	dirOffset := 0
	flavor := Tag(src.U32(0))
	if flavor == tagCollection {
		// https://docs.microsoft.com/en-us/typography/opentype/spec/otff#ttc-header
		numFonts := int(src.U32(8))
		if index < 0 || index >= numFonts {
			return 0, nil, errFontFormat(fmt.Sprintf("face index %d out of range [0…%d)", index, numFonts))
		}
		off, err := src.u32(collectionHeaderSize + 4*index)
		if err != nil {
			return 0, nil, errFontFormat("collection header truncated")
		}
		if uint64(off)+tableDirectoryHeaderSize > uint64(len(src)) {
			return 0, nil, errFontFormat(fmt.Sprintf("table directory offset %d out of bounds", off))
		}
		dirOffset = int(off)
		flavor = Tag(src.U32(dirOffset))
	} else if index != 0 {
		return 0, nil, errFontFormat(fmt.Sprintf("face index %d for a single-face font", index))
	}
	tracer().Debugf("font flavor = %x|%s", uint32(flavor), flavor)
	if flavor != FlavorTrueType && flavor != FlavorCFF && flavor != FlavorAppleTrue && flavor != FlavorAppleType1 {
		ec.addError(TagNone, "Header", fmt.Sprintf("font type not supported: %x", uint32(flavor)), SeverityCritical, uint32(dirOffset))
		return 0, nil, errFontFormat(fmt.Sprintf("font type not supported: %x", uint32(flavor)))
	}
	count := int(src.U16(dirOffset + 4))
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	recs, err := src.view(dirOffset+tableDirectoryHeaderSize, count*tableRecordSize)
	if err != nil {
		ec.addError(TagNone, "TableRecords", "table record entries exceed font data", SeverityCritical, uint32(dirOffset))
		return 0, nil, errFontFormat("table record entries")
	}
	tables := make([]tableRecord, 0, count)
	var prevTag Tag
	for i := 0; i < count; i++ {
		b := recs[i*tableRecordSize:]
		rec := tableRecord{tag: MakeTag(b[:4]), offset: u32(b[8:12]), length: u32(b[12:16])}
		if i > 0 && rec.tag <= prevTag {
			ec.addWarning(rec.tag, "table records not sorted by tag", uint32(dirOffset+tableDirectoryHeaderSize+i*tableRecordSize))
		}
		prevTag = rec.tag
		if rec.offset&3 != 0 { // "all tables must begin on four byte boundries"
			ec.addWarning(rec.tag, "table not aligned to 4 bytes", rec.offset)
		}
		if uint64(rec.offset)+uint64(rec.length) > uint64(len(src)) {
			ec.addError(rec.tag, "Bounds", fmt.Sprintf("bounds [%d:+%d] exceed font size %d",
				rec.offset, rec.length, len(src)), SeverityMajor, rec.offset)
			continue
		}
		if slices.ContainsFunc(tables, func(t tableRecord) bool { return t.tag == rec.tag }) {
			ec.addError(rec.tag, "TableRecords", "duplicate table record", SeverityMajor, rec.offset)
			continue
		}
		tables = append(tables, rec)
	}
	return flavor, tables, nil
}

// FaceCount returns the number of faces in a font blob. For a font collection
// this is the number of fonts in the collection, for a single font it is 1,
// and for data which is not a font it is 0.
func FaceCount(blob Blob) int {
	src := blob.data
	if len(src) < tableDirectoryHeaderSize {
		return 0
	}
	switch Tag(src.U32(0)) {
	case tagCollection:
		return int(src.U32(8))
	case FlavorTrueType, FlavorCFF, FlavorAppleTrue, FlavorAppleType1:
		return 1
	}
	return 0
}
