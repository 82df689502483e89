package ot

import "image/color"

// CPAL is a view onto a color palette table.
//
// The palette table is a set of one or more palettes, each containing a predefined
// number of color records. It may also contain 'name' table IDs describing the
// palettes and their entries.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/cpal
//
// A zero CPAL (as returned for fonts without a valid CPAL table) has no palettes.
type CPAL struct {
	data        binarySegm
	version     uint16
	numEntries  int        // colors per palette
	numPalettes int        // number of palettes
	numRecords  int        // total number of color records
	records     binarySegm // color records, 4 bytes each
	indices     binarySegm // first color record index, per palette
	types       binarySegm // v1: palette flags, 4 bytes per palette; may be nil
	labels      binarySegm // v1: palette name IDs, 2 bytes per palette; may be nil
	entryLabels binarySegm // v1: palette entry name IDs, 2 bytes per entry; may be nil
}

// emptyCPAL is the shared view returned for absent or rejected tables.
var emptyCPAL = &CPAL{}

// Color is a color value in ARGB encoding, i.e. 0xAARRGGBB.
// Colors are not pre-multiplied with alpha.
type Color uint32

// A returns the alpha component of a color.
func (c Color) A() uint8 { return uint8(c >> 24) }

// R returns the red component of a color.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green component of a color.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue component of a color.
func (c Color) B() uint8 { return uint8(c) }

// NRGBA converts c to a color of the standard library's image/color package.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// PaletteFlags describe the usability of a palette with respect to background colors.
type PaletteFlags uint32

const (
	PaletteUsableWithLightBackground PaletteFlags = 0x0001
	PaletteUsableWithDarkBackground  PaletteFlags = 0x0002
)

const cpalHeaderSize = 12

// sanitizeCPAL validates a CPAL table and returns a view onto it.
//
// Every palette's first color record index plus the number of entries per
// palette must not exceed the number of color records. This is checked once, and
// accessors are free to skip bounds checks afterwards.
func sanitizeCPAL(s *sanitizer, b binarySegm) (*CPAL, bool) {
	if !s.check("Header", b, 0, cpalHeaderSize) {
		return emptyCPAL, false
	}
	cpal := &CPAL{
		data:        b,
		version:     b.U16(0),
		numEntries:  int(b.U16(2)),
		numPalettes: int(b.U16(4)),
		numRecords:  int(b.U16(6)),
	}
	recOffset := b.U32(8)
	if uint64(recOffset) > uint64(len(b)) {
		return emptyCPAL, s.fail("ColorRecords", b, "color records offset %d out of bounds", recOffset)
	}
	if !s.checkArray("ColorRecords", b, int(recOffset), cpal.numRecords, 4) {
		return emptyCPAL, false
	}
	cpal.records = b[recOffset:]
	if !s.checkArray("ColorRecordIndices", b, cpalHeaderSize, cpal.numPalettes, 2) {
		return emptyCPAL, false
	}
	cpal.indices = b[cpalHeaderSize:]
	for p := 0; p < cpal.numPalettes; p++ {
		first := int(cpal.indices.U16(2 * p))
		if first+cpal.numEntries > cpal.numRecords {
			return emptyCPAL, s.fail("ColorRecordIndices", b,
				"palette %d: records [%d:+%d] exceed %d color records", p, first, cpal.numEntries, cpal.numRecords)
		}
	}
	if cpal.version == 0 {
		return cpal, true
	}
	// The version 1 tail follows the color record indices. Its offsets are
	// relative to the beginning of the CPAL table.
	tail := cpalHeaderSize + 2*cpal.numPalettes
	if !s.check("Version1", b, tail, 12) {
		return emptyCPAL, false
	}
	var ok bool
	if cpal.types, ok = cpalTailArray(s, b, b.U32(tail), cpal.numPalettes, 4, "PaletteTypes"); !ok {
		return emptyCPAL, false
	}
	if cpal.labels, ok = cpalTailArray(s, b, b.U32(tail+4), cpal.numPalettes, 2, "PaletteLabels"); !ok {
		return emptyCPAL, false
	}
	if cpal.entryLabels, ok = cpalTailArray(s, b, b.U32(tail+8), cpal.numEntries, 2, "PaletteEntryLabels"); !ok {
		return emptyCPAL, false
	}
	return cpal, true
}

func cpalTailArray(s *sanitizer, b binarySegm, offset uint32, count, size int, section string) (binarySegm, bool) {
	if offset == 0 {
		return nil, true
	}
	if uint64(offset) > uint64(len(b)) {
		return nil, s.fail(section, b, "offset %d out of bounds", offset)
	}
	if !s.checkArray(section, b, int(offset), count, size) {
		return nil, false
	}
	return b[offset:], true
}

// Version returns the table version (0 or 1).
func (cpal *CPAL) Version() uint16 {
	if cpal == nil {
		return 0
	}
	return cpal.version
}

// PaletteCount returns the number of palettes.
func (cpal *CPAL) PaletteCount() int {
	if cpal == nil {
		return 0
	}
	return cpal.numPalettes
}

// PaletteEntryCount returns the number of colors in each palette.
func (cpal *CPAL) PaletteEntryCount() int {
	if cpal == nil {
		return 0
	}
	return cpal.numEntries
}

// Color returns color number index of palette number palette.
// If either of the indices is out of range, the zero Color (transparent black) is returned.
func (cpal *CPAL) Color(palette, index int) Color {
	if cpal == nil || palette < 0 || palette >= cpal.numPalettes || index < 0 || index >= cpal.numEntries {
		return 0
	}
	return cpal.colorRecord(int(cpal.indices.U16(2*palette)) + index)
}

// colorRecord decodes a color record, which is stored as B, G, R, A.
func (cpal *CPAL) colorRecord(i int) Color {
	rec, err := cpal.records.view(4*i, 4)
	if err != nil {
		return 0
	}
	return Color(uint32(rec[3])<<24 | uint32(rec[2])<<16 | uint32(rec[1])<<8 | uint32(rec[0]))
}

// Colors copies colors of a palette into buf, starting with color number start.
// It returns the number of colors in the palette and the number of colors copied.
// For an invalid palette index, both return values are 0.
func (cpal *CPAL) Colors(palette, start int, buf []Color) (int, int) {
	if cpal == nil || palette < 0 || palette >= cpal.numPalettes {
		return 0, 0
	}
	first := int(cpal.indices.U16(2 * palette))
	return Page(cpal.numEntries, start, buf, func(i int) Color {
		return cpal.colorRecord(first + i)
	})
}

// PaletteNameID returns the 'name' table ID of a palette's name.
// For version 0 tables, or if the palette is unnamed or out of range,
// NoNameID is returned.
func (cpal *CPAL) PaletteNameID(palette int) NameID {
	if cpal == nil || cpal.labels == nil || palette < 0 || palette >= cpal.numPalettes {
		return NoNameID
	}
	return NameID(cpal.labels.U16(2 * palette))
}

// PaletteFlags returns the usability flags of a palette, or 0 if none are present.
func (cpal *CPAL) PaletteFlags(palette int) PaletteFlags {
	if cpal == nil || cpal.types == nil || palette < 0 || palette >= cpal.numPalettes {
		return 0
	}
	return PaletteFlags(cpal.types.U32(4 * palette))
}

// PaletteEntryNameID returns the 'name' table ID for color entry number index, which
// is the same across all palettes. Returns NoNameID if there is no such label.
func (cpal *CPAL) PaletteEntryNameID(index int) NameID {
	if cpal == nil || cpal.entryLabels == nil || index < 0 || index >= cpal.numEntries {
		return NoNameID
	}
	return NameID(cpal.entryLabels.U16(2 * index))
}
