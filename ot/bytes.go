package ot

import (
	"errors"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
// We use it throughout this module to navigate a table's binary data.
//
// Views hold binarySegms which have passed sanitization. Nevertheless all the
// soft accessors (U16, U32, …) return 0 for out-of-range reads instead of
// panicking, which keeps an unsanitized or empty view harmless.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset > len(b) || n > len(b)-offset {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// from returns the tail of b starting at offset, or nil if offset is out of range.
func (b binarySegm) from(offset int) binarySegm {
	if offset < 0 || offset > len(b) {
		return nil
	}
	return b[offset:]
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

func (b binarySegm) U8(i int) uint8 {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i]
}

func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) I16(i int) int16 {
	return int16(b.U16(i))
}

// U24 reads a 24 bit unsigned integer, as used for Unicode code points in
// character variant feature parameters.
func (b binarySegm) U24(i int) uint32 {
	buf, err := b.view(i, 3)
	if err != nil {
		return 0
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
}

func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) glyph(i int) GlyphIndex {
	return GlyphIndex(b.U16(i))
}

// link16 follows a 16-bit offset stored at position at, relative to b.
// A NULL offset results in a nil segment.
func (b binarySegm) link16(at int) binarySegm {
	off := b.U16(at)
	if off == 0 {
		return nil
	}
	return b.from(int(off))
}

// link32 follows a 32-bit offset stored at position at, relative to b.
func (b binarySegm) link32(at int) binarySegm {
	off := b.U32(at)
	if off == 0 || uint64(off) > uint64(len(b)) {
		return nil
	}
	return b.from(int(off))
}

// Page copies up to len(buf) entries of a list of count entries, beginning
// with entry start. Entry i is produced by get(i).
// It returns the total number of entries and the number of entries copied.
//
// This is the paged output pattern used throughout the query API: the total
// is always reported, even if buf is empty or start is out of range.
func Page[T any](count, start int, buf []T, get func(int) T) (int, int) {
	if count < 0 {
		count = 0
	}
	if start < 0 || start >= count {
		return count, 0
	}
	n := min(count-start, len(buf))
	for i := 0; i < n; i++ {
		buf[i] = get(start + i)
	}
	return count, n
}
