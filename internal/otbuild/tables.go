package otbuild

import (
	"encoding/binary"
	"slices"
)

// GDEF describes a glyph definition table. All members are optional. A
// non-nil MarkGlyphSets results in a version 1.2 header.
type GDEF struct {
	GlyphClassDef      *Table
	AttachList         *Table
	LigCaretList       *Table
	MarkAttachClassDef *Table
	MarkGlyphSets      []*Table
}

// Bytes serializes the GDEF table.
func (g GDEF) Bytes() []byte {
	t := New()
	if g.MarkGlyphSets != nil {
		t.U16(1, 2)
	} else {
		t.U16(1, 0)
	}
	t.Off16(g.GlyphClassDef).Off16(g.AttachList).Off16(g.LigCaretList).Off16(g.MarkAttachClassDef)
	if g.MarkGlyphSets != nil {
		sets := New().U16(1, uint16(len(g.MarkGlyphSets)))
		for _, cov := range g.MarkGlyphSets {
			sets.Off32(cov)
		}
		t.Off16(sets)
	}
	return t.Bytes()
}

// AttachList builds a GDEF attachment point list. points[i] holds the contour
// points for coverage index i.
func AttachList(cov *Table, points ...[]uint16) *Table {
	t := New().Off16(cov).U16(uint16(len(points)))
	for _, p := range points {
		t.Off16(New().U16(uint16(len(p))).U16(p...))
	}
	return t
}

// LigCaretList builds a GDEF ligature caret list with carets of format 1.
// carets[i] holds the caret coordinates for coverage index i.
func LigCaretList(cov *Table, carets ...[]int16) *Table {
	t := New().Off16(cov).U16(uint16(len(carets)))
	for _, cs := range carets {
		lig := New().U16(uint16(len(cs)))
		for _, c := range cs {
			lig.Off16(New().U16(1).I16(c))
		}
		t.Off16(lig)
	}
	return t
}

// CPAL describes a color palette table. Colors are given as ARGB values.
// Types, Labels and EntryLabels are written for version 1 only; a nil slice
// results in a NULL offset.
type CPAL struct {
	Version     uint16
	Entries     int
	Palettes    [][]uint32
	Types       []uint32
	Labels      []uint16
	EntryLabels []uint16
}

// Bytes serializes the CPAL table.
func (c CPAL) Bytes() []byte {
	var records []uint32
	var indices []uint16
	for _, p := range c.Palettes {
		indices = append(indices, uint16(len(records)))
		records = append(records, p...)
	}
	header := 12 + 2*len(indices)
	if c.Version >= 1 {
		header += 12
	}
	out := make([]byte, header)
	binary.BigEndian.PutUint16(out[0:], c.Version)
	binary.BigEndian.PutUint16(out[2:], uint16(c.Entries))
	binary.BigEndian.PutUint16(out[4:], uint16(len(c.Palettes)))
	binary.BigEndian.PutUint16(out[6:], uint16(len(records)))
	binary.BigEndian.PutUint32(out[8:], uint32(header))
	for i, inx := range indices {
		binary.BigEndian.PutUint16(out[12+2*i:], inx)
	}
	for _, argb := range records { // stored as B, G, R, A
		out = append(out, byte(argb), byte(argb>>8), byte(argb>>16), byte(argb>>24))
	}
	if c.Version < 1 {
		return out
	}
	tail := 12 + 2*len(indices)
	if c.Types != nil {
		binary.BigEndian.PutUint32(out[tail:], uint32(len(out)))
		for _, t := range c.Types {
			out = binary.BigEndian.AppendUint32(out, t)
		}
	}
	if c.Labels != nil {
		binary.BigEndian.PutUint32(out[tail+4:], uint32(len(out)))
		for _, l := range c.Labels {
			out = binary.BigEndian.AppendUint16(out, l)
		}
	}
	if c.EntryLabels != nil {
		binary.BigEndian.PutUint32(out[tail+8:], uint32(len(out)))
		for _, l := range c.EntryLabels {
			out = binary.BigEndian.AppendUint16(out, l)
		}
	}
	return out
}

// Maxp builds a version 0.5 'maxp' table.
func Maxp(numGlyphs uint16) []byte {
	return New().U32(0x00005000).U16(numGlyphs).Bytes()
}

// Name builds a 'name' table of format 0 with Windows/Unicode BMP records
// (platform 3, encoding 1, language 0x0409).
func Name(names map[uint16]string) []byte {
	ids := make([]uint16, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var storage []byte
	t := New().U16(0, uint16(len(ids)), uint16(6+12*len(ids)))
	for _, id := range ids {
		var s []byte
		for _, r := range names[id] {
			s = binary.BigEndian.AppendUint16(s, uint16(r))
		}
		t.U16(3, 1, 0x0409, id, uint16(len(s)), uint16(len(storage)))
		storage = append(storage, s...)
	}
	return t.Data(storage).Bytes()
}

const sfntVersionTrueType = 0x00010000

func tableDirectory(tables map[string][]byte, dataStart int) ([]byte, []byte) {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	n := len(tags)
	dir := New().U32(sfntVersionTrueType).U16(uint16(n), 0, 0, 0)
	var data []byte
	offset := dataStart
	for _, tag := range tags {
		tbl := tables[tag]
		dir.Tag(tag).U32(0, uint32(offset+len(data)), uint32(len(tbl)))
		data = append(data, tbl...)
		for len(data)%4 != 0 {
			data = append(data, 0)
		}
	}
	return dir.Bytes(), data
}

func directorySize(tables map[string][]byte) int {
	return 12 + 16*len(tables)
}

// Font builds an SFNT font from a map of table tags to table data. Tables are
// sorted by tag and aligned to 4 bytes. Checksums are not computed.
func Font(tables map[string][]byte) []byte {
	dir, data := tableDirectory(tables, directorySize(tables))
	return append(dir, data...)
}

// Collection builds a TrueType collection, with one table directory per face.
func Collection(faces ...map[string][]byte) []byte {
	header := 12 + 4*len(faces)
	dirSizes := header
	for _, f := range faces {
		dirSizes += directorySize(f)
	}
	out := New().Tag("ttcf").U16(1, 0).U32(uint32(len(faces)))
	var dirs, data []byte
	for _, f := range faces {
		out.U32(uint32(header + len(dirs)))
		dir, d := tableDirectory(f, dirSizes+len(data))
		dirs = append(dirs, dir...)
		data = append(data, d...)
	}
	return append(append(out.Bytes(), dirs...), data...)
}
