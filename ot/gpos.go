package ot

import (
	"iter"
	"math/bits"
)

// GPOS lookup subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#table-organization
//
// Single and pair adjustments are fully accessible. Cursive and mark attachment
// subtables are sanitized and expose their coverage tables, as needed for glyph
// collection; attaching glyphs by anchors is the business of a shaper.

// ValueFormat is a bitmask that describes which fields are present in a ValueRecord.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
	// Bits 0x0F00 are reserved for future use
)

// size returns the number of bytes of a value record in this format.
func (vf ValueFormat) size() int {
	return 2 * bits.OnesCount16(uint16(vf&0x00FF))
}

// ValueRecord represents a positioning adjustment for a glyph.
// The actual fields present depend on the ValueFormat bitmask.
// Device table offsets are reported, but not interpreted.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueRecord struct {
	XPlacement int16  // Horizontal adjustment for placement, in design units
	YPlacement int16  // Vertical adjustment for placement, in design units
	XAdvance   int16  // Horizontal adjustment for advance, in design units
	YAdvance   int16  // Vertical adjustment for advance, in design units
	XPlaDevice uint16 // Offset to Device table for horizontal placement (may be NULL)
	YPlaDevice uint16 // Offset to Device table for vertical placement (may be NULL)
	XAdvDevice uint16 // Offset to Device table for horizontal advance (may be NULL)
	YAdvDevice uint16 // Offset to Device table for vertical advance (may be NULL)
}

func readValueRecord(b binarySegm, at int, vf ValueFormat) ValueRecord {
	var vr ValueRecord
	fields := [...]struct {
		flag ValueFormat
		set  func(uint16)
	}{
		{ValueFormatXPlacement, func(v uint16) { vr.XPlacement = int16(v) }},
		{ValueFormatYPlacement, func(v uint16) { vr.YPlacement = int16(v) }},
		{ValueFormatXAdvance, func(v uint16) { vr.XAdvance = int16(v) }},
		{ValueFormatYAdvance, func(v uint16) { vr.YAdvance = int16(v) }},
		{ValueFormatXPlaDevice, func(v uint16) { vr.XPlaDevice = v }},
		{ValueFormatYPlaDevice, func(v uint16) { vr.YPlaDevice = v }},
		{ValueFormatXAdvDevice, func(v uint16) { vr.XAdvDevice = v }},
		{ValueFormatYAdvDevice, func(v uint16) { vr.YAdvDevice = v }},
	}
	for _, f := range fields {
		if vf&f.flag != 0 {
			f.set(b.U16(at))
			at += 2
		}
	}
	return vr
}

func (st LookupSubtable) isGPos(t LayoutTableLookupType) bool {
	return st.Table == TagGPOS && st.Type == t
}

// SinglePosValue returns the adjustment for coverage index inx of a single
// adjustment subtable.
func (st LookupSubtable) SinglePosValue(inx int) (ValueRecord, bool) {
	if !st.isGPos(GPosLookupTypeSingle) || inx < 0 {
		return ValueRecord{}, false
	}
	vf := ValueFormat(st.data.U16(4))
	switch st.Format() {
	case 1:
		return readValueRecord(st.data, 6, vf), true
	case 2:
		if inx >= int(st.data.U16(6)) {
			return ValueRecord{}, false
		}
		return readValueRecord(st.data, 8+inx*vf.size(), vf), true
	}
	return ValueRecord{}, false
}

// SinglePosFormat returns the value format of a single adjustment subtable.
func (st LookupSubtable) SinglePosFormat() ValueFormat {
	if !st.isGPos(GPosLookupTypeSingle) {
		return 0
	}
	return ValueFormat(st.data.U16(4))
}

// PairPosFormats returns the value formats for the first and second glyph of
// a pair adjustment subtable.
func (st LookupSubtable) PairPosFormats() (ValueFormat, ValueFormat) {
	if !st.isGPos(GPosLookupTypePair) {
		return 0, 0
	}
	return ValueFormat(st.data.U16(4)), ValueFormat(st.data.U16(6))
}

// PairPosValues returns the adjustments for a pair of glyphs (first, second),
// where inx is the coverage index of first.
func (st LookupSubtable) PairPosValues(inx int, first, second GlyphIndex) (ValueRecord, ValueRecord, bool) {
	if !st.isGPos(GPosLookupTypePair) {
		return ValueRecord{}, ValueRecord{}, false
	}
	vf1, vf2 := st.PairPosFormats()
	switch st.Format() {
	case 1:
		if inx < 0 || inx >= int(st.data.U16(8)) {
			break
		}
		set := st.data.link16(10 + 2*inx)
		recSize := 2 + vf1.size() + vf2.size()
		lo, hi := 0, int(set.U16(0))
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			rec := 2 + m*recSize
			g := set.glyph(rec)
			if second < g {
				hi = m
			} else if second > g {
				lo = m + 1
			} else {
				return readValueRecord(set, rec+2, vf1), readValueRecord(set, rec+2+vf1.size(), vf2), true
			}
		}
	case 2:
		cd1, cd2 := st.PairClassDefs()
		c1, c2 := int(cd1.Class(first)), int(cd2.Class(second))
		n1, n2 := int(st.data.U16(12)), int(st.data.U16(14))
		if c1 >= n1 || c2 >= n2 {
			break
		}
		recSize := vf1.size() + vf2.size()
		rec := 16 + (c1*n2+c2)*recSize
		return readValueRecord(st.data, rec, vf1), readValueRecord(st.data, rec+vf1.size(), vf2), true
	}
	return ValueRecord{}, ValueRecord{}, false
}

// PairClassDefs returns the class definitions for the first and second glyph
// of a format 2 pair adjustment subtable.
func (st LookupSubtable) PairClassDefs() (ClassDef, ClassDef) {
	if !st.isGPos(GPosLookupTypePair) || st.Format() != 2 {
		return ClassDef{}, ClassDef{}
	}
	return ClassDef{data: st.data.link16(8)}, ClassDef{data: st.data.link16(10)}
}

// PairSecondGlyphs iterates over the second glyphs of the pair set for coverage
// index inx of a format 1 pair adjustment subtable.
func (st LookupSubtable) PairSecondGlyphs(inx int) iter.Seq[GlyphIndex] {
	return func(yield func(GlyphIndex) bool) {
		if !st.isGPos(GPosLookupTypePair) || st.Format() != 1 || inx < 0 || inx >= int(st.data.U16(8)) {
			return
		}
		vf1, vf2 := st.PairPosFormats()
		recSize := 2 + vf1.size() + vf2.size()
		set := st.data.link16(10 + 2*inx)
		for i := 0; i < int(set.U16(0)); i++ {
			if !yield(set.glyph(2 + i*recSize)) {
				return
			}
		}
	}
}

// PairSetCount returns the number of pair sets of a format 1 pair adjustment subtable.
func (st LookupSubtable) PairSetCount() int {
	if !st.isGPos(GPosLookupTypePair) || st.Format() != 1 {
		return 0
	}
	return int(st.data.U16(8))
}

// AttachmentCoverages returns the coverage tables of a mark attachment
// subtable (lookup types 4, 5 and 6): the mark coverage and the coverage of the
// base, ligature or mark glyphs the marks attach to.
func (st LookupSubtable) AttachmentCoverages() (Coverage, Coverage) {
	if st.Table != TagGPOS || st.Format() != 1 {
		return Coverage{}, Coverage{}
	}
	switch st.Type {
	case GPosLookupTypeMarkToBase, GPosLookupTypeMarkToLigature, GPosLookupTypeMarkToMark:
		return Coverage{data: st.data.link16(2)}, Coverage{data: st.data.link16(4)}
	}
	return Coverage{}, Coverage{}
}

// --- Sanitization ----------------------------------------------------------

func sanitizeGPosSubtable(s *sanitizer, st LookupSubtable) bool {
	b := st.data
	if !s.check("GPOS", b, 0, 2) {
		return false
	}
	format := b.U16(0)
	switch st.Type {
	case GPosLookupTypeSingle:
		if !s.check("SinglePos", b, 0, 6) || !sanitizeCoverageLink(s, b, 2) {
			return false
		}
		vf := ValueFormat(b.U16(4))
		switch format {
		case 1:
			return s.check("SinglePos", b, 6, vf.size())
		case 2:
			return s.check("SinglePos", b, 6, 2) && s.checkArray("SinglePos", b, 8, int(b.U16(6)), vf.size())
		}
	case GPosLookupTypePair:
		switch format {
		case 1:
			return sanitizePairPos1(s, b)
		case 2:
			return sanitizePairPos2(s, b)
		}
	case GPosLookupTypeCursive:
		if format == 1 {
			return sanitizeCursivePos(s, b)
		}
	case GPosLookupTypeMarkToBase, GPosLookupTypeMarkToLigature, GPosLookupTypeMarkToMark:
		if format == 1 {
			return sanitizeMarkAttachment(s, b, st.Type == GPosLookupTypeMarkToLigature)
		}
	case GPosLookupTypeContextPos:
		return sanitizeSequenceContext(s, b, false)
	case GPosLookupTypeChainedContextPos:
		return sanitizeSequenceContext(s, b, true)
	}
	return true // unknown types and formats are ignored
}

func sanitizePairPos1(s *sanitizer, b binarySegm) bool {
	if !s.check("PairPos", b, 0, 10) || !sanitizeCoverageLink(s, b, 2) {
		return false
	}
	recSize := 2 + ValueFormat(b.U16(4)).size() + ValueFormat(b.U16(6)).size()
	count := int(b.U16(8))
	if !s.checkArray("PairPos", b, 10, count, 2) {
		return false
	}
	for i := 0; i < count; i++ {
		set, ok := s.offset16("PairSet", b, 10+2*i)
		if !ok {
			return false
		}
		if set != nil && (!s.check("PairSet", set, 0, 2) || !s.checkArray("PairSet", set, 2, int(set.U16(0)), recSize)) {
			return false
		}
	}
	return true
}

func sanitizePairPos2(s *sanitizer, b binarySegm) bool {
	if !s.check("PairPos", b, 0, 16) || !sanitizeCoverageLink(s, b, 2) ||
		!sanitizeClassDefLink(s, b, 8) || !sanitizeClassDefLink(s, b, 10) {
		return false
	}
	recSize := ValueFormat(b.U16(4)).size() + ValueFormat(b.U16(6)).size()
	records, err := checkedMulInt(int(b.U16(12)), int(b.U16(14)))
	if err != nil {
		return s.fail("PairPos", b, "class record count: %v", err)
	}
	return s.checkArray("PairPos", b, 16, records, recSize)
}

func sanitizeAnchor(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	if !s.check("Anchor", b, 0, 6) {
		return false
	}
	switch b.U16(0) {
	case 2:
		return s.check("Anchor", b, 0, 8)
	case 3:
		return s.check("Anchor", b, 0, 10)
	}
	return true
}

// sanitizeAnchorLinks checks count 16-bit anchor offsets at position at,
// relative to base.
func sanitizeAnchorLinks(s *sanitizer, base binarySegm, at, count int) bool {
	if !s.checkArray("Anchor", base, at, count, 2) {
		return false
	}
	for i := 0; i < count; i++ {
		anchor, ok := s.offset16("Anchor", base, at+2*i)
		if !ok || !sanitizeAnchor(s, anchor) {
			return false
		}
	}
	return true
}

func sanitizeCursivePos(s *sanitizer, b binarySegm) bool {
	if !s.check("CursivePos", b, 0, 6) || !sanitizeCoverageLink(s, b, 2) {
		return false
	}
	return sanitizeAnchorLinks(s, b, 6, 2*int(b.U16(4)))
}

func sanitizeMarkAttachment(s *sanitizer, b binarySegm, ligatures bool) bool {
	if !s.check("MarkAttach", b, 0, 12) || !sanitizeCoverageLink(s, b, 2) || !sanitizeCoverageLink(s, b, 4) {
		return false
	}
	classCount := int(b.U16(6))
	marks, ok := s.required16("MarkArray", b, 8)
	if !ok || !s.check("MarkArray", marks, 0, 2) {
		return false
	}
	n := int(marks.U16(0))
	if !s.checkArray("MarkArray", marks, 2, n, 4) {
		return false
	}
	for i := 0; i < n; i++ {
		anchor, ok := s.offset16("MarkArray", marks, 2+4*i+2)
		if !ok || !sanitizeAnchor(s, anchor) {
			return false
		}
	}
	attach, ok := s.required16("AttachArray", b, 10)
	if !ok || !s.check("AttachArray", attach, 0, 2) {
		return false
	}
	n = int(attach.U16(0))
	if !ligatures {
		rows, err := checkedMulInt(n, classCount)
		if err != nil {
			return s.fail("AttachArray", attach, "anchor count: %v", err)
		}
		return sanitizeAnchorLinks(s, attach, 2, rows)
	}
	if !s.checkArray("LigatureArray", attach, 2, n, 2) {
		return false
	}
	for i := 0; i < n; i++ {
		lig, ok := s.offset16("LigatureAttach", attach, 2+2*i)
		if !ok {
			return false
		}
		if lig == nil {
			continue
		}
		if !s.check("LigatureAttach", lig, 0, 2) {
			return false
		}
		rows, err := checkedMulInt(int(lig.U16(0)), classCount)
		if err != nil {
			return s.fail("LigatureAttach", lig, "anchor count: %v", err)
		}
		if !sanitizeAnchorLinks(s, lig, 2, rows) {
			return false
		}
	}
	return true
}
