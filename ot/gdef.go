package ot

import "iter"

// GDEF is a view onto a glyph definition table.
//
// The Glyph Definition (GDEF) table provides various glyph properties used in
// OpenType Layout processing: glyph classes, attachment points, ligature carets,
// mark attachment classes and mark glyph sets.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/gdef
type GDEF struct {
	data           binarySegm
	minorVersion   uint16
	glyphClassDef  ClassDef
	attachList     binarySegm
	ligCaretList   binarySegm
	markAttachDef  ClassDef
	markGlyphSets  binarySegm
	itemVarStore   binarySegm
	attachCoverage Coverage
	caretCoverage  Coverage
}

var emptyGDEF = &GDEF{}

// EmptyGDEF returns the shared empty GDEF table. It is what Face.GDEF returns
// for fonts without a (valid) GDEF table.
func EmptyGDEF() *GDEF {
	return emptyGDEF
}

// GlyphClass is the class of a glyph as defined in GDEF.
type GlyphClass uint16

const (
	GlyphClassUnclassified GlyphClass = 0
	GlyphClassBase         GlyphClass = 1 // single character, spacing glyph
	GlyphClassLigature     GlyphClass = 2 // multiple character, spacing glyph
	GlyphClassMark         GlyphClass = 3 // non-spacing combining glyph
	GlyphClassComponent    GlyphClass = 4 // part of single character, spacing glyph
)

// GlyphProps is a compact representation of a glyph's GDEF properties, used
// for filtering glyphs during lookup application. The high byte holds the
// mark attachment class for marks.
type GlyphProps uint16

const (
	GlyphPropsBaseGlyph GlyphProps = 0x02
	GlyphPropsLigature  GlyphProps = 0x04
	GlyphPropsMark      GlyphProps = 0x08
)

// CaretValue is a ligature caret position. Format 1 and 3 carets carry a design
// unit coordinate; format 2 carets reference a contour point of the glyph.
type CaretValue struct {
	Format     uint16
	Coordinate int16
	PointIndex uint16
}

func sanitizeGDEF(s *sanitizer, b binarySegm) (*GDEF, bool) {
	if !s.check("Header", b, 0, 12) {
		return emptyGDEF, false
	}
	if b.U16(0) != 1 {
		return emptyGDEF, s.fail("Header", b, "unsupported major version %d", b.U16(0))
	}
	gdef := &GDEF{data: b, minorVersion: b.U16(2)}
	var link binarySegm
	var ok bool
	if link, ok = s.offset16("GlyphClassDef", b, 4); !ok {
		return emptyGDEF, false
	}
	if gdef.glyphClassDef, ok = sanitizeClassDef(s, link); !ok {
		return emptyGDEF, false
	}
	if gdef.attachList, ok = s.offset16("AttachList", b, 6); !ok {
		return emptyGDEF, false
	}
	if gdef.attachCoverage, ok = sanitizeAttachList(s, gdef.attachList); !ok {
		return emptyGDEF, false
	}
	if gdef.ligCaretList, ok = s.offset16("LigCaretList", b, 8); !ok {
		return emptyGDEF, false
	}
	if gdef.caretCoverage, ok = sanitizeLigCaretList(s, gdef.ligCaretList); !ok {
		return emptyGDEF, false
	}
	if link, ok = s.offset16("MarkAttachClassDef", b, 10); !ok {
		return emptyGDEF, false
	}
	if gdef.markAttachDef, ok = sanitizeClassDef(s, link); !ok {
		return emptyGDEF, false
	}
	if gdef.minorVersion >= 2 {
		if !s.check("Header", b, 12, 2) {
			return emptyGDEF, false
		}
		if gdef.markGlyphSets, ok = s.offset16("MarkGlyphSets", b, 12); !ok {
			return emptyGDEF, false
		}
		if !sanitizeMarkGlyphSets(s, gdef.markGlyphSets) {
			return emptyGDEF, false
		}
	}
	if gdef.minorVersion >= 3 {
		// item variation store is referenced for completeness, but not interpreted
		if gdef.itemVarStore, ok = s.offset32("ItemVarStore", b, 14); !ok {
			return emptyGDEF, false
		}
	}
	return gdef, true
}

func sanitizeAttachList(s *sanitizer, b binarySegm) (Coverage, bool) {
	if b == nil {
		return Coverage{}, true
	}
	if !s.check("AttachList", b, 0, 4) {
		return Coverage{}, false
	}
	link, ok := s.required16("AttachList", b, 0)
	if !ok {
		return Coverage{}, false
	}
	cov, ok := sanitizeCoverage(s, link)
	if !ok {
		return Coverage{}, false
	}
	count := int(b.U16(2))
	if !s.checkArray("AttachList", b, 4, count, 2) {
		return Coverage{}, false
	}
	for i := 0; i < count; i++ {
		point, ok := s.offset16("AttachPoint", b, 4+2*i)
		if !ok {
			return Coverage{}, false
		}
		if point != nil && (!s.check("AttachPoint", point, 0, 2) ||
			!s.checkArray("AttachPoint", point, 2, int(point.U16(0)), 2)) {
			return Coverage{}, false
		}
	}
	return cov, true
}

func sanitizeLigCaretList(s *sanitizer, b binarySegm) (Coverage, bool) {
	if b == nil {
		return Coverage{}, true
	}
	if !s.check("LigCaretList", b, 0, 4) {
		return Coverage{}, false
	}
	link, ok := s.required16("LigCaretList", b, 0)
	if !ok {
		return Coverage{}, false
	}
	cov, ok := sanitizeCoverage(s, link)
	if !ok {
		return Coverage{}, false
	}
	count := int(b.U16(2))
	if !s.checkArray("LigCaretList", b, 4, count, 2) {
		return Coverage{}, false
	}
	for i := 0; i < count; i++ {
		lig, ok := s.offset16("LigGlyph", b, 4+2*i)
		if !ok {
			return Coverage{}, false
		}
		if lig == nil {
			continue
		}
		if !s.check("LigGlyph", lig, 0, 2) || !s.checkArray("LigGlyph", lig, 2, int(lig.U16(0)), 2) {
			return Coverage{}, false
		}
		for j := 0; j < int(lig.U16(0)); j++ {
			caret, ok := s.offset16("CaretValue", lig, 2+2*j)
			if !ok {
				return Coverage{}, false
			}
			if caret == nil {
				continue
			}
			if !s.check("CaretValue", caret, 0, 4) {
				return Coverage{}, false
			}
			if caret.U16(0) == 3 && !s.check("CaretValue", caret, 4, 2) {
				return Coverage{}, false
			}
		}
	}
	return cov, true
}

func sanitizeMarkGlyphSets(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	if !s.check("MarkGlyphSets", b, 0, 4) {
		return false
	}
	if b.U16(0) != 1 {
		return true // unknown formats are ignored
	}
	count := int(b.U16(2))
	if !s.checkArray("MarkGlyphSets", b, 4, count, 4) {
		return false
	}
	for i := 0; i < count; i++ {
		link, ok := s.offset32("MarkGlyphSets", b, 4+4*i)
		if !ok {
			return false
		}
		if _, ok = sanitizeCoverage(s, link); !ok {
			return false
		}
	}
	return true
}

// HasData reports whether the GDEF table is present and valid.
func (gdef *GDEF) HasData() bool {
	return gdef != nil && gdef.data != nil
}

// Size returns the size of the table in bytes.
func (gdef *GDEF) Size() int {
	if gdef == nil {
		return 0
	}
	return len(gdef.data)
}

// HasGlyphClasses reports whether the table contains a glyph class definition.
func (gdef *GDEF) HasGlyphClasses() bool {
	return gdef != nil && gdef.glyphClassDef.data != nil
}

// GlyphClass returns the glyph class of g, or GlyphClassUnclassified.
func (gdef *GDEF) GlyphClass(g GlyphIndex) GlyphClass {
	if gdef == nil {
		return GlyphClassUnclassified
	}
	return GlyphClass(gdef.glyphClassDef.Class(g))
}

// MarkAttachClass returns the mark attachment class of g, or 0.
func (gdef *GDEF) MarkAttachClass(g GlyphIndex) uint16 {
	if gdef == nil {
		return 0
	}
	return gdef.markAttachDef.Class(g)
}

// GlyphProps returns the glyph properties of g derived from its glyph class.
func (gdef *GDEF) GlyphProps(g GlyphIndex) GlyphProps {
	switch gdef.GlyphClass(g) {
	case GlyphClassBase:
		return GlyphPropsBaseGlyph
	case GlyphClassLigature:
		return GlyphPropsLigature
	case GlyphClassMark:
		return GlyphPropsMark | GlyphProps(gdef.MarkAttachClass(g))<<8
	}
	return 0
}

// GlyphsInClass iterates over all glyphs of a given glyph class.
func (gdef *GDEF) GlyphsInClass(clz GlyphClass) iter.Seq[GlyphIndex] {
	if gdef == nil {
		return ClassDef{}.GlyphsOfClass(uint16(clz))
	}
	return gdef.glyphClassDef.GlyphsOfClass(uint16(clz))
}

// AttachPoints copies contour point indices of attachment points of glyph g
// into buf, starting at point number start. It returns the total number of
// attachment points of g and the number of points copied.
func (gdef *GDEF) AttachPoints(g GlyphIndex, start int, buf []uint16) (int, int) {
	if gdef == nil || gdef.attachList == nil {
		return 0, 0
	}
	inx, ok := gdef.attachCoverage.Index(g)
	if !ok || inx >= int(gdef.attachList.U16(2)) {
		return 0, 0
	}
	point := gdef.attachList.link16(4 + 2*inx)
	return Page(int(point.U16(0)), start, buf, func(i int) uint16 {
		return point.U16(2 + 2*i)
	})
}

// LigCarets copies the caret values of ligature glyph g into buf, starting at
// caret number start. It returns the total number of carets and the number of
// carets copied.
func (gdef *GDEF) LigCarets(g GlyphIndex, start int, buf []CaretValue) (int, int) {
	if gdef == nil || gdef.ligCaretList == nil {
		return 0, 0
	}
	inx, ok := gdef.caretCoverage.Index(g)
	if !ok || inx >= int(gdef.ligCaretList.U16(2)) {
		return 0, 0
	}
	lig := gdef.ligCaretList.link16(4 + 2*inx)
	return Page(int(lig.U16(0)), start, buf, func(i int) CaretValue {
		caret := lig.link16(2 + 2*i)
		cv := CaretValue{Format: caret.U16(0)}
		switch cv.Format {
		case 1, 3:
			cv.Coordinate = caret.I16(2)
		case 2:
			cv.PointIndex = caret.U16(2)
		}
		return cv
	})
}

// MarkGlyphSetCount returns the number of mark glyph sets.
func (gdef *GDEF) MarkGlyphSetCount() int {
	if gdef == nil || gdef.markGlyphSets.U16(0) != 1 {
		return 0
	}
	return int(gdef.markGlyphSets.U16(2))
}

// MarkSetCovers reports whether mark glyph set number set contains glyph g.
func (gdef *GDEF) MarkSetCovers(set int, g GlyphIndex) bool {
	if set < 0 || set >= gdef.MarkGlyphSetCount() {
		return false
	}
	return Coverage{data: gdef.markGlyphSets.link32(4 + 4*set)}.Contains(g)
}
