package ot

import "iter"

// --- Coverage --------------------------------------------------------------

// Coverage is a view onto a coverage table. A coverage table identifies the glyphs
// affected by a lookup subtable and maps each of them to a coverage index.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#coverage-table
//
// Coverage tables in formats other than 1 and 2 are tolerated and cover no glyph.
type Coverage struct {
	data binarySegm
}

// sanitizeCoverage checks a coverage table at b.
func sanitizeCoverage(s *sanitizer, b binarySegm) (Coverage, bool) {
	if b == nil {
		return Coverage{}, true
	}
	if !s.check("Coverage", b, 0, 4) {
		return Coverage{}, false
	}
	switch b.U16(0) {
	case 1:
		if !s.checkArray("Coverage", b, 4, int(b.U16(2)), 2) {
			return Coverage{}, false
		}
	case 2:
		if !s.checkArray("Coverage", b, 4, int(b.U16(2)), 6) {
			return Coverage{}, false
		}
	default:
		return Coverage{}, true
	}
	return Coverage{data: b}, true
}

// Format returns the format of the coverage table (1 or 2), or 0 for an empty coverage.
func (c Coverage) Format() uint16 {
	return c.data.U16(0)
}

func (c Coverage) count() int {
	return int(c.data.U16(2))
}

// Index returns the coverage index of glyph g, and true if g is covered.
func (c Coverage) Index(g GlyphIndex) (int, bool) {
	switch c.Format() {
	case 1:
		lo, hi := 0, c.count()
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			x := c.data.glyph(4 + 2*m)
			if g < x {
				hi = m
			} else if g > x {
				lo = m + 1
			} else {
				return m, true
			}
		}
	case 2:
		lo, hi := 0, c.count()
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			rec := 4 + 6*m
			start, end := c.data.glyph(rec), c.data.glyph(rec+2)
			if g < start {
				hi = m
			} else if g > end {
				lo = m + 1
			} else {
				return int(c.data.U16(rec+4)) + int(g-start), true
			}
		}
	}
	return 0, false
}

// Contains reports whether glyph g is covered.
func (c Coverage) Contains(g GlyphIndex) bool {
	_, ok := c.Index(g)
	return ok
}

// Len returns the number of glyphs covered.
func (c Coverage) Len() int {
	switch c.Format() {
	case 1:
		return c.count()
	case 2:
		n := 0
		for i := 0; i < c.count(); i++ {
			start, end := c.data.glyph(4+6*i), c.data.glyph(4+6*i+2)
			if end >= start {
				n += int(end-start) + 1
			}
		}
		return n
	}
	return 0
}

// Glyphs iterates over all covered glyphs, together with their coverage index.
func (c Coverage) Glyphs() iter.Seq2[int, GlyphIndex] {
	return func(yield func(int, GlyphIndex) bool) {
		switch c.Format() {
		case 1:
			for i := 0; i < c.count(); i++ {
				if !yield(i, c.data.glyph(4+2*i)) {
					return
				}
			}
		case 2:
			for i := 0; i < c.count(); i++ {
				rec := 4 + 6*i
				start, end := int(c.data.glyph(rec)), int(c.data.glyph(rec+2))
				inx := int(c.data.U16(rec + 4))
				for g := start; g <= end; g++ {
					if !yield(inx+g-start, GlyphIndex(g)) {
						return
					}
				}
			}
		}
	}
}

// Intersects reports whether any covered glyph satisfies has, usually a
// membership test of a glyph set.
func (c Coverage) Intersects(has func(GlyphIndex) bool) bool {
	for _, g := range c.Glyphs() {
		if has(g) {
			return true
		}
	}
	return false
}

// --- Class definitions -----------------------------------------------------

// ClassDef is a view onto a class definition table, which groups glyphs into
// classes denoted as integer values. Glyphs not assigned to any class are in class 0.
//
// From the OpenType specification:
// For efficiency and ease of representation, a font developer can group glyph indices
// to form glyph classes. Class assignments vary in meaning from one lookup subtable
// to another. For example, in the GSUB and GPOS tables, classes are used to describe
// glyph contexts. GDEF tables also use the idea of glyph classes.
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#class-definition-table)
type ClassDef struct {
	data binarySegm
}

func sanitizeClassDef(s *sanitizer, b binarySegm) (ClassDef, bool) {
	if b == nil {
		return ClassDef{}, true
	}
	if !s.check("ClassDef", b, 0, 4) {
		return ClassDef{}, false
	}
	switch b.U16(0) {
	case 1:
		if !s.check("ClassDef", b, 0, 6) || !s.checkArray("ClassDef", b, 6, int(b.U16(4)), 2) {
			return ClassDef{}, false
		}
	case 2:
		if !s.checkArray("ClassDef", b, 4, int(b.U16(2)), 6) {
			return ClassDef{}, false
		}
	default:
		return ClassDef{}, true
	}
	return ClassDef{data: b}, true
}

// Format returns the format of the class definition table (1 or 2), or 0 if empty.
func (cd ClassDef) Format() uint16 {
	return cd.data.U16(0)
}

// Class returns the class defined for a glyph, or 0 (= default class).
func (cd ClassDef) Class(g GlyphIndex) uint16 {
	switch cd.Format() {
	case 1:
		start, count := cd.data.glyph(2), int(cd.data.U16(4))
		if g < start || int(g-start) >= count {
			return 0
		}
		return cd.data.U16(6 + 2*int(g-start))
	case 2:
		lo, hi := 0, int(cd.data.U16(2))
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			rec := 4 + 6*m
			if g < cd.data.glyph(rec) {
				hi = m
			} else if g > cd.data.glyph(rec+2) {
				lo = m + 1
			} else {
				return cd.data.U16(rec + 4)
			}
		}
	}
	return 0
}

// Glyphs iterates over all glyphs explicitly assigned to a class, together
// with their class. Glyphs of class 0 are not reported.
func (cd ClassDef) Glyphs() iter.Seq2[GlyphIndex, uint16] {
	return func(yield func(GlyphIndex, uint16) bool) {
		switch cd.Format() {
		case 1:
			start, count := int(cd.data.glyph(2)), int(cd.data.U16(4))
			for i := 0; i < count && start+i <= 0xFFFF; i++ {
				if clz := cd.data.U16(6 + 2*i); clz != 0 {
					if !yield(GlyphIndex(start+i), clz) {
						return
					}
				}
			}
		case 2:
			for i := 0; i < int(cd.data.U16(2)); i++ {
				rec := 4 + 6*i
				start, end, clz := int(cd.data.glyph(rec)), int(cd.data.glyph(rec+2)), cd.data.U16(rec+4)
				if clz == 0 {
					continue
				}
				for g := start; g <= end; g++ {
					if !yield(GlyphIndex(g), clz) {
						return
					}
				}
			}
		}
	}
}

// GlyphsOfClass iterates over all glyphs assigned to class clz (clz > 0).
func (cd ClassDef) GlyphsOfClass(clz uint16) iter.Seq[GlyphIndex] {
	return func(yield func(GlyphIndex) bool) {
		if clz == 0 {
			return
		}
		for g, c := range cd.Glyphs() {
			if c == clz && !yield(g) {
				return
			}
		}
	}
}
