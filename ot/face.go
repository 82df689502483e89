package ot

import (
	"slices"
	"sync"
)

// Face is a single font face within a font blob. It gives access to the
// face's table directory and to sanitized views onto the layout and color
// tables.
//
// Sanitized table views are created on first access and then shared; they
// live as long as the Face. A Face also owns a cache for derived data, see
// Memo. It is safe to use a Face from multiple goroutines.
type Face struct {
	blob       Blob
	index      int
	flavor     Tag
	tables     []tableRecord
	glyphCount int
	conf       faceConfig
	mu         sync.Mutex // guards ec and memo
	ec         errorCollector
	memo       map[any]any
	gsub       lazyView[*LayoutTable]
	gpos       lazyView[*LayoutTable]
	gdef       lazyView[*GDEF]
	cpal       lazyView[*CPAL]
}

type lazyView[T any] struct {
	once   sync.Once
	view   T
	result SanitizeResult
}

func (lv *lazyView[T]) get(build func() (T, SanitizeResult)) T {
	lv.once.Do(func() {
		lv.view, lv.result = build()
	})
	return lv.view
}

type faceConfig struct {
	index      int
	glyphCount int
	sanitize   SanitizeOptions
}

// FaceOption configures a Face.
type FaceOption func(*faceConfig)

// WithFaceIndex selects a face from a font collection. The default is face 0.
func WithFaceIndex(index int) FaceOption {
	return func(conf *faceConfig) {
		conf.index = index
	}
}

// WithGlyphCount overrides the number of glyphs, which otherwise is taken
// from the font's 'maxp' table.
func WithGlyphCount(n int) FaceOption {
	return func(conf *faceConfig) {
		conf.glyphCount = n
	}
}

// WithSanitizeOptions sets the options for sanitizing tables.
func WithSanitizeOptions(opts SanitizeOptions) FaceOption {
	return func(conf *faceConfig) {
		conf.sanitize = opts
	}
}

// NewFace creates a face from a font blob, which may either be a single font or
// a font collection.
//
// An error is returned if the blob is not an OpenType font or collection.
// Problems with individual tables never result in an error; instead, the
// offending table is treated as absent or empty, and the problem is recorded
// (see Face.Errors).
func NewFace(blob Blob, opts ...FaceOption) (*Face, error) {
	conf := faceConfig{glyphCount: -1}
	for _, opt := range opts {
		opt(&conf)
	}
	f := &Face{blob: blob, index: conf.index, conf: conf}
	flavor, tables, err := parseTableDirectory(blob.data, conf.index, &f.ec)
	if err != nil {
		return nil, err
	}
	f.flavor, f.tables = flavor, tables
	f.glyphCount = conf.glyphCount
	if f.glyphCount < 0 {
		f.glyphCount = 0
		if maxp := f.table(TagMaxp); len(maxp) >= 6 {
			f.glyphCount = int(maxp.U16(4))
		} else {
			f.ec.addWarning(TagMaxp, "no usable 'maxp' table, glyph count is 0", 0)
		}
	}
	tracer().Debugf("face %d: %d tables, %d glyphs", f.index, len(f.tables), f.glyphCount)
	return f, nil
}

// Blob returns the blob the face has been created from.
func (f *Face) Blob() Blob {
	return f.blob
}

// Index returns the index of the face within its blob.
func (f *Face) Index() int {
	return f.index
}

// Flavor returns the font's flavor, e.g. FlavorTrueType or FlavorCFF.
func (f *Face) Flavor() Tag {
	return f.flavor
}

// GlyphCount returns the number of glyphs in the face.
func (f *Face) GlyphCount() int {
	return f.glyphCount
}

func (f *Face) record(tag Tag) (tableRecord, bool) {
	for _, rec := range f.tables {
		if rec.tag == tag {
			return rec, true
		}
	}
	return tableRecord{}, false
}

func (f *Face) table(tag Tag) binarySegm {
	rec, ok := f.record(tag)
	if !ok {
		return nil
	}
	return f.blob.data[rec.offset : rec.offset+rec.length]
}

// HasTable reports whether the table directory contains a table for tag.
func (f *Face) HasTable(tag Tag) bool {
	_, ok := f.record(tag)
	return ok
}

// TableData returns the raw bytes of a table. Clients must not modify them.
// If the table is not present, nil is returned.
func (f *Face) TableData(tag Tag) []byte {
	return f.table(tag)
}

// TableTags returns the tags of all tables in the face, in directory order.
func (f *Face) TableTags() []Tag {
	tags := make([]Tag, len(f.tables))
	for i, rec := range f.tables {
		tags[i] = rec.tag
	}
	return tags
}

// TableTagsPaged copies table tags into buf, starting with table number start.
// It returns the total number of tables and the number of tags copied.
func (f *Face) TableTagsPaged(start int, buf []Tag) (int, int) {
	return Page(len(f.tables), start, buf, func(i int) Tag {
		return f.tables[i].tag
	})
}

// sanitized runs a sanitization function for a table and records the outcome.
func sanitized[T any](f *Face, tag Tag, empty T, run func(*sanitizer, binarySegm) (T, bool)) (T, SanitizeResult) {
	rec, ok := f.record(tag)
	if !ok {
		return empty, Skipped
	}
	var ec errorCollector
	s := newSanitizer(tag, f.table(tag), rec.offset, f.conf.sanitize, &ec)
	view, ok := run(s, f.table(tag))
	result := Passed
	if !ok || s.failed {
		tracer().Errorf("table %s failed sanitization, will treat it as empty", tag)
		view, result = empty, Failed
	}
	f.mu.Lock()
	f.ec.merge(&ec)
	f.mu.Unlock()
	return view, result
}

// GSUB returns the glyph substitution table. It is never nil.
func (f *Face) GSUB() *LayoutTable {
	return f.gsub.get(func() (*LayoutTable, SanitizeResult) {
		return sanitized(f, TagGSUB, emptyGSUB, func(s *sanitizer, b binarySegm) (*LayoutTable, bool) {
			return sanitizeLayoutTable(s, TagGSUB, b)
		})
	})
}

// GPOS returns the glyph positioning table. It is never nil.
func (f *Face) GPOS() *LayoutTable {
	return f.gpos.get(func() (*LayoutTable, SanitizeResult) {
		return sanitized(f, TagGPOS, emptyGPOS, func(s *sanitizer, b binarySegm) (*LayoutTable, bool) {
			return sanitizeLayoutTable(s, TagGPOS, b)
		})
	})
}

// LayoutTable returns GSUB or GPOS for table tags TagGSUB or TagGPOS,
// respectively. For any other tag, an empty GSUB table is returned.
func (f *Face) LayoutTable(tag Tag) *LayoutTable {
	switch tag {
	case TagGSUB:
		return f.GSUB()
	case TagGPOS:
		return f.GPOS()
	}
	return emptyGSUB
}

// GDEF returns the glyph definition table. It is never nil.
func (f *Face) GDEF() *GDEF {
	return f.gdef.get(func() (*GDEF, SanitizeResult) {
		return sanitized(f, TagGDEF, emptyGDEF, sanitizeGDEF)
	})
}

// CPAL returns the color palette table. It is never nil.
func (f *Face) CPAL() *CPAL {
	return f.cpal.get(func() (*CPAL, SanitizeResult) {
		return sanitized(f, TagCPAL, emptyCPAL, sanitizeCPAL)
	})
}

// Sanitize reports the outcome of sanitizing the table for tag. Tables which
// are absent, or which are not checked by this package, are reported as Skipped.
func (f *Face) Sanitize(tag Tag) SanitizeResult {
	switch tag {
	case TagGSUB:
		f.GSUB()
		return f.gsub.result
	case TagGPOS:
		f.GPOS()
		return f.gpos.result
	case TagGDEF:
		f.GDEF()
		return f.gdef.result
	case TagCPAL:
		f.CPAL()
		return f.cpal.result
	}
	return Skipped
}

// Memo returns the value cached for key, calling build to create it on first
// use. Values live as long as the face. Packages building derived structures
// (e.g., lookup accelerators) should use a private key type to avoid collisions.
//
// build may be called more than once if multiple goroutines request the same
// key concurrently; only one of the results is kept.
func (f *Face) Memo(key any, build func() any) any {
	f.mu.Lock()
	v, ok := f.memo[key]
	f.mu.Unlock()
	if ok {
		return v
	}
	v = build()
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.memo[key]; ok {
		return prev
	}
	if f.memo == nil {
		f.memo = make(map[any]any)
	}
	f.memo[key] = v
	return v
}

// Errors returns all errors recorded so far. As tables are sanitized lazily,
// the list grows as tables are accessed.
func (f *Face) Errors() []FontError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ec.errors)
}

// Warnings returns all warnings recorded so far.
func (f *Face) Warnings() []FontWarning {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ec.warnings)
}

// CriticalErrors returns the errors which caused a table to be rejected.
func (f *Face) CriticalErrors() []FontError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ec.criticalErrors()
}

// HasCriticalErrors reports whether any table has been rejected.
func (f *Face) HasCriticalErrors() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ec.hasCriticalErrors()
}
