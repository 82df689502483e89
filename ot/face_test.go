package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// testFace builds a synthetic font from tables and creates a face for it.
func testFace(t *testing.T, tables map[string][]byte, opts ...FaceOption) *Face {
	t.Helper()
	face, err := NewFace(NewBlob(otbuild.Font(tables)), opts...)
	if err != nil {
		t.Fatalf("cannot create face from synthetic font: %v", err)
	}
	return face
}

func TestNewFaceRejectsNonFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	if _, err := NewFace(EmptyBlob); err == nil {
		t.Errorf("expected error for empty blob")
	}
	if _, err := NewFace(NewBlob([]byte("this is not a font at all"))); err == nil {
		t.Errorf("expected error for text data")
	}
	if FaceCount(NewBlob([]byte("this is not a font at all"))) != 0 {
		t.Errorf("expected face count of 0 for text data")
	}
	font := otbuild.Font(map[string][]byte{"maxp": otbuild.Maxp(1)})
	if _, err := NewFace(NewBlob(font), WithFaceIndex(1)); err == nil {
		t.Errorf("expected error for face index 1 of a single font")
	}
}

func TestFaceTableDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cpal := otbuild.CPAL{Entries: 1, Palettes: [][]uint32{{0xff000000}}}.Bytes()
	face := testFace(t, map[string][]byte{
		"maxp": otbuild.Maxp(10),
		"CPAL": cpal,
	})
	if face.Flavor() != FlavorTrueType {
		t.Errorf("expected TrueType flavor, have %s", face.Flavor())
	}
	if face.GlyphCount() != 10 {
		t.Errorf("expected 10 glyphs, have %d", face.GlyphCount())
	}
	tags := face.TableTags()
	if len(tags) != 2 || tags[0] != TagCPAL || tags[1] != TagMaxp {
		t.Fatalf("expected tables [CPAL maxp], have %v", tags)
	}
	if !face.HasTable(TagCPAL) || face.HasTable(TagGSUB) {
		t.Errorf("HasTable reports wrong results")
	}
	if len(face.TableData(TagCPAL)) != len(cpal) {
		t.Errorf("expected CPAL data of length %d, have %d", len(cpal), len(face.TableData(TagCPAL)))
	}
	if face.TableData(TagGSUB) != nil {
		t.Errorf("expected no data for absent table")
	}
	buf := make([]Tag, 1)
	var collected []Tag
	for start := 0; ; start++ {
		total, n := face.TableTagsPaged(start, buf)
		if total != 2 {
			t.Fatalf("expected total of 2 tables, have %d", total)
		}
		if n == 0 {
			break
		}
		collected = append(collected, buf[:n]...)
	}
	if len(collected) != 2 || collected[0] != tags[0] || collected[1] != tags[1] {
		t.Errorf("paged table tags %v differ from %v", collected, tags)
	}
}

func TestFaceGlyphCountOverride(t *testing.T) {
	face := testFace(t, map[string][]byte{"maxp": otbuild.Maxp(10)}, WithGlyphCount(3))
	if face.GlyphCount() != 3 {
		t.Errorf("expected overridden glyph count of 3, have %d", face.GlyphCount())
	}
	face = testFace(t, map[string][]byte{"CPAL": otbuild.CPAL{}.Bytes()})
	if face.GlyphCount() != 0 {
		t.Errorf("expected glyph count 0 without maxp, have %d", face.GlyphCount())
	}
	if len(face.Warnings()) == 0 {
		t.Errorf("expected a warning for missing maxp")
	}
}

func TestFaceCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ttc := NewBlob(otbuild.Collection(
		map[string][]byte{"maxp": otbuild.Maxp(5)},
		map[string][]byte{"maxp": otbuild.Maxp(7), "GDEF": otbuild.GDEF{}.Bytes()},
	))
	if FaceCount(ttc) != 2 {
		t.Fatalf("expected 2 faces in collection, have %d", FaceCount(ttc))
	}
	face, err := NewFace(ttc, WithFaceIndex(1))
	if err != nil {
		t.Fatal(err)
	}
	if face.Index() != 1 || face.GlyphCount() != 7 {
		t.Errorf("expected face 1 with 7 glyphs, have face %d with %d glyphs", face.Index(), face.GlyphCount())
	}
	if !face.HasTable(TagGDEF) {
		t.Errorf("expected face 1 to have a GDEF table")
	}
	if _, err := NewFace(ttc, WithFaceIndex(2)); err == nil {
		t.Errorf("expected error for face index out of range")
	}
}

func TestFaceDropsOutOfBoundsTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	font := otbuild.Font(map[string][]byte{
		"GDEF": otbuild.GDEF{}.Bytes(),
		"maxp": otbuild.Maxp(4),
	})
	// first table record is GDEF; make its length exceed the font
	binary.BigEndian.PutUint32(font[12+12:], 0x7FFFFFFF)
	face, err := NewFace(NewBlob(font))
	if err != nil {
		t.Fatal(err)
	}
	if face.HasTable(TagGDEF) {
		t.Errorf("expected out-of-bounds GDEF to be dropped")
	}
	if face.GlyphCount() != 4 {
		t.Errorf("expected remaining tables to be usable")
	}
	errs := face.Errors()
	if len(errs) != 1 || errs[0].Severity != SeverityMajor || errs[0].Table != TagGDEF {
		t.Errorf("expected a single major error for GDEF, have %v", errs)
	}
	if face.Sanitize(TagGDEF) != Skipped {
		t.Errorf("expected dropped table to be skipped by sanitizer")
	}
}

func TestFaceSanitizeResults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	face := testFace(t, map[string][]byte{
		"GSUB": otbuild.Layout{}.Bytes(),
		"GPOS": {0, 1, 0, 0}, // truncated header
		"maxp": otbuild.Maxp(4),
	})
	if r := face.Sanitize(TagGSUB); r != Passed {
		t.Errorf("expected GSUB to pass, is %s", r)
	}
	if r := face.Sanitize(TagGPOS); r != Failed {
		t.Errorf("expected GPOS to fail, is %s", r)
	}
	if r := face.Sanitize(TagGDEF); r != Skipped {
		t.Errorf("expected absent GDEF to be skipped, is %s", r)
	}
	if r := face.Sanitize(TagMaxp); r != Skipped {
		t.Errorf("expected maxp to be skipped, is %s", r)
	}
	if face.GPOS().HasData() || face.GPOS() != emptyGPOS {
		t.Errorf("expected rejected GPOS to be replaced by the empty table")
	}
	if face.GDEF() != emptyGDEF || face.CPAL() != emptyCPAL {
		t.Errorf("expected absent tables to be the empty singletons")
	}
	if !face.HasCriticalErrors() {
		t.Errorf("expected a critical error for GPOS")
	}
	if face.LayoutTable(TagCPAL).HasData() {
		t.Errorf("expected empty layout table for non-layout tag")
	}
}

func TestFaceMemo(t *testing.T) {
	face := testFace(t, map[string][]byte{"maxp": otbuild.Maxp(1)})
	type key struct{}
	calls := 0
	build := func() any {
		calls++
		return calls
	}
	v1 := face.Memo(key{}, build)
	v2 := face.Memo(key{}, build)
	if calls != 1 || v1.(int) != 1 || v2.(int) != 1 {
		t.Errorf("expected build to be called once, was called %d times", calls)
	}
	if face.Memo("other", build).(int) != 2 {
		t.Errorf("expected different keys to be memoized separately")
	}
}
