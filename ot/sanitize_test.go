package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestCheckedArithmetic(t *testing.T) {
	if _, err := checkedMulInt(1<<62, 4); err == nil {
		t.Errorf("expected overflow error for multiplication")
	}
	if n, err := checkedMulInt(3, 4); err != nil || n != 12 {
		t.Errorf("expected 12, have %d (%v)", n, err)
	}
	if _, err := checkedAddInt(-1, 4); err == nil {
		t.Errorf("expected error for negative operand")
	}
}

func TestSanitizerBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var ec errorCollector
	data := binarySegm{0, 1, 0, 4, 0, 0, 0, 0}
	s := newSanitizer(T("test"), data, 100, SanitizeOptions{}, &ec)
	if !s.check("X", data, 0, 8) || s.check("X", data, 4, 5) {
		t.Errorf("range check wrong")
	}
	if len(ec.errors) != 1 || ec.errors[0].Offset != 100 {
		t.Errorf("expected one error at file offset 100, have %v", ec.errors)
	}
	link, ok := s.offset16("X", data, 2)
	if !ok || len(link) != 4 || s.offsetOf(link) != 4 {
		t.Errorf("expected link to position 4")
	}
	if link, ok = s.offset16("X", data, 4); !ok || link != nil {
		t.Errorf("expected NULL link to be accepted")
	}
	if _, ok = s.required16("X", data, 4); ok {
		t.Errorf("expected required NULL link to be rejected")
	}
	binary.BigEndian.PutUint16(data[6:], 8)
	if _, ok = s.offset16("X", data, 6); ok {
		t.Errorf("expected offset to end of data to be rejected")
	}
	if s.checkArray("X", data, 2, 1<<40, 1<<30) {
		t.Errorf("expected huge array to be rejected")
	}
}

func TestSanitizerBudget(t *testing.T) {
	var ec errorCollector
	data := make(binarySegm, 16)
	s := newSanitizer(T("test"), data, 0, SanitizeOptions{MaxOps: 3}, &ec)
	for i := 0; i < 3; i++ {
		if !s.check("X", data, 0, 2) {
			t.Fatalf("check %d should succeed", i)
		}
	}
	if s.check("X", data, 0, 2) {
		t.Errorf("expected budget to be exhausted")
	}
	if s.check("X", data, 0, 2) || len(ec.errors) != 1 {
		t.Errorf("expected exhausted budget to be reported once, have %d errors", len(ec.errors))
	}
	s = newSanitizer(T("test"), data, 0, SanitizeOptions{}, &ec)
	if s.opsLeft != sanitizeOpsMin {
		t.Errorf("expected minimum budget for small tables, have %d", s.opsLeft)
	}
}

func TestSanitizerDepth(t *testing.T) {
	s := newSanitizer(T("test"), nil, 0, SanitizeOptions{MaxDepth: 2}, nil)
	if !s.enter("X") || !s.enter("X") {
		t.Fatalf("expected two levels of nesting to be allowed")
	}
	if s.enter("X") {
		t.Errorf("expected third level of nesting to be rejected")
	}
	s.leave()
	if !s.enter("X") {
		t.Errorf("expected nesting to be allowed again after leave")
	}
}

func TestSanitizeRejectsMalformedLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	single := func() *otbuild.Table { return otbuild.SingleSubst1(otbuild.Coverage1(1), 1) }
	cases := []struct {
		name   string
		layout func() []byte
	}{
		{"major version 2", func() []byte {
			b := otbuild.Layout{}.Bytes()
			binary.BigEndian.PutUint16(b, 2)
			return b
		}},
		{"lookup list offset out of bounds", func() []byte {
			b := otbuild.Layout{}.Bytes()
			binary.BigEndian.PutUint16(b[8:], 0x7FFF)
			return b
		}},
		{"script record with NULL offset", func() []byte {
			return otbuild.New().U16(1, 0).
				Off16(otbuild.New().U16(1).Tag("latn").U16(0)).
				Off16(otbuild.New().U16(0)).Off16(otbuild.New().U16(0)).Bytes()
		}},
		{"langsys feature count too large", func() []byte {
			ls := otbuild.New().U16(0, 0xFFFF, 300)
			script := otbuild.New().Off16(ls).U16(0)
			return otbuild.New().U16(1, 0).
				Off16(otbuild.New().U16(1).Tag("latn").Off16(script)).
				Off16(otbuild.New().U16(0)).Off16(otbuild.New().U16(0)).Bytes()
		}},
		{"extension of extension", func() []byte {
			return otbuild.Layout{Lookups: []otbuild.Lookup{{Type: 7, Subtables: []*otbuild.Table{
				otbuild.Extension(7, otbuild.Extension(1, single())),
			}}}}.Bytes()
		}},
		{"extension with mixed types", func() []byte {
			return otbuild.Layout{Lookups: []otbuild.Lookup{{Type: 7, Subtables: []*otbuild.Table{
				otbuild.Extension(1, single()),
				otbuild.Extension(2, otbuild.MultipleSubst(otbuild.Coverage1(1), []uint16{1, 2})),
			}}}}.Bytes()
		}},
		{"truncated coverage", func() []byte {
			cov := otbuild.Raw([]byte{0, 1, 0, 40, 0, 1})
			return otbuild.Layout{Lookups: []otbuild.Lookup{{Type: 1, Subtables: []*otbuild.Table{
				otbuild.SingleSubst1(cov, 1),
			}}}}.Bytes()
		}},
		{"ligature component count too large", func() []byte {
			lig := otbuild.Raw([]byte{0, 50, 0x10, 0})
			set := otbuild.New().U16(1).Off16(lig)
			st := otbuild.New().U16(1).Off16(otbuild.Coverage1(1)).U16(1).Off16(set)
			return otbuild.Layout{Lookups: []otbuild.Lookup{{Type: 4, Subtables: []*otbuild.Table{st}}}}.Bytes()
		}},
		{"chained context with truncated lookup records", func() []byte {
			st := otbuild.New().U16(3, 0, 1).Off16(otbuild.Coverage1(1)).U16(0, 5)
			return otbuild.Layout{Lookups: []otbuild.Lookup{{Type: 6, Subtables: []*otbuild.Table{st}}}}.Bytes()
		}},
		{"mark filtering set missing", func() []byte {
			lookup := otbuild.New().U16(1, 0x0010, 0)
			return otbuild.New().U16(1, 0).Off16(otbuild.New().U16(0)).Off16(otbuild.New().U16(0)).
				Off16(otbuild.New().U16(1).Off16(lookup)).Bytes()
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			face := testFace(t, map[string][]byte{"GSUB": c.layout()})
			if r := face.Sanitize(TagGSUB); r != Failed {
				t.Fatalf("expected GSUB to fail sanitization, is %s", r)
			}
			if face.GSUB().HasData() || face.GSUB().ScriptCount() != 0 || face.GSUB().LookupCount() != 0 {
				t.Errorf("expected rejected GSUB to be empty")
			}
			if !face.HasCriticalErrors() {
				t.Errorf("expected critical error to be recorded")
			}
		})
	}
}

func TestSanitizeToleratesUnknownFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	layout := otbuild.Layout{Lookups: []otbuild.Lookup{
		{Type: 1, Subtables: []*otbuild.Table{otbuild.New().U16(9, 0, 0)}},
		{Type: 42, Subtables: []*otbuild.Table{otbuild.New().U16(1, 2, 3)}},
		{Type: 1, Subtables: []*otbuild.Table{otbuild.SingleSubst1(otbuild.Raw([]byte{0, 7, 0, 0}), 1)}},
	}}
	face := testFace(t, map[string][]byte{"GSUB": layout.Bytes()})
	if r := face.Sanitize(TagGSUB); r != Passed {
		t.Fatalf("expected unknown formats to be tolerated, is %s: %v", r, face.Errors())
	}
	st := face.GSUB().Lookup(2).SubTable(0)
	if _, ok := st.SingleSubstitute(1); ok {
		t.Errorf("expected coverage of unknown format to cover nothing")
	}
}

func TestSanitizeSharedCoverageBudget(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	// many lookups sharing one large coverage: fine with the default budget,
	// rejected with a small one
	glyphs := make([]uint16, 500)
	for i := range glyphs {
		glyphs[i] = uint16(i)
	}
	cov := otbuild.Coverage1(glyphs...)
	var lookups []otbuild.Lookup
	for i := 0; i < 50; i++ {
		lookups = append(lookups, otbuild.Lookup{Type: 1, Subtables: []*otbuild.Table{otbuild.SingleSubst1(cov, 1)}})
	}
	data := otbuild.Layout{Lookups: lookups}.Bytes()
	face := testFace(t, map[string][]byte{"GSUB": data})
	if r := face.Sanitize(TagGSUB); r != Passed {
		t.Fatalf("expected GSUB to pass with default budget, is %s", r)
	}
	face = testFace(t, map[string][]byte{"GSUB": data}, WithSanitizeOptions(SanitizeOptions{MaxOps: 20}))
	if r := face.Sanitize(TagGSUB); r != Failed {
		t.Fatalf("expected GSUB to fail with small budget, is %s", r)
	}
}
