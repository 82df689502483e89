package otlayout

import (
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySingleSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(1, otbuild.SingleSubst2(otbuild.Coverage1(3, 4), 30, 40)))
	buf := NewBuffer(3, 5, 4)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(30, 5, 40), buf.Glyphs())
	assert.NotZero(t, buf.Info[0].Props&GlyphPropsSubstituted)
	assert.Zero(t, buf.Info[1].Props&GlyphPropsSubstituted)
	assert.Equal(t, 0, buf.Idx)
	//
	buf = NewBuffer(7, 8)
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(7, 8), buf.Glyphs())
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 1, buf, GlobalMask), "there is no lookup #1")
}

func TestApplyRespectsMask(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(1, otbuild.SingleSubst1(otbuild.Coverage1(3), 7)))
	buf := NewBuffer(3, 3, 3)
	buf.Info[1].Mask = 0x4
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, 0x4))
	assert.Equal(t, glyphs(3, 10, 3), buf.Glyphs())
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 0, buf, 0), "a zero mask never applies")
}

func TestApplyEmptyBuffer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(2, otbuild.MultipleSubst(otbuild.Coverage1(7), []uint16{70, 71})))
	buf := NewBuffer()
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.Pos)
}

func TestApplyMultipleSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(2, otbuild.MultipleSubst(otbuild.Coverage1(7), []uint16{70, 71, 72})))
	buf := NewBuffer(1, 7, 2)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	require.Equal(t, glyphs(1, 70, 71, 72, 2), buf.Glyphs())
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 1, buf.Info[i].Cluster)
		assert.Equal(t, i-1, buf.Info[i].LigComponent)
		assert.NotZero(t, buf.Info[i].Props&GlyphPropsMultiplied)
	}
	assert.Len(t, buf.Pos, buf.Len())
}

func TestApplyMultipleSubstitutionDeletes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(2, otbuild.MultipleSubst(otbuild.Coverage1(7), []uint16{})))
	buf := NewBuffer(1, 7, 2)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(1, 2), buf.Glyphs())
}

func TestApplyAlternateSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(3, otbuild.AlternateSubst(otbuild.Coverage1(5), []uint16{50, 51, 52})))
	buf := NewBuffer(5, 5)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(50, 50), buf.Glyphs(), "global mask selects the first alternate")
	//
	// a two bit feature at shift 1, value 2 for the first glyph only
	buf = NewBuffer(5, 5)
	buf.Info[0].Mask |= 2 << 1
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, 0x6))
	assert.Equal(t, glyphs(51, 5), buf.Glyphs())
	//
	buf = NewBuffer(5)
	buf.Info[0].Mask = 3 << 1
	buf.Info[0].Mask |= 1 << 3
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, 0x6))
	assert.Equal(t, glyphs(52), buf.Glyphs())
}

func TestApplyLigatureSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(4, otbuild.LigatureSubst(otbuild.Coverage1(1),
		[]otbuild.Ligature{
			{Glyph: 100, Components: []uint16{2, 3}},
			{Glyph: 101, Components: []uint16{2}},
		},
	)))
	buf := NewBuffer(1, 2, 3, 4, 1, 2)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	require.Equal(t, glyphs(100, 4, 101), buf.Glyphs())
	assert.Equal(t, []int{0, 3, 4}, []int{buf.Info[0].Cluster, buf.Info[1].Cluster, buf.Info[2].Cluster})
	assert.NotZero(t, buf.Info[0].Props&GlyphPropsLigated)
	assert.Equal(t, ot.GlyphPropsLigature, buf.Info[0].Props&ot.GlyphPropsLigature,
		"without GDEF a ligature is guessed to be a ligature glyph")
}

func TestApplyLigatureSkipsMarks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gsub := otbuild.Layout{Lookups: []otbuild.Lookup{{
		Type: 4,
		Flag: uint16(ot.LOOKUP_FLAG_IGNORE_MARKS),
		Subtables: []*otbuild.Table{otbuild.LigatureSubst(otbuild.Coverage1(1),
			[]otbuild.Ligature{{Glyph: 100, Components: []uint16{2, 3}}},
		)},
	}}}
	gdef := otbuild.GDEF{GlyphClassDef: otbuild.ClassDef1(9, uint16(ot.GlyphClassMark))}
	face := testFace(t, map[string][]byte{"GSUB": gsub.Bytes(), "GDEF": gdef.Bytes()})
	buf := NewBuffer(1, 9, 2, 3)
	buf.SetGlyphProps(face)
	assert.NotZero(t, buf.Info[1].Props&ot.GlyphPropsMark)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	require.Equal(t, glyphs(100, 9), buf.Glyphs())
	assert.Equal(t, 1, buf.Info[1].LigComponent, "mark follows the first component")
	assert.Equal(t, 0, buf.Info[1].Cluster)
	//
	// without the flag the mark interrupts the ligature
	buf = NewBuffer(1, 9, 2, 3)
	buf.SetGlyphProps(face)
	face2 := lookupsFace(t, "GSUB", single(4, otbuild.LigatureSubst(otbuild.Coverage1(1),
		[]otbuild.Ligature{{Glyph: 100, Components: []uint16{2, 3}}},
	)))
	assert.False(t, ApplyLookup(face2, ot.TagGSUB, 0, buf, GlobalMask))
}

func TestApplyContextSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB",
		single(5, otbuild.Context1(false, otbuild.Coverage1(1), []otbuild.Rule{{
			Input:   []uint16{2},
			Lookups: []otbuild.LookupRecord{{SequenceIndex: 1, LookupIndex: 1}},
		}})),
		single(1, otbuild.SingleSubst2(otbuild.Coverage1(2), 20)),
	)
	buf := NewBuffer(1, 2, 2, 1, 3)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(1, 20, 2, 1, 3), buf.Glyphs())
}

func TestApplyChainedClassContext(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB",
		single(6, otbuild.Context2(true, otbuild.Coverage1(5),
			otbuild.ClassDef1(1, 1), // backtrack: glyph 1 is class 1
			otbuild.ClassDef1(5, 1), // input: glyph 5 is class 1
			otbuild.ClassDef1(7, 2), // lookahead: glyph 7 is class 2
			nil,
			[]otbuild.Rule{{
				Backtrack: []uint16{1},
				Lookahead: []uint16{2},
				Lookups:   []otbuild.LookupRecord{{SequenceIndex: 0, LookupIndex: 1}},
			}},
		)),
		single(1, otbuild.SingleSubst1(otbuild.Coverage1(5), 1)),
	)
	buf := NewBuffer(1, 5, 7)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(1, 6, 7), buf.Glyphs())
	//
	buf = NewBuffer(3, 5, 7)
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask), "backtrack does not match")
	buf = NewBuffer(1, 5, 8)
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask), "lookahead does not match")
	buf = NewBuffer(1, 5)
	assert.False(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask), "lookahead missing")
}

func TestApplyNestedLookupChangingLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	// input 1 2 3: multiply 1 and substitute 3. Sequence indices of records
	// following a multiplication address the grown input.
	for _, records := range [][]otbuild.LookupRecord{
		{{SequenceIndex: 2, LookupIndex: 2}, {SequenceIndex: 0, LookupIndex: 1}},
		{{SequenceIndex: 0, LookupIndex: 1}, {SequenceIndex: 3, LookupIndex: 2}},
	} {
		face := lookupsFace(t, "GSUB",
			single(5, otbuild.Context3(
				[]*otbuild.Table{otbuild.Coverage1(1), otbuild.Coverage1(2), otbuild.Coverage1(3)},
				records...,
			)),
			single(2, otbuild.MultipleSubst(otbuild.Coverage1(1), []uint16{10, 11})),
			single(1, otbuild.SingleSubst2(otbuild.Coverage1(3), 30)),
		)
		buf := NewBuffer(1, 2, 3, 4)
		assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
		assert.Equal(t, glyphs(10, 11, 2, 30, 4), buf.Glyphs(), "records %v", records)
	}
}

func TestApplySelfRecursiveLookupTerminates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB",
		single(5, otbuild.Context1(false, otbuild.Coverage1(1), []otbuild.Rule{{
			Lookups: []otbuild.LookupRecord{{SequenceIndex: 0, LookupIndex: 0}},
		}})),
	)
	buf := NewBuffer(1, 1, 2)
	ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask)
	assert.Equal(t, glyphs(1, 1, 2), buf.Glyphs())
}

func TestApplyReverseChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(8, otbuild.ReverseChain(otbuild.Coverage1(5),
		nil, []*otbuild.Table{otbuild.Coverage1(5, 6)}, 50)))
	buf := NewBuffer(5, 5, 6, 5)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	// processed back to front: the substituted glyph no longer serves as
	// lookahead for its predecessor
	assert.Equal(t, glyphs(5, 50, 6, 5), buf.Glyphs())
	assert.Equal(t, 0, buf.Idx)
}

func TestApplyReverseChainNotNested(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB",
		single(5, otbuild.Context3(
			[]*otbuild.Table{otbuild.Coverage1(5)},
			otbuild.LookupRecord{SequenceIndex: 0, LookupIndex: 1},
		)),
		single(8, otbuild.ReverseChain(otbuild.Coverage1(5), nil, nil, 50)),
	)
	buf := NewBuffer(5)
	ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask)
	assert.Equal(t, glyphs(5), buf.Glyphs())
}

func TestApplyExtensionLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GSUB", single(7, otbuild.Extension(1, otbuild.SingleSubst1(otbuild.Coverage1(3), 1))))
	buf := NewBuffer(3)
	assert.True(t, ApplyLookup(face, ot.TagGSUB, 0, buf, GlobalMask))
	assert.Equal(t, glyphs(4), buf.Glyphs())
}

// --- GPOS ------------------------------------------------------------------

func TestApplySinglePositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GPOS", single(1,
		otbuild.SinglePos1(otbuild.Coverage1(1, 2), otbuild.XAdvance|otbuild.YPlacement, 12, -50)))
	buf := NewBuffer(1, 2, 3)
	assert.True(t, ApplyLookup(face, ot.TagGPOS, 0, buf, GlobalMask))
	assert.Equal(t, GlyphPosition{XAdvance: -50, YOffset: 12}, buf.Pos[0])
	assert.Equal(t, GlyphPosition{XAdvance: -50, YOffset: 12}, buf.Pos[1])
	assert.Equal(t, GlyphPosition{}, buf.Pos[2])
	assert.Equal(t, glyphs(1, 2, 3), buf.Glyphs())
}

func TestApplyPairPositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GPOS", single(2, otbuild.PairPos1(otbuild.Coverage1(1), otbuild.XAdvance, 0,
		[]otbuild.PairValue{{Second: 2, Value1: []int16{-80}}},
	)))
	buf := NewBuffer(1, 2, 1, 2, 1)
	assert.True(t, ApplyLookup(face, ot.TagGPOS, 0, buf, GlobalMask))
	assert.Equal(t, []int32{-80, 0, -80, 0, 0}, xAdvances(buf))
	//
	// class based, adjusting both glyphs
	face = lookupsFace(t, "GPOS", single(2, otbuild.PairPos2(otbuild.Coverage1(1, 2),
		otbuild.XAdvance, otbuild.XAdvance,
		otbuild.ClassDef1(1, 1, 1), otbuild.ClassDef1(3, 1), 2,
		[]int16{0, 0}, []int16{0, 0}, // class1 0
		[]int16{0, 0}, []int16{-10, 5}, // class1 1
	)))
	buf = NewBuffer(2, 3, 3)
	assert.True(t, ApplyLookup(face, ot.TagGPOS, 0, buf, GlobalMask))
	assert.Equal(t, []int32{-10, 5, 0}, xAdvances(buf))
}

func TestApplyContextPositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	face := lookupsFace(t, "GPOS",
		single(8, otbuild.ChainContext3(nil,
			[]*otbuild.Table{otbuild.Coverage1(1), otbuild.Coverage1(2)}, nil,
			otbuild.LookupRecord{SequenceIndex: 1, LookupIndex: 1},
		)),
		single(1, otbuild.SinglePos1(otbuild.Coverage1(2), otbuild.YPlacement, 7)),
	)
	buf := NewBuffer(2, 1, 2)
	assert.True(t, ApplyLookup(face, ot.TagGPOS, 0, buf, GlobalMask))
	assert.Equal(t, int32(0), buf.Pos[0].YOffset)
	assert.Equal(t, int32(7), buf.Pos[2].YOffset)
}

func xAdvances(buf *Buffer) []int32 {
	r := make([]int32, len(buf.Pos))
	for i, p := range buf.Pos {
		r[i] = p.XAdvance
	}
	return r
}
