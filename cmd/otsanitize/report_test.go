package main

import (
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gsub := otbuild.Layout{Features: []otbuild.Feature{{Tag: "liga"}}}
	font := otbuild.Font(map[string][]byte{
		"GSUB": gsub.Bytes(),
		"GPOS": {0, 1, 0, 0},
		"maxp": otbuild.Maxp(10),
	})
	face, err := ot.NewFace(ot.NewBlob(font))
	require.NoError(t, err)
	r := checkFace(face)
	assert.Equal(t, 1, r.passed)
	assert.Equal(t, 1, r.failed)
	assert.Equal(t, 1, r.skipped)
	require.Len(t, r.tables, 3)
	assert.Equal(t, ot.T("GPOS"), r.tables[0].tag)
	assert.Equal(t, ot.Failed, r.tables[0].result)
	assert.Equal(t, ot.Skipped, r.tables[2].result, "maxp is not inspected")
	//
	var total report
	total.add(r)
	total.add(r)
	assert.Equal(t, 2, total.failed)
	assert.Empty(t, total.tables)
}

func TestTraceLevel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	assert.True(t, setTraceLevel("Debug"))
	assert.False(t, setTraceLevel("Verbose"))
	assert.Equal(t, "TrueType", flavorName(ot.FlavorTrueType))
	assert.Equal(t, "DFLT latn", tagList([]ot.Tag{ot.TagDFLT, ot.TagLatn}))
}
