package otlayout

import (
	"testing"

	"github.com/npillmayer/otview/internal/otbuild"
	"github.com/npillmayer/otview/ot"
	"github.com/stretchr/testify/require"
)

// testFace creates a face from synthetic tables. A 'maxp' table is added if
// missing.
func testFace(t *testing.T, tables map[string][]byte) *ot.Face {
	t.Helper()
	if _, ok := tables["maxp"]; !ok {
		tables["maxp"] = otbuild.Maxp(500)
	}
	face, err := ot.NewFace(ot.NewBlob(otbuild.Font(tables)))
	require.NoError(t, err, "cannot create face from synthetic font")
	return face
}

// lookupsFace creates a face with a GSUB or GPOS table holding lookups only.
func lookupsFace(t *testing.T, table string, lookups ...otbuild.Lookup) *ot.Face {
	t.Helper()
	layout := otbuild.Layout{Lookups: lookups}
	return testFace(t, map[string][]byte{table: layout.Bytes()})
}

func single(ltype uint16, subtables ...*otbuild.Table) otbuild.Lookup {
	return otbuild.Lookup{Type: ltype, Subtables: subtables}
}

func glyphs(gg ...ot.GlyphIndex) []ot.GlyphIndex {
	return gg
}
