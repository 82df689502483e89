/*
Package otview gives read-only, sanitized views onto OpenType fonts.

The heavy lifting happens in sub-packages:

▪︎ ot validates the layout and color tables of a font (GSUB, GPOS, GDEF,
CPAL) and provides typed views onto them.

▪︎ otlayout queries scripts, language systems, features and lookups, and
applies lookups to glyph buffers.

▪︎ otquery answers font-level questions such as palette names and feature
labels.

This package bundles the most common entry points for clients which do not
need fine-grained control.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otview

import (
	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/otview/otlayout"
	"github.com/npillmayer/otview/otquery"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/language"
)

// FromBinary creates a face from raw OpenType bytes.
//
// The input may be a single font or a font collection; for collections,
// option ot.WithFaceIndex selects the face. data must not change afterwards,
// as the face does not copy it.
func FromBinary(data []byte, opts ...ot.FaceOption) (*ot.Face, error) {
	return ot.NewFace(ot.NewBlob(data), opts...)
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records cannot be
// decoded by the current name-table reader.
func FamilyName(face *ot.Face) (family, subfamily string) {
	family, _ = otquery.Name(face, sfnt.NameIDFamily)
	subfamily, _ = otquery.Name(face, sfnt.NameIDSubfamily)
	return
}

// ApplyFeatures runs the GSUB and GPOS lookups of features over a sequence
// of glyphs, with script and language system selected for lang.
//
// All features are applied globally, i.e., to every glyph. Clients who need
// features for parts of a run, alternate selection or pauses between stages,
// need to use otlayout.MapBuilder directly. If face is nil or glyphs is empty,
// ApplyFeatures returns nil.
func ApplyFeatures(face *ot.Face, lang language.Tag, glyphs []ot.GlyphIndex, features ...ot.Tag) *otlayout.Buffer {
	if face == nil || len(glyphs) == 0 {
		return nil
	}
	mb := otlayout.NewMapBuilder(face, lang)
	for _, feature := range features {
		mb.EnableFeature(feature)
	}
	m := mb.Compile()
	buf := otlayout.NewBuffer(glyphs...)
	buf.ResetMasks(m.GlobalMask())
	m.Substitute(face, buf)
	m.Position(face, buf)
	return buf
}
