/*
Package ot provides sanitized, read-only views onto the OpenType tables
needed for text layout and color glyphs: GSUB, GPOS, GDEF and CPAL.

Fonts are untrusted binary data. Before any field of a table is interpreted,
package ot runs a sanitization pass over the table's bytes. The sanitizer
checks that every structure fits into the table, that every offset resolves
to a location within the table, and that counts indexing into other arrays
are consistent. A table failing this pass is replaced by an empty table, so
clients never have to distinguish between "table absent" and "table broken":

	face, err := ot.NewFace(ot.NewBlob(fontBytes))
	...
	cpal := face.CPAL()        // never nil
	n := cpal.PaletteCount()   // 0 if the font has no (valid) CPAL table

Accessors of views never panic and never return errors. Out-of-range
indices result in well-defined sentinel values, e.g. NotFoundIndex or
the zero Color.

Views reference the font's byte blob, they never copy it. A Face and all views
derived from it are safe for concurrent readers as long as the blob is not
mutated.

Package ot will not apply layout lookups to glyph sequences; this is the
task of sister package otlayout.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

// Code comments often will cite passages from the
// OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
