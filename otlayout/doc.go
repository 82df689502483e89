/*
Package otlayout provides queries on and application of OpenType layout tables.

The query part resolves script, language system, feature and lookup indices
by tag, with the fallback rules OpenType clients commonly apply ('DFLT',
'dflt', 'latn'). All enumerations follow a paged pattern: callers supply a
start index and a buffer, and receive the total number of entries plus the
number of entries copied.

The application part runs lookups over a glyph Buffer: forward passes for
regular lookups (GSUB with an output accumulator, GPOS in place), backward
passes for reverse chaining lookups, and staged lookup Maps with pause
callbacks between stages. It further computes glyph closures and collects
the glyphs a lookup may touch. Shaping itself (normalization, reordering,
mark attachment by anchors) is left to clients.

All functions operate on an ot.Face and work with sanitized tables only.
A missing or rejected table behaves like an empty one.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.layout'
func tracer() tracing.Trace {
	return tracing.Select("font.layout")
}
