/*
Package otquery answers font-level questions on top of packages ot and otlayout.

It resolves 'name' table entries for color palettes and feature UI labels, and
summarizes the contents of a face, as needed by font pickers, diagnostics and
command line tools. All queries operate on sanitized tables; data which is
missing or malformed results in empty answers, never in errors.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.layout'
func tracer() tracing.Trace {
	return tracing.Select("font.layout")
}
