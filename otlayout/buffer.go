package otlayout

import (
	"slices"

	"github.com/npillmayer/otview/ot"
)

// GlobalMask is the mask bit every glyph of a fresh buffer carries. Lookups of
// features applying to all glyphs use it as their lookup mask.
const GlobalMask uint32 = 1

// GlyphInfo holds a glyph of a Buffer together with the properties lookups
// use for matching.
type GlyphInfo struct {
	Glyph        ot.GlyphIndex
	Mask         uint32        // feature mask bits, see Map.FeatureMask
	Cluster      int           // index of the input glyph this glyph originates from
	Props        ot.GlyphProps // GDEF glyph properties
	LigComponent int           // component of a ligature a mark attaches to, or position within a multiple substitution
}

// GlyphPosition holds the positioning adjustments of a glyph, in design units.
type GlyphPosition struct {
	XAdvance int32
	YAdvance int32
	XOffset  int32
	YOffset  int32
}

// Buffer is a glyph sequence lookups are applied to.
//
// Idx is the cursor of the current lookup pass. Forward substitution passes
// copy glyphs to an output accumulator while advancing the cursor, and swap
// the accumulator back into Info when the pass is done. Positioning passes
// and backward passes work in place.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	Info []GlyphInfo
	Pos  []GlyphPosition
	Idx  int

	outInfo    []GlyphInfo
	haveOutput bool
	opsLeft    int
}

// NewBuffer creates a buffer for a glyph sequence. Every glyph carries
// GlobalMask and a cluster value equal to its position.
func NewBuffer(glyphs ...ot.GlyphIndex) *Buffer {
	buf := &Buffer{
		Info: make([]GlyphInfo, len(glyphs)),
		Pos:  make([]GlyphPosition, len(glyphs)),
	}
	for i, g := range glyphs {
		buf.Info[i] = GlyphInfo{Glyph: g, Mask: GlobalMask, Cluster: i}
	}
	return buf
}

// Len returns the number of glyphs in the buffer.
func (buf *Buffer) Len() int {
	return len(buf.Info)
}

// Glyphs returns the glyph indices of the buffer.
func (buf *Buffer) Glyphs() []ot.GlyphIndex {
	r := make([]ot.GlyphIndex, len(buf.Info))
	for i, info := range buf.Info {
		r[i] = info.Glyph
	}
	return r
}

// Cur returns the glyph at the cursor.
func (buf *Buffer) Cur() *GlyphInfo {
	return &buf.Info[buf.Idx]
}

// SetGlyphProps assigns the GDEF glyph properties of face to all glyphs.
func (buf *Buffer) SetGlyphProps(face *ot.Face) {
	gdef := GDEF(face)
	for i := range buf.Info {
		buf.Info[i].Props = gdef.GlyphProps(buf.Info[i].Glyph)
	}
}

// SetMasks sets the mask bits selected by mask to value for all glyphs with
// clusters in [clusterStart, clusterEnd).
func (buf *Buffer) SetMasks(value, mask uint32, clusterStart, clusterEnd int) {
	if mask == 0 {
		return
	}
	for i := range buf.Info {
		if c := buf.Info[i].Cluster; c >= clusterStart && c < clusterEnd {
			buf.Info[i].Mask = buf.Info[i].Mask&^mask | value&mask
		}
	}
}

// ResetMasks sets the mask of every glyph to mask.
func (buf *Buffer) ResetMasks(mask uint32) {
	for i := range buf.Info {
		buf.Info[i].Mask = mask
	}
}

// --- Output accumulator ----------------------------------------------------

// ClearOutput starts a new output accumulator.
func (buf *Buffer) ClearOutput() {
	buf.haveOutput = true
	buf.outInfo = buf.outInfo[:0]
}

// RemoveOutput drops the output accumulator; subsequent operations work in place.
func (buf *Buffer) RemoveOutput() {
	buf.haveOutput = false
	buf.outInfo = buf.outInfo[:0]
}

// SwapBuffers copies glyphs not yet visited to the output accumulator and
// makes the accumulator the buffer's content. The cursor is reset to 0.
func (buf *Buffer) SwapBuffers() {
	if buf.haveOutput {
		buf.outInfo = append(buf.outInfo, buf.Info[buf.Idx:]...)
		buf.Info, buf.outInfo = buf.outInfo, buf.Info[:0]
		buf.haveOutput = false
	}
	buf.Idx = 0
	if len(buf.Pos) != len(buf.Info) {
		buf.Pos = make([]GlyphPosition, len(buf.Info))
	}
}

// NextGlyph copies the glyph at the cursor to the output and advances the cursor.
func (buf *Buffer) NextGlyph() {
	if buf.haveOutput {
		buf.outInfo = append(buf.outInfo, buf.Info[buf.Idx])
	}
	buf.Idx++
}

// ReplaceGlyph replaces the glyph at the cursor by g and advances the cursor.
func (buf *Buffer) ReplaceGlyph(g ot.GlyphIndex) {
	if !buf.haveOutput {
		buf.Info[buf.Idx].Glyph = g
		buf.Idx++
		return
	}
	info := buf.Info[buf.Idx]
	info.Glyph = g
	buf.outInfo = append(buf.outInfo, info)
	buf.Idx++
}

// OutputGlyph appends g, with the properties of the glyph at the cursor, to
// the output without advancing the cursor.
func (buf *Buffer) OutputGlyph(g ot.GlyphIndex) *GlyphInfo {
	info := buf.Info[buf.Idx]
	info.Glyph = g
	buf.outInfo = append(buf.outInfo, info)
	return &buf.outInfo[len(buf.outInfo)-1]
}

// ReplaceGlyphs replaces n glyphs starting at the cursor by glyphs, merging
// their clusters, and advances the cursor by n.
func (buf *Buffer) ReplaceGlyphs(n int, glyphs []ot.GlyphIndex) {
	n = min(n, len(buf.Info)-buf.Idx)
	if n <= 0 {
		return
	}
	cluster := buf.mergeClusters(buf.Idx, buf.Idx+n)
	orig := buf.Info[buf.Idx]
	orig.Cluster = cluster
	for _, g := range glyphs {
		info := orig
		info.Glyph = g
		buf.outInfo = append(buf.outInfo, info)
	}
	buf.Idx += n
}

// skipGlyph drops the glyph at the cursor from the output.
func (buf *Buffer) skipGlyph() {
	buf.Idx++
}

// mergeClusters sets the cluster of glyphs [start, end) to their minimum
// cluster value and returns it.
func (buf *Buffer) mergeClusters(start, end int) int {
	cluster := buf.Info[start].Cluster
	for i := start + 1; i < end; i++ {
		cluster = min(cluster, buf.Info[i].Cluster)
	}
	for i := start; i < end; i++ {
		buf.Info[i].Cluster = cluster
	}
	return cluster
}

// backtrackLen is the number of glyphs before the cursor, i.e. the length of
// the output if there is one.
func (buf *Buffer) backtrackLen() int {
	if buf.haveOutput {
		return len(buf.outInfo)
	}
	return buf.Idx
}

// lookaheadLen is the number of glyphs at and after the cursor.
func (buf *Buffer) lookaheadLen() int {
	return len(buf.Info) - buf.Idx
}

// backtrack returns the glyphs before the cursor.
func (buf *Buffer) backtrack() []GlyphInfo {
	if buf.haveOutput {
		return buf.outInfo
	}
	return buf.Info[:buf.Idx]
}

// moveTo moves the cursor to position i, counting glyphs in output plus
// unvisited glyphs. With an output accumulator, glyphs are shifted between
// output and input as necessary.
func (buf *Buffer) moveTo(i int) bool {
	if !buf.haveOutput {
		if i < 0 || i > len(buf.Info) {
			return false
		}
		buf.Idx = i
		return true
	}
	out := len(buf.outInfo)
	if i < 0 || i > out+buf.lookaheadLen() {
		return false
	}
	if out < i {
		count := i - out
		buf.outInfo = append(buf.outInfo, buf.Info[buf.Idx:buf.Idx+count]...)
		buf.Idx += count
	} else if out > i {
		count := out - i
		if buf.Idx >= count {
			buf.Idx -= count
			copy(buf.Info[buf.Idx:], buf.outInfo[i:])
		} else {
			buf.Info = append(slices.Clone(buf.outInfo[i:]), buf.Info[buf.Idx:]...)
			buf.Idx = 0
		}
		buf.outInfo = buf.outInfo[:i]
	}
	return true
}
