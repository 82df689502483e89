package ot

import (
	"fmt"
	"math"
)

// Limits of the sanitizer.
const (
	MaxNestingDepth     = 16         // Maximum nesting of sub-structures, e.g., Extension lookups
	sanitizeOpsFactor   = 8          // operation budget per byte of table data
	sanitizeOpsMin      = 16384      // minimum operation budget per table
	sanitizeOpsMax      = 0x3FFFFFFF // maximum operation budget per table
)

// SanitizeOptions configures the sanitization pass over a table.
// The zero value selects the defaults.
type SanitizeOptions struct {
	MaxOps   int // operation budget; 0 = derived from the table's size
	MaxDepth int // maximum nesting depth; 0 = MaxNestingDepth
}

// Checked arithmetic to prevent integer overflow. Counts and offsets in
// fonts are at most 32 bits wide, but we compute in int.

// checkedMulInt checks for overflow in multiplication of two non-negative integers.
func checkedMulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("negative operand: %d * %d", a, b)
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two non-negative integers.
func checkedAddInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("negative operand: %d + %d", a, b)
	}
	if a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// --- Sanitizer -------------------------------------------------------------

// sanitizer is the validation context for a single table.
//
// All checks are expressed relative to sub-segments of the table's data.
// A sub-segment always shares the backing array with the table data, thus
// the sanitizer is able to compute the table offset of any segment it is handed.
//
// Every check consumes one operation of a budget. If the budget is exhausted,
// the table is rejected. This bounds the time spent on fonts with huge
// or cyclic offset graphs.
type sanitizer struct {
	table    Tag
	data     binarySegm // the complete table
	fileOff  uint32     // offset of the table within the font file
	opsLeft  int
	depth    int
	maxDepth int
	failed   bool
	ec       *errorCollector
}

func newSanitizer(table Tag, data binarySegm, fileOff uint32, opts SanitizeOptions, ec *errorCollector) *sanitizer {
	ops := opts.MaxOps
	if ops <= 0 {
		ops = sanitizeOpsMin
		if n, err := checkedMulInt(len(data), sanitizeOpsFactor); err == nil {
			ops = max(n, sanitizeOpsMin)
		}
		ops = min(ops, sanitizeOpsMax)
	}
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = MaxNestingDepth
	}
	return &sanitizer{
		table:    table,
		data:     data,
		fileOff:  fileOff,
		opsLeft:  ops,
		maxDepth: depth,
		ec:       ec,
	}
}

// offsetOf returns the position of segment b within the table,
// or -1 if b is not a sub-segment of the table.
func (s *sanitizer) offsetOf(b binarySegm) int {
	off := cap(s.data) - cap(b)
	if b == nil || off < 0 || off > len(s.data) {
		return -1
	}
	return off
}

// fail records a critical error and returns false, to be used as
//
//	return s.fail(...)
func (s *sanitizer) fail(section string, at binarySegm, format string, args ...any) bool {
	s.failed = true
	var off uint32
	if o := s.offsetOf(at); o >= 0 {
		off = s.fileOff + uint32(o)
	}
	issue := fmt.Sprintf(format, args...)
	tracer().Infof("sanitize %s/%s: %s", s.table, section, issue)
	if s.ec != nil {
		s.ec.addError(s.table, section, issue, SeverityCritical, off)
	}
	return false
}

// warn records a problem which does not invalidate the table.
func (s *sanitizer) warn(at binarySegm, format string, args ...any) {
	var off uint32
	if o := s.offsetOf(at); o >= 0 {
		off = s.fileOff + uint32(o)
	}
	issue := fmt.Sprintf(format, args...)
	tracer().Debugf("sanitize %s: %s", s.table, issue)
	if s.ec != nil {
		s.ec.addWarning(s.table, issue, off)
	}
}

// op consumes one operation from the budget.
func (s *sanitizer) op(section string) bool {
	s.opsLeft--
	if s.opsLeft < 0 {
		if s.opsLeft == -1 {
			return s.fail(section, nil, "operation budget exhausted")
		}
		return false
	}
	return true
}

// check tests if n bytes at position at are within segment b.
func (s *sanitizer) check(section string, b binarySegm, at, n int) bool {
	if !s.op(section) {
		return false
	}
	if _, err := b.view(at, n); err != nil {
		return s.fail(section, b, "range [%d:+%d] exceeds %d bytes", at, n, len(b))
	}
	return true
}

// checkArray tests if an array of count records of size recSize, starting at
// position at, fits into segment b.
func (s *sanitizer) checkArray(section string, b binarySegm, at, count, recSize int) bool {
	n, err := checkedMulInt(count, recSize)
	if err != nil {
		return s.fail(section, b, "array size: %v", err)
	}
	if _, err := checkedAddInt(at, n); err != nil {
		return s.fail(section, b, "array end: %v", err)
	}
	return s.check(section, b, at, n)
}

// offset16 reads a 16-bit offset at position at in b and returns the
// target segment. A NULL offset is legal and yields a nil segment with true.
func (s *sanitizer) offset16(section string, b binarySegm, at int) (binarySegm, bool) {
	if !s.check(section, b, at, 2) {
		return nil, false
	}
	off := int(b.U16(at))
	if off == 0 {
		return nil, true
	}
	if off >= len(b) {
		return nil, s.fail(section, b, "offset %d beyond end of structure (size %d)", off, len(b))
	}
	return b[off:], true
}

// offset32 is the 32-bit variant of offset16.
func (s *sanitizer) offset32(section string, b binarySegm, at int) (binarySegm, bool) {
	if !s.check(section, b, at, 4) {
		return nil, false
	}
	off := uint64(b.U32(at))
	if off == 0 {
		return nil, true
	}
	if off >= uint64(len(b)) {
		return nil, s.fail(section, b, "offset %d beyond end of structure (size %d)", off, len(b))
	}
	return b[off:], true
}

// required16 is like offset16, but a NULL offset is a failure.
func (s *sanitizer) required16(section string, b binarySegm, at int) (binarySegm, bool) {
	link, ok := s.offset16(section, b, at)
	if ok && link == nil {
		return nil, s.fail(section, b, "required offset at %d is NULL", at)
	}
	return link, ok
}

// enter descends one nesting level. Every successful call must be paired
// with a call to leave.
func (s *sanitizer) enter(section string) bool {
	if s.depth >= s.maxDepth {
		return s.fail(section, nil, "nesting too deep (> %d)", s.maxDepth)
	}
	s.depth++
	return true
}

func (s *sanitizer) leave() {
	s.depth--
}
