package ot

import "fmt"

// ErrorSeverity represents the severity level of a problem found in a font.
type ErrorSeverity int

const (
	// SeverityCritical indicates an error which made a table unusable. The table has
	// been replaced by an empty one.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that has been worked around,
	// e.g. by dropping a table record.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents a problem encountered while sanitizing a font.
// Errors are accumulated by a Face and can be inspected at any time.
type FontError struct {
	Table    Tag           // The OpenType table where the error occurred (e.g., "GSUB", "CPAL")
	Section  string        // Specific section within the table (e.g., "LookupList", "ColorRecords")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the font file where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// FontWarning represents a non-critical issue, e.g. a table directory which is
// not sorted by tag.
type FontWarning struct {
	Table  Tag    // The OpenType table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset in the font file where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings.
// It is not safe for concurrent use; Face guards it with a mutex.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// merge appends all entries of other to ec.
func (ec *errorCollector) merge(other *errorCollector) {
	ec.errors = append(ec.errors, other.errors...)
	ec.warnings = append(ec.warnings, other.warnings...)
}

func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

func (ec *errorCollector) hasWarnings() bool {
	return len(ec.warnings) > 0
}

func (ec *errorCollector) criticalErrors() []FontError {
	var critical []FontError
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}

func (ec *errorCollector) hasCriticalErrors() bool {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// SanitizeResult is the outcome of sanitizing a single table.
type SanitizeResult int

const (
	Skipped SanitizeResult = iota // table absent or of a type this package does not check
	Passed                        // table is structurally sound
	Failed                        // table has been rejected and is treated as empty
)

func (r SanitizeResult) String() string {
	switch r {
	case Passed:
		return "PASSED"
	case Failed:
		return "FAILED"
	}
	return "SKIPPED"
}
