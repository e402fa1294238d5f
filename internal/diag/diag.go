// Package diag provides structured diagnostics for the geometry pipeline.
// Errors block geometry generation for the affected floor; warnings never do.
// Diagnostics are returned as data alongside geometry rather than thrown past
// the pipeline boundary, so callers can render banners, gutter markers, or CI
// failures deterministically.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic as blocking or advisory.
type Severity string

// Diagnostic severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the class of a diagnostic.
type Code string

// Structural errors (block geometry generation for the floor).
const (
	CodeCycle            Code = "placement-cycle"
	CodeMissingReference Code = "missing-reference"
	CodeOpeningOverlap   Code = "opening-overlap"
	CodeDuplicateOpening Code = "duplicate-opening"
)

// Advisory warnings (geometry generation proceeds).
const (
	CodeRoomOverlap  Code = "room-overlap"
	CodeMixedUnits   Code = "mixed-units"
	CodeWallMismatch Code = "wall-mismatch"
	CodeCSGFallback  Code = "csg-fallback"
)

// Diagnostic is a single structured error or warning.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	// Floor names the floor the diagnostic belongs to. Empty for
	// document-level diagnostics such as mixed unit systems.
	Floor string `json:"floor,omitempty"`
	// Subjects names every implicated entity (room names, connection
	// endpoints) so the diagnostic is actionable without re-deriving context.
	Subjects []string `json:"subjects,omitempty"`
	Message  string   `json:"message"`
}

// String renders the diagnostic in "severity code: message" form.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Severity))
	b.WriteString(" ")
	b.WriteString(string(d.Code))
	if d.Floor != "" {
		fmt.Fprintf(&b, " [floor %s]", d.Floor)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// List accumulates diagnostics across pipeline stages.
// The zero value is ready to use.
type List struct {
	items []Diagnostic
}

// Error appends a blocking diagnostic.
func (l *List) Error(code Code, floor string, subjects []string, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Floor:    floor,
		Subjects: subjects,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warn appends an advisory diagnostic.
func (l *List) Warn(code Code, floor string, subjects []string, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Floor:    floor,
		Subjects: subjects,
		Message:  fmt.Sprintf(format, args...),
	})
}

// All returns every accumulated diagnostic in insertion order.
func (l *List) All() []Diagnostic {
	return l.items
}

// Errors returns only the blocking diagnostics.
func (l *List) Errors() []Diagnostic {
	return l.filter(SeverityError)
}

// Warnings returns only the advisory diagnostics.
func (l *List) Warnings() []Diagnostic {
	return l.filter(SeverityWarning)
}

// HasErrors reports whether any blocking diagnostic has been recorded.
func (l *List) HasErrors() bool {
	return len(l.Errors()) > 0
}

// FloorHasErrors reports whether any blocking diagnostic names the given floor.
func (l *List) FloorHasErrors(floor string) bool {
	for _, d := range l.items {
		if d.Severity == SeverityError && d.Floor == floor {
			return true
		}
	}
	return false
}

// Merge appends all diagnostics from other.
func (l *List) Merge(other *List) {
	l.items = append(l.items, other.items...)
}

func (l *List) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
