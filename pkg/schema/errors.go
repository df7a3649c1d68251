package schema

import (
	"fmt"
	"strings"
)

// Severity classifies a validation issue.
type Severity int

// Severity levels, ordered from most to least severe.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// ParseSeverity converts a severity name to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	}
	return SeverityError, false
}

// Issue is a single semantic validation finding. Path addresses the
// offending field using index notation, e.g. "layout[0].style.position".
type Issue struct {
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Path, i.Severity, i.Message)
}

// Issues is an ordered list of validation findings.
type Issues []Issue

// HasErrors reports whether any issue has error severity.
func (is Issues) HasErrors() bool {
	for _, i := range is {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues.
func (is Issues) Errors() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns only the warning-severity issues.
func (is Issues) Warnings() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// ParseError is a YAML syntax failure. It is fatal to validation and
// distinct from semantic Issues: nothing can be checked in a document
// that does not parse.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		if e.Column > 0 {
			return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
		}
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ValidationError wraps a non-empty issue list for callers that need a
// single error value, e.g. a save path that must refuse the document.
type ValidationError struct {
	Issues Issues
}

func (e *ValidationError) Error() string {
	errs := e.Issues.Errors()
	if len(errs) == 1 {
		return fmt.Sprintf("validation failed: %s", errs[0])
	}
	return fmt.Sprintf("validation failed with %d errors", len(errs))
}
