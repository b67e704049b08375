package orrery

import "strings"

// FormatError reports a syntactic or shape failure while decoding a
// scenario document: malformed JSON/TOML, a field of the wrong type, and
// the like. It is distinct from ValidationError so callers can tell a
// broken file from a well-formed file with bad values.
type FormatError struct {
	Format string // "json" or "toml"
	Err    error
}

func (e *FormatError) Error() string {
	return "malformed " + e.Format + " scenario: " + e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ValidationError collects the semantic issues found in a decoded scenario,
// so a failed load can report every bad field at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid scenario: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "scenario validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}
