package diag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Stage identifies where in the pipeline a decode failure happened.
type Stage int

const (
	// StageParse means the document text is syntactically invalid.
	StageParse Stage = iota + 1
	// StageMapping is a structural failure that is neither a type mismatch nor an unknown field.
	StageMapping
	// StageTypeMismatch means a value cannot be coerced to the declared field type.
	StageTypeMismatch
	// StageUnknownField means the document names a field the target does not declare.
	StageUnknownField
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageMapping:
		return "mapping"
	case StageTypeMismatch:
		return "type-mismatch"
	case StageUnknownField:
		return "unknown-field"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Summaries used for the first segment of a rendered decode error.
const (
	SummaryDefaultConfig = "Malformed default config"
	SummaryUnknownField  = "Unrecognized field"
	SummaryTypeMismatch  = "Incorrect type of value"
	SummaryMapping       = "Failed to parse configuration"
)

// MalformedSummary returns the parse-stage summary for a document format, e.g. "Malformed YAML".
func MalformedSummary(format string) string {
	return "Malformed " + format
}

// ErrEmptyErrors is returned when an empty DecodeErrors list is used as an error.
var ErrEmptyErrors = errors.New("no decode errors")

// Location is a 1-based position in the source text.
type Location struct {
	Line   int
	Column int
}

// DecodeError describes a single failure to turn a document into a typed value.
type DecodeError struct {
	Stage       Stage
	Summary     string
	Path        Path
	Location    *Location
	Detail      string
	Suggestions []string
	// Source is the file the document came from, empty for in-memory sources.
	Source string
	Err    error
}

// Error renders the error the same way Format does.
func (e *DecodeError) Error() string {
	return formatOne(e)
}

// Unwrap returns the low-level cause, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeErrors is a non-empty, ordered list of decode failures for one decode attempt.
type DecodeErrors []*DecodeError

// Error joins the rendered errors with newlines.
func (errs DecodeErrors) Error() string {
	if len(errs) == 0 {
		return ErrEmptyErrors.Error()
	}

	return strings.Join(Format(errs), "\n")
}

// Unwrap exposes every decode error to errors.Is and errors.As.
func (errs DecodeErrors) Unwrap() []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		out = append(out, err)
	}

	return out
}

// First returns the first decode error or nil.
func (errs DecodeErrors) First() *DecodeError {
	if len(errs) == 0 {
		return nil
	}

	return errs[0]
}

// SourceAccessError reports that a configuration file could not be read.
// It is kept apart from DecodeErrors so callers can tell I/O failures from bad content.
type SourceAccessError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SourceAccessError) Error() string {
	return fmt.Sprintf("cannot access configuration source %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *SourceAccessError) Unwrap() error {
	return e.Err
}

// ValidationError is a single constraint violation.
type ValidationError struct {
	Field   string
	Message string
}

// String renders "<field> <message>", or just the message for instance-level rules.
func (v ValidationError) String() string {
	if v.Field == "" {
		return v.Message
	}

	return v.Field + " " + v.Message
}

// ValidationErrors is the aggregate result of validating an instance.
// An empty list means the instance is valid.
type ValidationErrors []ValidationError

// Error renders the sorted violations separated by "; ".
func (errs ValidationErrors) Error() string {
	return "invalid configuration: " + strings.Join(FormatViolations(errs), "; ")
}

// Sorted returns a copy ordered by field then message, with exact duplicates removed.
func (errs ValidationErrors) Sorted() ValidationErrors {
	out := slices.Clone(errs)
	slices.SortStableFunc(out, func(a, b ValidationError) int {
		return cmp.Or(cmp.Compare(a.Field, b.Field), cmp.Compare(a.Message, b.Message))
	})

	return slices.Compact(out)
}
