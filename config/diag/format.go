package diag

import (
	"errors"
	"strconv"
	"strings"
)

// MaxSuggestions is the number of suggestions shown before the remainder is summarized.
const MaxSuggestions = 10

// Format renders one line (possibly spanning several physical lines when
// suggestions are attached) per decode error, in the order given.
func Format(errs []*DecodeError) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, formatOne(err))
	}

	return out
}

// FormatViolations renders violations sorted by field and message so the output
// does not depend on the order the constraint engine reported them in.
func FormatViolations(errs ValidationErrors) []string {
	sorted := errs.Sorted()

	out := make([]string, 0, len(sorted))
	for _, v := range sorted {
		out = append(out, v.String())
	}

	return out
}

// Render turns any error returned by the pipeline into display lines.
func Render(err error) []string {
	if err == nil {
		return nil
	}

	var decodeErrs DecodeErrors
	if errors.As(err, &decodeErrs) {
		return Format(decodeErrs)
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return Format([]*DecodeError{decodeErr})
	}

	var violations ValidationErrors
	if errors.As(err, &violations) {
		return FormatViolations(violations)
	}

	return []string{err.Error()}
}

func formatOne(e *DecodeError) string {
	var sb strings.Builder

	sb.WriteString(e.Summary)

	switch {
	case len(e.Path) > 0:
		sb.WriteString(" at: ")
		sb.WriteString(e.Path.String())
	case e.Location != nil:
		sb.WriteString(" at line: ")
		sb.WriteString(strconv.Itoa(e.Location.Line))
		sb.WriteString(", column: ")
		sb.WriteString(strconv.Itoa(e.Location.Column))
	}

	if e.Detail != "" {
		sb.WriteString("; ")
		sb.WriteString(e.Detail)
	}

	if len(e.Suggestions) > 0 {
		writeSuggestions(&sb, e.Suggestions)
	}

	return sb.String()
}

func writeSuggestions(sb *strings.Builder, suggestions []string) {
	sb.WriteString("\n    Did you mean?:")

	shown := min(len(suggestions), MaxSuggestions)
	for _, s := range suggestions[:shown] {
		sb.WriteString("\n      - ")
		sb.WriteString(s)
	}

	if rest := len(suggestions) - shown; rest > 0 {
		sb.WriteString("\n        [")
		sb.WriteString(strconv.Itoa(rest))
		sb.WriteString(" more]")
	}
}
