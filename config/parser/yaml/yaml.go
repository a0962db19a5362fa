package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/0xalexb/hjarta-config/config/diag"

	"github.com/goccy/go-yaml"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// ErrPathNotFound is returned when the specified section is not found in the YAML document.
var ErrPathNotFound = errors.New("path not found")

// FormatName is the name used in diagnostics.
const FormatName = "YAML"

// Parser implements config.Parser for YAML data.
// It uses goccy/go-yaml PathString for section navigation.
type Parser struct{}

// NewParser creates a new YAML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses YAML data into a generic document tree.
// The section parameter is a colon-separated navigation path; empty parses the whole document.
// Failures are returned as *diag.DecodeError.
func (p *Parser) Parse(data []byte, section string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &diag.DecodeError{
			Stage:   diag.StageParse,
			Summary: diag.MalformedSummary(FormatName),
			Detail:  ErrEmptyData.Error(),
			Err:     ErrEmptyData,
		}
	}

	var doc any

	if section == "" {
		err := yaml.Unmarshal(data, &doc)
		if err != nil {
			return nil, syntaxError(err)
		}

		return doc, nil
	}

	pathObj, err := yaml.PathString(convertToYAMLPath(section))
	if err != nil {
		return nil, &diag.DecodeError{
			Stage:   diag.StageMapping,
			Summary: diag.SummaryMapping,
			Detail:  fmt.Sprintf("invalid section %q", section),
			Err:     err,
		}
	}

	err = pathObj.Read(bytes.NewReader(data), &doc)
	if err != nil {
		if isKeyNotFoundError(err) {
			return nil, &diag.DecodeError{
				Stage:   diag.StageMapping,
				Summary: diag.SummaryMapping,
				Path:    diag.ParsePath(section),
				Detail:  ErrPathNotFound.Error(),
				Err:     fmt.Errorf("%w: %s", ErrPathNotFound, section),
			}
		}

		var yerr yaml.Error
		if errors.As(err, &yerr) {
			return nil, syntaxError(err)
		}

		return nil, &diag.DecodeError{
			Stage:   diag.StageMapping,
			Summary: diag.SummaryMapping,
			Path:    diag.ParsePath(section),
			Detail:  err.Error(),
			Err:     err,
		}
	}

	return doc, nil
}

// Marshal encodes a document tree as block-style YAML.
func Marshal(doc any) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	return out, nil
}

func syntaxError(err error) *diag.DecodeError {
	decodeErr := &diag.DecodeError{
		Stage:   diag.StageParse,
		Summary: diag.MalformedSummary(FormatName),
		Detail:  err.Error(),
		Err:     err,
	}

	var yerr yaml.Error
	if errors.As(err, &yerr) {
		decodeErr.Detail = yerr.GetMessage()

		if tk := yerr.GetToken(); tk != nil && tk.Position != nil {
			decodeErr.Location = &diag.Location{Line: tk.Position.Line, Column: tk.Position.Column}
		}
	}

	return decodeErr
}

// convertToYAMLPath converts a colon-separated path to goccy/go-yaml PathString format.
// Examples:
//   - "key" -> "$.key"
//   - "api:permissions" -> "$.api.permissions"
func convertToYAMLPath(path string) string {
	parts := strings.Split(path, ":")

	return "$." + strings.Join(parts, ".")
}

// isKeyNotFoundError checks if the error indicates a key was not found.
func isKeyNotFoundError(err error) bool {
	return yaml.IsNotFoundNodeError(err)
}
