// Package json provides the JSON document parser for the config package.
//
// Numbers are kept as json.Number so integer fields receive exact values.
// Syntax errors carry the line and column computed from the decoder offset.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/0xalexb/hjarta-config/config/diag"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// ErrPathNotFound is returned when the specified section is not found in the JSON document.
var ErrPathNotFound = errors.New("path not found")

// ErrTrailingData is returned when a valid document is followed by more content.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// FormatName is the name used in diagnostics.
const FormatName = "JSON"

// Parser implements config.Parser for JSON data.
type Parser struct{}

// NewParser creates a new JSON parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses JSON data into a generic document tree and navigates to section
// (colon-separated, empty for the whole document).
func (p *Parser) Parse(data []byte, section string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &diag.DecodeError{
			Stage:   diag.StageParse,
			Summary: diag.MalformedSummary(FormatName),
			Detail:  ErrEmptyData.Error(),
			Err:     ErrEmptyData,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any

	err := dec.Decode(&doc)
	if err != nil {
		return nil, syntaxError(data, err, dec.InputOffset())
	}

	end := dec.InputOffset()
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		rest := data[end:]
		start := end + int64(len(rest)-len(bytes.TrimLeft(rest, " \t\r\n")))

		return nil, syntaxError(data, ErrTrailingData, start+1)
	}

	return navigate(doc, section)
}

// Marshal encodes a document tree as indented JSON.
func Marshal(doc any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	return append(out, '\n'), nil
}

func navigate(doc any, section string) (any, error) {
	if section == "" {
		return doc, nil
	}

	current := doc

	for _, key := range strings.Split(section, ":") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, notFound(section)
		}

		current, ok = obj[key]
		if !ok {
			return nil, notFound(section)
		}
	}

	return current, nil
}

func notFound(section string) *diag.DecodeError {
	return &diag.DecodeError{
		Stage:   diag.StageMapping,
		Summary: diag.SummaryMapping,
		Path:    diag.ParsePath(section),
		Detail:  ErrPathNotFound.Error(),
		Err:     fmt.Errorf("%w: %s", ErrPathNotFound, section),
	}
}

func syntaxError(data []byte, err error, fallbackOffset int64) *diag.DecodeError {
	offset := fallbackOffset

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		offset = int64(len(data))
	}

	return &diag.DecodeError{
		Stage:    diag.StageParse,
		Summary:  diag.MalformedSummary(FormatName),
		Location: locate(data, offset),
		Detail:   err.Error(),
		Err:      err,
	}
}

// locate converts the decoder offset (bytes consumed up to and including the
// offending byte) into a 1-based line and column.
func locate(data []byte, offset int64) *diag.Location {
	pos := int(min(max(offset-1, 0), int64(len(data))))
	head := data[:pos]

	return &diag.Location{
		Line:   bytes.Count(head, []byte{'\n'}) + 1,
		Column: pos - bytes.LastIndexByte(head, '\n'),
	}
}
