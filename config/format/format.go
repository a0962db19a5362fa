// Package format decides which document format a configuration file uses.
//
// The file extension is authoritative: ".json" (any case) selects JSON and
// everything else selects YAML. For ".json" paths the file content is inspected
// as a second check; a disagreeing or failed inspection is reported but never
// changes the result.
package format

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// Format is a supported document format.
type Format int

const (
	// YAML is the default format.
	YAML Format = iota
	// JSON is selected by a ".json" extension.
	JSON
)

// String returns the conventional upper-case format name.
func (f Format) String() string {
	if f == JSON {
		return "JSON"
	}

	return "YAML"
}

// Content is the advisory outcome of inspecting file content.
type Content int

const (
	// ContentUnknown means the content could not be inspected.
	ContentUnknown Content = iota
	// ContentJSON means the content is a valid JSON document.
	ContentJSON
	// ContentOther means the content is readable but not JSON.
	ContentOther
)

// String returns the content kind name.
func (c Content) String() string {
	switch c {
	case ContentJSON:
		return "json"
	case ContentOther:
		return "other"
	default:
		return "unknown"
	}
}

// FromExtension maps a path to a format using its extension only.
func FromExtension(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}

	return YAML
}

// Detector selects the format of configuration files.
type Detector struct {
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// NewDetector creates a Detector. A nil logger uses slog.Default().
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Detect returns the format for path. It never fails: unreadable or unexpected
// content leaves the extension-based choice in place and any real problem
// surfaces when the document is parsed.
func (d *Detector) Detect(path string) Format {
	f := FromExtension(path)
	if f != JSON {
		return f
	}

	content := d.Inspect(path)
	if content == ContentOther {
		d.logger.Warn("configuration file has a .json extension but does not look like JSON",
			slog.String("path", path))
	}

	return f
}

// Inspect reads the file content. I/O errors yield ContentUnknown.
func (d *Detector) Inspect(path string) Content {
	data, err := d.readFile(filepath.Clean(path))
	if err != nil {
		d.logger.Debug("content check skipped", slog.String("path", path), slog.Any("error", err))

		return ContentUnknown
	}

	return InspectBytes(data)
}

// InspectBytes classifies raw content.
func InspectBytes(data []byte) Content {
	if gjson.ValidBytes(data) {
		return ContentJSON
	}

	return ContentOther
}
