package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Output formats understood by NewLogger.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// LoggerConfig holds configuration for the logger. It can itself be loaded
// from a configuration file section.
type LoggerConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN WARNING ERROR debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// NewLogger creates a new slog.Logger writing to w. The level defaults to INFO
// and the format to JSON when empty or unrecognized.
func NewLogger(config LoggerConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       ParseLevel(config.Level),
		ReplaceAttr: nil,
	}

	if strings.EqualFold(config.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps DEBUG, INFO, WARN (or WARNING) and ERROR, in any case, to a
// slog level. Anything else is INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
