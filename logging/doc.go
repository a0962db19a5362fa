// Package logging builds the structured slog loggers used by the configuration
// loader and the confcheck command. Output is JSON by default, text on request.
package logging
