// Package config loads typed configuration from YAML or JSON files, in-memory
// maps or the empty document, merges partial updates into existing values and
// validates the result.
//
// The package composes small extension points:
//   - Parser: turns raw data into a document tree, with section navigation
//   - DataFetcher: retrieves raw config data (file, static bytes, etc.)
//   - Defaulter: applies default values after decoding
//   - Validator: validates config after defaults, next to `validate` struct tags
//
// # Loading
//
// A Loader is created per target type and chooses the parser from the file
// extension (".json" selects JSON, anything else YAML):
//
//	loader := config.New[AppConfig](config.WithFailOnUnknown(true))
//	cfg, err := loader.Load(config.File("application.yaml"))
//
// Decode failures are diag.DecodeErrors carrying the field path, the line and
// column for syntax errors, and "Did you mean?" suggestions for unknown
// fields. An unreadable file is a *diag.SourceAccessError instead.
// diag.Render turns any of them into printable lines.
//
// # Partial updates
//
// Build overlays a map onto a copy of an existing value and leaves the
// original untouched. Merge writes into the existing value and merges nested
// objects field by field, so updating address.city keeps address.street.
// In both, a sequence in the map replaces the existing sequence.
//
// # Path Navigation
//
// WithSection targets a section within configuration files. Paths use colon
// (:) as the separator:
//
//	"api:permissions"           -> config["api"]["permissions"]
//	"database:connection"       -> config["database"]["connection"]
//	""                          -> entire document
//
// # Validation
//
// Validation is independent of decoding: Validate lists every violation and
// IsValid folds them into one diag.ValidationErrors. LoadValid and Provider
// reject invalid configuration.
package config
