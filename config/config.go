package config

import (
	"fmt"

	"github.com/0xalexb/hjarta-config/config/validate"
)

// Parser turns raw configuration data into a generic document tree.
//
// The section parameter specifies a navigation path within the configuration data
// using colon (:) as the separator for nested keys. For example:
//   - "api:permissions" navigates to config["api"]["permissions"]
//   - "database:connection:timeout" navigates three levels deep
//   - "" (empty section) means parse the entire document
//
// Failures are *diag.DecodeError values. See config/parser/yaml and
// config/parser/json for the two implementations.
type Parser interface {
	Parse(data []byte, section string) (any, error)
}

// DataFetcher defines an interface for reading configuration data.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// Validator is implemented by configuration types that check themselves in
// addition to their `validate` tags.
type Validator = validate.SelfValidator

// Defaulter defines an interface for setting default values in configuration structures.
type Defaulter interface {
	SetDefaults() (changed bool)
}

// Provider returns a function that reads, parses, sets defaults, and validates configuration data.
// It fits fx.Provide when a Parser and a DataFetcher are available in the container.
func Provider[T any](opts ...Option) func(Parser, DataFetcher) (*T, error) {
	loader := New[T](opts...)

	return func(parser Parser, dataSourcer DataFetcher) (*T, error) {
		data, err := dataSourcer.Fetch()
		if err != nil {
			return nil, fmt.Errorf("reading data error: %w", err)
		}

		target, err := loader.decode(parser, data, loader.opts.Section, "")
		if err != nil {
			return nil, fmt.Errorf("parsing error: %w", err)
		}

		err = loader.applyDefaults(target, loader.opts.Section)
		if err != nil {
			return nil, err
		}

		_, err = loader.IsValid(target)
		if err != nil {
			return nil, fmt.Errorf("validating error: %w", err)
		}

		return target, nil
	}
}
