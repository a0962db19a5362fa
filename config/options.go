package config

import (
	"log/slog"

	"github.com/0xalexb/hjarta-config/config/validate"
)

// Options holds the settings of a Loader.
type Options struct {
	FailOnUnknown bool
	Logger        *slog.Logger
	TagName       string
	Section       string
	Defaults      any
	Validator     *validate.Validator
}

// Option defines a function type for configuring a Loader.
type Option func(*Options)

// WithFailOnUnknown makes document keys without a matching field an error
// instead of silently ignoring them.
func WithFailOnUnknown(fail bool) Option {
	return func(opts *Options) {
		opts.FailOnUnknown = fail
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithTagName sets the struct tag consulted first for field names.
// Defaults to "yaml"; the json tag is always the fallback.
func WithTagName(tag string) Option {
	return func(opts *Options) {
		opts.TagName = tag
	}
}

// WithSection limits file sources to a nested section, e.g. "services:api".
func WithSection(section string) Option {
	return func(opts *Options) {
		opts.Section = section
	}
}

// WithDefaults fills fields that are still zero after loading with the values
// of defaults, which must be a T or *T.
func WithDefaults(defaults any) Option {
	return func(opts *Options) {
		opts.Defaults = defaults
	}
}

// WithValidator replaces the validator, e.g. one with extra rules registered.
func WithValidator(v *validate.Validator) Option {
	return func(opts *Options) {
		opts.Validator = v
	}
}
