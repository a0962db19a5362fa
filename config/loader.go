package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"dario.cat/mergo"

	"github.com/0xalexb/hjarta-config/config/diag"
	filefetcher "github.com/0xalexb/hjarta-config/config/fetcher/file"
	"github.com/0xalexb/hjarta-config/config/format"
	"github.com/0xalexb/hjarta-config/config/mapper"
	jsonparser "github.com/0xalexb/hjarta-config/config/parser/json"
	yamlparser "github.com/0xalexb/hjarta-config/config/parser/yaml"
	"github.com/0xalexb/hjarta-config/config/validate"
)

// ErrUnknownSource is returned for a Source not created by this package.
var ErrUnknownSource = errors.New("unknown configuration source")

var emptyDocument = []byte("{}")

// Loader decodes, merges and validates configuration of type T.
// A Loader holds no state between calls and is safe for concurrent use;
// callers serialize Merge calls that share an instance.
type Loader[T any] struct {
	opts      Options
	logger    *slog.Logger
	mapper    *mapper.Mapper
	detector  *format.Detector
	validator *validate.Validator
	parsers   map[format.Format]Parser
}

// New creates a Loader for T.
func New[T any](opts ...Option) *Loader[T] {
	var o Options

	for _, apply := range opts {
		apply(&o)
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v := o.Validator
	if v == nil {
		v = validate.New(o.TagName)
	}

	return &Loader[T]{
		opts:      o,
		logger:    logger,
		mapper:    mapper.New(mapper.Options{FailOnUnknown: o.FailOnUnknown, TagName: o.TagName}),
		detector:  format.NewDetector(logger),
		validator: v,
		parsers: map[format.Format]Parser{
			format.YAML: yamlparser.NewParser(),
			format.JSON: jsonparser.NewParser(),
		},
	}
}

// Load decodes src into a new T and applies defaults.
//
// A file that cannot be read fails with *diag.SourceAccessError. Any other
// failure is diag.DecodeErrors. Validation is separate; see Validate and IsValid.
func (l *Loader[T]) Load(src Source) (*T, error) {
	var (
		cfg *T
		err error
	)

	switch s := src.(type) {
	case emptySource:
		l.logger.Info("loading default configuration")

		cfg, err = l.decode(l.parsers[format.YAML], emptyDocument, "", "")
		if err != nil {
			return nil, asDefaultConfigError(err)
		}
	case fileSource:
		l.logger.Info("loading configuration from path", slog.String("path", s.path))

		cfg, err = l.loadFile(s.path)
		if err != nil {
			return nil, err
		}
	case mapSource:
		l.logger.Debug("loading configuration from map", slog.Int("keys", len(s.values)))

		cfg = new(T)

		err = l.mapper.Decode(s.values, cfg)
		if err != nil {
			return nil, decodeErrors(err, "")
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownSource, src)
	}

	err = l.applyDefaults(cfg, src.String())
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadPath loads the file at path, or the empty document when path is empty.
func (l *Loader[T]) LoadPath(path string) (*T, error) {
	if path == "" {
		return l.Load(Empty())
	}

	return l.Load(File(path))
}

// LoadValid loads src and rejects the result unless it passes validation.
func (l *Loader[T]) LoadValid(src Source) (*T, error) {
	cfg, err := l.Load(src)
	if err != nil {
		return nil, err
	}

	_, err = l.IsValid(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Build returns a copy of existing with the fields present in values
// replaced. Fields absent from values keep their existing value; a nested
// object present in values replaces the existing one as a whole. existing is
// never modified and may be nil.
func (l *Loader[T]) Build(values map[string]any, existing *T) (*T, error) {
	cfg := mapper.Clone(existing)
	if cfg == nil {
		cfg = new(T)
	}

	err := l.mapper.Apply(values, cfg, mapper.Overlay)
	if err != nil {
		return nil, decodeErrors(err, "")
	}

	return cfg, nil
}

// Merge applies values to existing in place and returns it. Nested objects
// are merged field by field and maps by key; sequences are replaced. On error
// existing is left unchanged.
func (l *Loader[T]) Merge(values map[string]any, existing *T) (*T, error) {
	err := l.mapper.Apply(values, existing, mapper.Merge)
	if err != nil {
		return nil, decodeErrors(err, "")
	}

	return existing, nil
}

// Validate returns every constraint violation of cfg. An empty result means valid.
func (l *Loader[T]) Validate(cfg *T) diag.ValidationErrors {
	return l.validator.Validate(cfg)
}

// IsValid reports whether cfg has no violations. When it has, the error is
// the sorted, de-duplicated diag.ValidationErrors.
func (l *Loader[T]) IsValid(cfg *T) (bool, error) {
	violations := l.Validate(cfg)
	if len(violations) == 0 {
		return true, nil
	}

	return false, violations.Sorted()
}

// Encode renders cfg in the given format using the field names Load matches,
// so loading the output yields an equal value.
func (l *Loader[T]) Encode(cfg *T, f format.Format) ([]byte, error) {
	doc, err := l.mapper.ToDocument(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}

	if f == format.JSON {
		return jsonparser.Marshal(doc)
	}

	return yamlparser.Marshal(doc)
}

func (l *Loader[T]) loadFile(path string) (*T, error) {
	fetcher, err := filefetcher.NewFetcher(path)()
	if err != nil {
		return nil, err
	}

	data, err := fetcher.Fetch()
	if err != nil {
		return nil, err
	}

	f := l.detector.Detect(fetcher.Path())

	return l.decode(l.parsers[f], data, l.opts.Section, fetcher.Path())
}

func (l *Loader[T]) decode(parser Parser, data []byte, section, origin string) (*T, error) {
	doc, err := parser.Parse(data, section)
	if err != nil {
		return nil, decodeErrors(err, origin)
	}

	cfg := new(T)

	err = l.mapper.Decode(doc, cfg)
	if err != nil {
		return nil, decodeErrors(err, origin)
	}

	return cfg, nil
}

// applyDefaults runs WithDefaults and then the Defaulter hook.
func (l *Loader[T]) applyDefaults(cfg *T, origin string) error {
	changed := false

	if l.opts.Defaults != nil {
		before := mapper.Clone(cfg)

		err := mergo.Merge(cfg, l.opts.Defaults)
		if err != nil {
			return fmt.Errorf("applying defaults: %w", err)
		}

		changed = !reflect.DeepEqual(before, cfg)
	}

	if defaulter, ok := any(cfg).(Defaulter); ok && defaulter.SetDefaults() {
		changed = true
	}

	if changed {
		l.logger.Info("defaults applied", slog.String("source", origin))
	}

	return nil
}

func decodeErrors(err error, origin string) error {
	var decodeErr *diag.DecodeError
	if !errors.As(err, &decodeErr) {
		decodeErr = &diag.DecodeError{
			Stage:   diag.StageMapping,
			Summary: diag.SummaryMapping,
			Detail:  err.Error(),
			Err:     err,
		}
	}

	decodeErr.Source = origin

	return diag.DecodeErrors{decodeErr}
}

// asDefaultConfigError reports a failure to decode the empty document as a
// parse failure of the default configuration.
func asDefaultConfigError(err error) error {
	var errs diag.DecodeErrors
	if !errors.As(err, &errs) {
		return err
	}

	out := make(diag.DecodeErrors, 0, len(errs))
	for _, e := range errs {
		out = append(out, &diag.DecodeError{
			Stage:   diag.StageParse,
			Summary: diag.SummaryDefaultConfig,
			Detail:  e.Detail,
			Err:     e,
		})
	}

	return out
}
