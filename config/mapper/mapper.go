// Package mapper binds generic document trees (maps, sequences and scalars as
// produced by the YAML and JSON parsers or supplied by callers) to typed Go
// values. Assignment is done by mapstructure; a preparing pass in front of it
// checks the whole document first, so a failing document leaves the target
// untouched and the failure carries the field path.
//
// Struct fields are matched exactly by their tag name (yaml by default, then
// json, then the Go field name). Embedded structs, and struct fields tagged
// ",inline" or ",squash", are flattened. Embedded struct pointers are not
// mapped.
//
// Three modes control what happens to values already present in the target:
//
//	Replace  the target is reset before decoding
//	Overlay  top-level fields named by the document are replaced wholesale, the rest is kept
//	Merge    structs and pointed-to structs are updated field by field, maps
//	         (typed or held in an any field) by key, sequences are replaced
//
// Scalars convert the same way whatever the source: JSON numbers are read as
// the YAML parser would read them, integral floats fit integer fields, and
// numbers never wrap or truncate.
//
// Failures are *diag.DecodeError values; the first failure in sorted key
// order is reported.
package mapper

import (
	"errors"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/0xalexb/hjarta-config/config/diag"
)

// DefaultTagName is the struct tag consulted first for field names.
const DefaultTagName = "yaml"

// ErrInvalidTarget is returned when the decode target is not a non-nil pointer.
var ErrInvalidTarget = errors.New("target must be a non-nil pointer")

// ErrUnsupportedType is returned when a value kind has no document representation.
var ErrUnsupportedType = errors.New("unsupported type")

// Mode selects how a document is applied to an existing value.
type Mode int

const (
	// Replace resets the target before decoding.
	Replace Mode = iota
	// Overlay replaces the top-level fields present in the document and keeps the others.
	Overlay
	// Merge updates nested structs field by field and maps by key; sequences are replaced.
	Merge
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Overlay:
		return "overlay"
	case Merge:
		return "merge"
	default:
		return "replace"
	}
}

// child is the mode applied one level below the current value.
func (m Mode) child() Mode {
	if m == Overlay {
		return Replace
	}

	return m
}

// Options configures a Mapper.
type Options struct {
	// FailOnUnknown turns document keys without a matching field into errors.
	FailOnUnknown bool
	// TagName is the struct tag consulted first; empty means DefaultTagName.
	TagName string
}

// Mapper decodes documents into typed values. It holds no per-call state and
// is safe for concurrent use.
type Mapper struct {
	failOnUnknown bool
	tagName       string
	hook          mapstructure.DecodeHookFunc
}

// New creates a Mapper.
func New(opts Options) *Mapper {
	tagName := opts.TagName
	if tagName == "" {
		tagName = DefaultTagName
	}

	return &Mapper{
		failOnUnknown: opts.FailOnUnknown,
		tagName:       tagName,
		hook:          decodeHook(),
	}
}

// TagName returns the struct tag consulted first for field names.
func (m *Mapper) TagName() string {
	return m.tagName
}

// Decode resets the value target points to and fills it from doc.
func (m *Mapper) Decode(doc any, target any) error {
	return m.Apply(doc, target, Replace)
}

// Apply decodes doc into target using mode. The document is checked in full
// before target is written, so on error target is unchanged.
func (m *Mapper) Apply(doc any, target any, mode Mode) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &diag.DecodeError{
			Stage:   diag.StageMapping,
			Summary: diag.SummaryMapping,
			Detail:  ErrInvalidTarget.Error(),
			Err:     ErrInvalidTarget,
		}
	}

	p := preparer{mapper: m}

	live := rv.Elem()
	if mode == Replace {
		p.reset(live)

		live = reflect.Value{}
	}

	prepared, err := p.value(nil, indirect(reflect.ValueOf(doc)), rv.Elem().Type(), live, mode)
	if err != nil {
		return err
	}

	for _, v := range p.resets {
		v.SetZero()
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  m.hook,
		ErrorUnused: true,
		// Replace starts from a zero value. Overlay and Merge keep the map
		// keys and pointed-to values the document does not name.
		ZeroFields: mode == Replace,
		Squash:     true,
		Result:     target,
		TagName:    m.tagName,
		MatchName:  func(key, name string) bool { return key == name },
	})
	if err != nil {
		return &diag.DecodeError{Stage: diag.StageMapping, Summary: diag.SummaryMapping, Detail: err.Error(), Err: err}
	}

	err = dec.Decode(prepared)
	if err != nil {
		return &diag.DecodeError{Stage: diag.StageMapping, Summary: diag.SummaryMapping, Detail: err.Error(), Err: err}
	}

	return nil
}

// FieldNames returns the document names of the fields of a struct type in
// declaration order. Non-struct types have no field names.
func (m *Mapper) FieldNames(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil
	}

	return m.structInfo(t).names()
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}
