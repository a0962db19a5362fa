package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/0xalexb/hjarta-config/config/diag"
)

// preparer walks a document against the target type before mapstructure
// touches the target. It reports the first failure with its path, drops keys
// the policy ignores, renames the rest to the keys mapstructure matches and
// records the stored values the document replaces outright.
type preparer struct {
	mapper *Mapper
	resets []reflect.Value
}

// value returns the document mapstructure decodes for sv at type t. live is
// the value already stored there, valid only while merging into it.
func (p *preparer) value(path diag.Path, sv reflect.Value, t reflect.Type, live reflect.Value, mode Mode) (any, error) {
	if !sv.IsValid() {
		p.reset(live)

		return nil, nil
	}

	if t.Kind() == reflect.Pointer {
		var elem reflect.Value
		if live.IsValid() && !live.IsNil() {
			elem = live.Elem()
		}

		return p.value(path, sv, t.Elem(), elem, mode)
	}

	hooked, err := mapstructure.DecodeHookExec(p.mapper.hook, sv, reflect.New(t).Elem())
	if err != nil {
		return nil, p.hookFailure(path, sv, t, err)
	}

	if hv := reflect.ValueOf(hooked); hv.IsValid() && hv.Type() != sv.Type() && (hv.Type() == t || hv.Type() == reflect.PointerTo(t)) {
		return sv.Interface(), nil
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() > 0 && !sv.Type().AssignableTo(t) {
			return nil, p.mismatch(path, sv, t)
		}

		if !mergesByKey(live, sv) {
			p.reset(live)
		}

		return sv.Interface(), nil
	case reflect.Struct:
		if sv.Type() == t {
			return cloneValue(sv).Interface(), nil
		}

		if sv.Kind() != reflect.Map {
			return nil, p.mismatch(path, sv, t)
		}

		return p.object(path, sv, t, live, mode)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, p.fail(path, "unsupported map key type "+t.Key().String(), nil)
		}

		if sv.Kind() != reflect.Map {
			return nil, p.mismatch(path, sv, t)
		}

		return p.mapping(path, sv, t.Elem())
	case reflect.Slice:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			return nil, p.mismatch(path, sv, t)
		}

		p.reset(live)

		return p.sequence(path, sv, t.Elem())
	case reflect.Array:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			return nil, p.mismatch(path, sv, t)
		}

		if sv.Len() > t.Len() {
			return nil, p.fail(path, fmt.Sprintf("array of length %d exceeds %s", sv.Len(), t), nil)
		}

		p.reset(live)

		return p.sequence(path, sv, t.Elem())
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return sv.Interface(), nil
	default:
		return nil, p.fail(path, "unsupported target type "+t.String(), nil)
	}
}

// object renames the keys of sv to their mapstructure routes. Under Overlay
// the stored fields the document names are cleared first, so they are
// replaced as a whole.
func (p *preparer) object(path diag.Path, sv reflect.Value, t reflect.Type, live reflect.Value, mode Mode) (any, error) {
	info := p.mapper.structInfo(t)
	out := make(map[string]any, sv.Len())

	for _, key := range sortedKeys(sv) {
		f, ok := info.lookup(key.name)
		if !ok {
			if p.mapper.failOnUnknown {
				return nil, p.unknown(path.Field(key.name), key.name, info)
			}

			continue
		}

		var fieldLive reflect.Value
		if live.IsValid() {
			fieldLive = live.FieldByIndex(f.index)
			if mode != Merge {
				p.reset(fieldLive)

				fieldLive = reflect.Value{}
			}
		}

		val, err := p.value(path.Field(key.name), indirect(sv.MapIndex(key.value)), f.typ, fieldLive, mode.child())
		if err != nil {
			return nil, err
		}

		put(out, f.route, val)
	}

	return out, nil
}

// mapping prepares map entries. Entries are always decoded fresh, so nothing
// below a map is merged.
func (p *preparer) mapping(path diag.Path, sv reflect.Value, elem reflect.Type) (any, error) {
	out := make(map[string]any, sv.Len())

	for _, key := range sortedKeys(sv) {
		val, err := p.value(path.Field(key.name), indirect(sv.MapIndex(key.value)), elem, reflect.Value{}, Replace)
		if err != nil {
			return nil, err
		}

		out[key.name] = val
	}

	return out, nil
}

func (p *preparer) sequence(path diag.Path, sv reflect.Value, elem reflect.Type) (any, error) {
	out := make([]any, sv.Len())

	for i := range sv.Len() {
		val, err := p.value(path.Index(i), indirect(sv.Index(i)), elem, reflect.Value{}, Replace)
		if err != nil {
			return nil, err
		}

		out[i] = val
	}

	return out, nil
}

func (p *preparer) reset(v reflect.Value) {
	if v.IsValid() {
		p.resets = append(p.resets, v)
	}
}

// mergesByKey reports whether an untyped field keeps its stored map and takes
// the document's keys on top of it.
func mergesByKey(live reflect.Value, sv reflect.Value) bool {
	return live.IsValid() && !live.IsNil() && live.Elem().Type() == mapAnyType && sv.Kind() == reflect.Map
}

// put stores val under route, creating the intermediate objects.
func put(out map[string]any, route []string, val any) {
	for _, key := range route[:len(route)-1] {
		next, ok := out[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			out[key] = next
		}

		out = next
	}

	out[route[len(route)-1]] = val
}

func (p *preparer) hookFailure(path diag.Path, sv reflect.Value, t reflect.Type, err error) error {
	var rangeErr *rangeError

	switch {
	case errors.As(err, &rangeErr):
		return p.fail(path, rangeErr.Error(), nil)
	case errors.Is(err, errIncompatible):
		return p.mismatch(path, sv, t)
	default:
		return p.fail(path, fmt.Sprintf("cannot parse %q as %s: %v", fmt.Sprint(sv.Interface()), t, err), err)
	}
}

func (p *preparer) mismatch(path diag.Path, sv reflect.Value, t reflect.Type) error {
	return &diag.DecodeError{
		Stage:   diag.StageTypeMismatch,
		Summary: diag.SummaryTypeMismatch,
		Path:    path,
		Detail:  fmt.Sprintf("is of type: %s, expected: %s", typeName(sv), t),
	}
}

func (p *preparer) fail(path diag.Path, detail string, cause error) error {
	return &diag.DecodeError{
		Stage:   diag.StageMapping,
		Summary: diag.SummaryMapping,
		Path:    path,
		Detail:  detail,
		Err:     cause,
	}
}

func (p *preparer) unknown(path diag.Path, key string, info *structInfo) error {
	return &diag.DecodeError{
		Stage:       diag.StageUnknownField,
		Summary:     diag.SummaryUnknownField,
		Path:        path,
		Suggestions: rankSuggestions(key, info.names()),
	}
}

type mapKey struct {
	name  string
	value reflect.Value
}

// sortedKeys returns the keys of a source map ordered by name so the first
// failure reported is the same on every run.
func sortedKeys(sv reflect.Value) []mapKey {
	keys := make([]mapKey, 0, sv.Len())

	iter := sv.MapRange()
	for iter.Next() {
		keys = append(keys, mapKey{name: keyName(iter.Key()), value: iter.Key()})
	}

	slices.SortFunc(keys, func(a, b mapKey) int {
		return strings.Compare(a.name, b.name)
	})

	return keys
}

func keyName(k reflect.Value) string {
	k = indirect(k)
	if !k.IsValid() {
		return "null"
	}

	if k.Kind() == reflect.String {
		return k.String()
	}

	return fmt.Sprint(k.Interface())
}

func typeName(sv reflect.Value) string {
	if sv.Type() == numberType {
		return "number"
	}

	switch sv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return sv.Type().String()
	}
}
