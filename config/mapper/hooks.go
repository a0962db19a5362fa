package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	durationType = reflect.TypeFor[time.Duration]()
	numberType   = reflect.TypeFor[json.Number]()
	mapAnyType   = reflect.TypeFor[map[string]any]()
	stringType   = reflect.TypeFor[string]()
)

// errIncompatible marks a scalar that has no conversion to the field type.
var errIncompatible = errors.New("incompatible value")

type rangeError struct {
	value  string
	target reflect.Type
}

func (e *rangeError) Error() string {
	return fmt.Sprintf("value %s out of range for %s", e.value, e.target)
}

// decodeHook is run by mapstructure on every value before it is assigned.
// JSON numbers go first so that YAML, JSON and in-memory documents convert
// under the same numeric rules.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		plainScalar,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		coerceScalar,
	)
}

// plainScalar turns json.Number into int64, uint64 or float64 and named
// string types into string.
func plainScalar(from reflect.Type, to reflect.Type, data any) (any, error) {
	if num, ok := data.(json.Number); ok && to != numberType {
		return numberValue(num), nil
	}

	if from.Kind() == reflect.String && from != stringType && to.Kind() != reflect.Interface {
		return reflect.ValueOf(data).String(), nil
	}

	return data, nil
}

func numberValue(num json.Number) any {
	if i, err := num.Int64(); err == nil {
		return i
	}

	if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return u
	}

	if f, err := num.Float64(); err == nil {
		return f
	}

	return num.String()
}

// coerceScalar converts between scalar kinds and returns a value of exactly
// the field type, so mapstructure never truncates or wraps a number.
func coerceScalar(from reflect.Value, to reflect.Value) (any, error) {
	data := from.Interface()
	t := to.Type()

	if from.Type() == t || from.Type() == reflect.PointerTo(t) {
		return data, nil
	}

	switch t.Kind() {
	case reflect.String:
		s, err := toText(from)
		if err != nil {
			return nil, err
		}

		return reflect.ValueOf(s).Convert(t).Interface(), nil
	case reflect.Bool:
		b, err := toBool(from)
		if err != nil {
			return nil, err
		}

		return reflect.ValueOf(b).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(from, t)
		if err != nil {
			return nil, err
		}

		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := toUint(from, t)
		if err != nil {
			return nil, err
		}

		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(from, t)
		if err != nil {
			return nil, err
		}

		return reflect.ValueOf(f).Convert(t).Interface(), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && from.Kind() == reflect.String {
			return reflect.ValueOf([]byte(from.String())).Convert(t).Interface(), nil
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return plain(from), nil
		}
	}

	return data, nil
}

func toText(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	default:
		return "", errIncompatible
	}
}

func toBool(v reflect.Value) (bool, error) {
	switch {
	case v.Kind() == reflect.Bool:
		return v.Bool(), nil
	case v.Kind() == reflect.String && (v.String() == "true" || v.String() == "false"):
		return v.String() == "true", nil
	default:
		return false, errIncompatible
	}
}

func toInt(v reflect.Value, t reflect.Type) (int64, error) {
	var n int64

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.Uint() > math.MaxInt64 {
			return 0, &rangeError{value: strconv.FormatUint(v.Uint(), 10), target: t}
		}

		n = int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, errIncompatible
		}

		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, &rangeError{value: strconv.FormatFloat(f, 'g', -1, 64), target: t}
		}

		n = int64(f)
	case reflect.String:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64)
		if err != nil {
			return 0, errIncompatible
		}

		n = parsed
	default:
		return 0, errIncompatible
	}

	if reflect.New(t).Elem().OverflowInt(n) {
		return 0, &rangeError{value: strconv.FormatInt(n, 10), target: t}
	}

	return n, nil
}

func toUint(v reflect.Value, t reflect.Type) (uint64, error) {
	var n uint64

	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n = v.Uint()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() < 0 {
			return 0, &rangeError{value: strconv.FormatInt(v.Int(), 10), target: t}
		}

		n = uint64(v.Int())
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, errIncompatible
		}

		if f < 0 || f >= math.MaxUint64 {
			return 0, &rangeError{value: strconv.FormatFloat(f, 'g', -1, 64), target: t}
		}

		n = uint64(f)
	case reflect.String:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v.String()), 10, 64)
		if err != nil {
			return 0, errIncompatible
		}

		n = parsed
	default:
		return 0, errIncompatible
	}

	if reflect.New(t).Elem().OverflowUint(n) {
		return 0, &rangeError{value: strconv.FormatUint(n, 10), target: t}
	}

	return n, nil
}

func toFloat(v reflect.Value, t reflect.Type) (float64, error) {
	var f float64

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f = v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f = float64(v.Uint())
	case reflect.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return 0, errIncompatible
		}

		f = parsed
	default:
		return 0, errIncompatible
	}

	if reflect.New(t).Elem().OverflowFloat(f) {
		return 0, &rangeError{value: strconv.FormatFloat(f, 'g', -1, 64), target: t}
	}

	return f, nil
}

// plain converts a source value into the generic form stored in untyped (any) targets.
func plain(sv reflect.Value) any {
	sv = indirect(sv)
	if !sv.IsValid() {
		return nil
	}

	if sv.Type() == numberType {
		return numberValue(json.Number(sv.String()))
	}

	switch sv.Kind() {
	case reflect.Map:
		out := make(map[string]any, sv.Len())

		iter := sv.MapRange()
		for iter.Next() {
			out[keyName(iter.Key())] = plain(iter.Value())
		}

		return out
	case reflect.Slice, reflect.Array:
		if sv.Kind() == reflect.Slice && sv.Type().Elem().Kind() == reflect.Uint8 {
			return string(sv.Bytes())
		}

		out := make([]any, sv.Len())
		for i := range sv.Len() {
			out[i] = plain(sv.Index(i))
		}

		return out
	default:
		return cloneValue(sv).Interface()
	}
}
