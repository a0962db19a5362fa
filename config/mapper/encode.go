package mapper

import (
	"encoding"
	"fmt"
	"reflect"
	"time"
)

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// ToDocument converts a typed value into a generic document tree using the
// same field names Decode matches, so decoding the tree yields an equal value.
func (m *Mapper) ToDocument(v any) (any, error) {
	return m.document(reflect.ValueOf(v))
}

func (m *Mapper) document(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Type() == durationType {
		return time.Duration(v.Int()).String(), nil
	}

	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface && v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", v.Type(), err)
		}

		return string(text), nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}

		return m.document(v.Elem())
	case reflect.Struct:
		info := m.structInfo(v.Type())
		out := make(map[string]any, len(info.fields))

		for _, f := range info.fields {
			val, err := m.document(v.FieldByIndex(f.index))
			if err != nil {
				return nil, err
			}

			out[f.name] = val
		}

		return out, nil
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}

		out := make(map[string]any, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			val, err := m.document(iter.Value())
			if err != nil {
				return nil, err
			}

			out[keyName(iter.Key())] = val
		}

		return out, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}

		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes()), nil
		}

		out := make([]any, v.Len())

		for i := range v.Len() {
			val, err := m.document(v.Index(i))
			if err != nil {
				return nil, err
			}

			out[i] = val
		}

		return out, nil
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", ErrUnsupportedType, v.Type())
	}
}
