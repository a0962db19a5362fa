package mapper

import "reflect"

// Clone returns a deep copy of *v. Pointers, maps and slices reachable through
// exported fields are duplicated; unexported fields are copied shallowly.
// The value graph must be acyclic.
func Clone[T any](v *T) *T {
	if v == nil {
		return nil
	}

	out := new(T)
	copyInto(reflect.ValueOf(out).Elem(), reflect.ValueOf(v).Elem())

	return out
}

func cloneValue(v reflect.Value) reflect.Value {
	out := reflect.New(v.Type()).Elem()
	copyInto(out, v)

	return out
}

func copyInto(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return
		}

		ptr := reflect.New(src.Type().Elem())
		copyInto(ptr.Elem(), src.Elem())
		dst.Set(ptr)
	case reflect.Interface:
		if src.IsNil() {
			return
		}

		dst.Set(cloneValue(src.Elem()))
	case reflect.Map:
		if src.IsNil() {
			return
		}

		out := reflect.MakeMapWithSize(src.Type(), src.Len())

		iter := src.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}

		dst.Set(out)
	case reflect.Slice:
		if src.IsNil() {
			return
		}

		out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			copyInto(out.Index(i), src.Index(i))
		}

		dst.Set(out)
	case reflect.Array:
		for i := range src.Len() {
			copyInto(dst.Index(i), src.Index(i))
		}
	case reflect.Struct:
		dst.Set(src)

		for i := range src.NumField() {
			if dst.Field(i).CanSet() {
				copyInto(dst.Field(i), src.Field(i))
			}
		}
	default:
		dst.Set(src)
	}
}
