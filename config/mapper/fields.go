package mapper

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

type field struct {
	name  string
	typ   reflect.Type
	index []int
	depth int
	// route is where mapstructure expects the value: the keys of the
	// non-squashed structs leading to the field, then the field key itself.
	route []string
}

type structInfo struct {
	fields []field
	byName map[string]int
}

type cacheKey struct {
	typ reflect.Type
	tag string
}

var structCache sync.Map // cacheKey -> *structInfo

func (m *Mapper) structInfo(t reflect.Type) *structInfo {
	key := cacheKey{typ: t, tag: m.tagName}
	if cached, ok := structCache.Load(key); ok {
		return cached.(*structInfo)
	}

	info := buildStructInfo(collectFields(t, m.tagName, nil, nil, 0))
	actual, _ := structCache.LoadOrStore(key, info)

	return actual.(*structInfo)
}

// lookup matches document keys exactly.
func (s *structInfo) lookup(name string) (field, bool) {
	if i, ok := s.byName[name]; ok {
		return s.fields[i], true
	}

	return field{}, false
}

func (s *structInfo) names() []string {
	out := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, f.name)
	}

	return out
}

// buildStructInfo keeps, for every name, the shallowest field. Declaration order is preserved.
func buildStructInfo(all []field) *structInfo {
	shallowest := make(map[string]int, len(all))
	for _, f := range all {
		if d, ok := shallowest[f.name]; !ok || f.depth < d {
			shallowest[f.name] = f.depth
		}
	}

	info := &structInfo{byName: make(map[string]int, len(all))}

	for _, f := range all {
		if f.depth != shallowest[f.name] {
			continue
		}

		if _, dup := info.byName[f.name]; dup {
			continue
		}

		info.byName[f.name] = len(info.fields)
		info.fields = append(info.fields, f)
	}

	return info
}

func collectFields(t reflect.Type, tagName string, index []int, route []string, depth int) []field {
	var out []field

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}

		name, opts, skip := fieldTag(sf, tagName)
		if skip {
			continue
		}

		// Embedded pointers are squashed by mapstructure only while non-nil.
		if sf.Anonymous && sf.Type.Kind() == reflect.Pointer {
			continue
		}

		fieldIndex := append(index[:len(index):len(index)], i)

		if sf.Type.Kind() == reflect.Struct && (sf.Anonymous || slices.Contains(opts, "inline") || slices.Contains(opts, "squash")) {
			inner := route
			if !squashed(sf, tagName) {
				inner = append(route[:len(route):len(route)], structKey(sf, tagName))
			}

			out = append(out, collectFields(sf.Type, tagName, fieldIndex, inner, depth+1)...)

			continue
		}

		if !sf.IsExported() {
			continue
		}

		if name == "" {
			name = sf.Name
		}

		out = append(out, field{
			name:  name,
			typ:   sf.Type,
			index: fieldIndex,
			depth: depth,
			route: append(route[:len(route):len(route)], structKey(sf, tagName)),
		})
	}

	return out
}

// fieldTag reads the configured tag, falling back to json.
func fieldTag(sf reflect.StructField, tagName string) (name string, opts []string, skip bool) {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok {
		tag, ok = sf.Tag.Lookup("json")
	}

	if !ok {
		return "", nil, false
	}

	name, rest, _ := strings.Cut(tag, ",")
	if name == "-" && rest == "" {
		return "", nil, true
	}

	return name, strings.Split(rest, ","), false
}

// structKey is the key mapstructure matches a field by: the configured tag, else the Go name.
func structKey(sf reflect.StructField, tagName string) string {
	name, _, _ := strings.Cut(sf.Tag.Get(tagName), ",")
	if name == "" {
		return sf.Name
	}

	return name
}

// squashed reports whether mapstructure flattens the embedded struct sf.
func squashed(sf reflect.StructField, tagName string) bool {
	if sf.Anonymous {
		return true
	}

	_, opts, _ := strings.Cut(sf.Tag.Get(tagName), ",")

	return slices.Contains(strings.Split(opts, ","), "squash")
}
