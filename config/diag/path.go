package diag

import (
	"strconv"
	"strings"
)

// PathElem is one step of a field path: either a named field or a sequence index.
type PathElem struct {
	Name  string
	Index int

	isIndex bool
}

// IsIndex reports whether the element addresses a sequence item.
func (e PathElem) IsIndex() bool {
	return e.isIndex
}

// Path is the address of a value inside a nested document.
type Path []PathElem

// Field returns a new path extended with a named element.
// The receiver is never modified.
func (p Path) Field(name string) Path {
	return append(p[:len(p):len(p)], PathElem{Name: name})
}

// Index returns a new path extended with a sequence index.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], PathElem{Index: i, isIndex: true})
}

// String renders the path with dots between names and brackets around indices,
// e.g. "items[2].name". An empty name renders as "".
func (p Path) String() string {
	var sb strings.Builder

	for i, elem := range p {
		if elem.IsIndex() {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(elem.Index))
			sb.WriteByte(']')

			continue
		}

		if i > 0 {
			sb.WriteByte('.')
		}

		if elem.Name == "" {
			sb.WriteString(`""`)

			continue
		}

		sb.WriteString(elem.Name)
	}

	return sb.String()
}

// ParsePath splits a colon-separated section path ("api:permissions") into a Path.
func ParsePath(section string) Path {
	if section == "" {
		return nil
	}

	parts := strings.Split(section, ":")
	path := make(Path, 0, len(parts))

	for _, part := range parts {
		path = append(path, PathElem{Name: part})
	}

	return path
}
