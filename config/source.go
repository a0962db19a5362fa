package config

// Source is where a configuration document comes from: nothing, a file or an
// in-memory map. Values are created with Empty, File and Map.
type Source interface {
	String() string
	source()
}

type emptySource struct{}

func (emptySource) String() string { return "empty document" }
func (emptySource) source()        {}

type fileSource struct {
	path string
}

func (s fileSource) String() string { return s.path }
func (fileSource) source()          {}

type mapSource struct {
	values map[string]any
}

func (mapSource) String() string { return "map" }
func (mapSource) source()        {}

// Empty is the empty document "{}". Decoding it yields zero values.
func Empty() Source {
	return emptySource{}
}

// File is a YAML or JSON file on disk. The format is chosen by extension.
func File(path string) Source {
	return fileSource{path: path}
}

// Map is an in-memory document, such as values collected from flags.
func Map(values map[string]any) Source {
	return mapSource{values: values}
}
