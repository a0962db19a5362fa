// Package resolve picks the configuration file to load from an explicit
// property value, the APPCONFIG environment variable and a search directory,
// in that order.
package resolve

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// EnvVar names the environment variable holding a configuration path.
const EnvVar = "APPCONFIG"

// DefaultNames are looked up in the search directory, first match wins.
var DefaultNames = []string{"application.yaml", "application.yml", "application.json"}

// Source tells which input a resolved path came from.
type Source int

const (
	// SourceNone means no path was found and the empty document applies.
	SourceNone Source = iota
	// SourceProperty is an explicit value such as a command-line flag.
	SourceProperty
	// SourceEnv is the APPCONFIG environment variable.
	SourceEnv
	// SourceSearch is a default name found in the search directory.
	SourceSearch
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceProperty:
		return "property"
	case SourceEnv:
		return "env"
	case SourceSearch:
		return "search"
	default:
		return "none"
	}
}

// Inputs are everything resolution looks at.
type Inputs struct {
	// Property is used when it names a readable regular file.
	Property string
	// Env is the environment snapshot; nil means the process environment.
	Env map[string]string
	// SearchDir is scanned for DefaultNames; empty disables the search.
	SearchDir string
}

// Result is the chosen path and where it came from. An empty Path means none.
type Result struct {
	Path   string
	Source Source
}

type envConfig struct {
	Path string `env:"APPCONFIG"`
}

// Resolve returns the first available configuration path. The environment
// value is taken as is; a missing file surfaces when it is loaded.
func Resolve(in Inputs) (Result, error) {
	if in.Property != "" && readableFile(in.Property) {
		return Result{Path: in.Property, Source: SourceProperty}, nil
	}

	var cfg envConfig

	err := env.ParseWithOptions(&cfg, env.Options{Environment: in.Env})
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", EnvVar, err)
	}

	if cfg.Path != "" {
		return Result{Path: cfg.Path, Source: SourceEnv}, nil
	}

	if in.SearchDir != "" {
		if name, ok := search(os.DirFS(in.SearchDir)); ok {
			return Result{Path: filepath.Join(in.SearchDir, name), Source: SourceSearch}, nil
		}
	}

	return Result{Source: SourceNone}, nil
}

func search(fsys fs.FS) (string, bool) {
	for _, name := range DefaultNames {
		info, err := fs.Stat(fsys, name)
		if err == nil && info.Mode().IsRegular() {
			return name, true
		}
	}

	return "", false
}

func readableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false
	}

	_ = f.Close()

	return true
}
