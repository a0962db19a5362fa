package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xalexb/hjarta-config/config/diag"
)

// ErrPathIsDirectory is returned when the path provided to the Fetcher points to a directory instead of a file.
var ErrPathIsDirectory = errors.New("path is a directory, not a file")

// ErrNotRegularFile is returned when the path points to a device, socket or other special file.
var ErrNotRegularFile = errors.New("path is not a regular file")

// Fetcher implements config.DataFetcher interface for file-based configuration.
// It reads configuration data from a file at construction time and caches the contents.
type Fetcher struct {
	filepath string
	data     []byte
}

// NewFetcher returns a constructor function that creates a new file-based Fetcher
// with the specified filepath. The file is read at construction time and cached.
// Any failure is returned as *diag.SourceAccessError so callers can tell it apart
// from a document that was read but could not be parsed.
func NewFetcher(fpath string) func() (*Fetcher, error) {
	return func() (*Fetcher, error) {
		cleanPath := filepath.Clean(fpath)

		stat, err := os.Stat(cleanPath)
		if err != nil {
			return nil, accessError(cleanPath, fmt.Errorf("stat file: %w", err))
		}

		if stat.IsDir() {
			return nil, accessError(cleanPath, ErrPathIsDirectory)
		}

		if !stat.Mode().IsRegular() {
			return nil, accessError(cleanPath, ErrNotRegularFile)
		}

		data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is cleaned and validated
		if err != nil {
			return nil, accessError(cleanPath, fmt.Errorf("reading file: %w", err))
		}

		return &Fetcher{
			filepath: cleanPath,
			data:     data,
		}, nil
	}
}

// Fetch returns a copy of the cached configuration data that was read at construction time.
// A copy is returned to prevent callers from mutating the cached data.
func (f *Fetcher) Fetch() ([]byte, error) {
	result := make([]byte, len(f.data))
	copy(result, f.data)

	return result, nil
}

// Path returns the cleaned path the data was read from.
func (f *Fetcher) Path() string {
	return f.filepath
}

func accessError(path string, err error) *diag.SourceAccessError {
	return &diag.SourceAccessError{Path: path, Err: err}
}
