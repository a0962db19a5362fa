// Package file provides a file-based DataFetcher implementation for the config package.
//
// The file is stat-ed, checked to be a regular file and read once at
// construction time. Subsequent calls to Fetch return copies of the cached
// bytes, so a file that changes afterwards does not affect an existing Fetcher.
//
// Usage:
//
//	fetcher, err := file.NewFetcher("/path/to/config.yaml")()
//	if err != nil {
//	    // *diag.SourceAccessError: not found, permission denied, directory, ...
//	}
//	data, err := fetcher.Fetch()
//
// Error Handling:
//   - Every construction failure is a *diag.SourceAccessError carrying the cleaned path
//   - Use errors.Is(err, file.ErrPathIsDirectory) to check for directory errors
//   - Use errors.Is(err, fs.ErrNotExist) for missing files
package file
