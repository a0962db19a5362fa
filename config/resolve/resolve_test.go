package resolve

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	return path
}

func TestResolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	property := touch(t, dir, "custom.yaml")
	touch(t, dir, "application.yml")
	touch(t, dir, "application.json")

	emptyDir := t.TempDir()

	testCases := []struct {
		name string
		in   Inputs
		want Result
	}{
		{
			name: "property wins",
			in: Inputs{
				Property:  property,
				Env:       map[string]string{EnvVar: "/etc/app.yaml"},
				SearchDir: dir,
			},
			want: Result{Path: property, Source: SourceProperty},
		},
		{
			name: "unreadable property falls through to env",
			in: Inputs{
				Property:  filepath.Join(dir, "missing.yaml"),
				Env:       map[string]string{EnvVar: "/etc/app.yaml"},
				SearchDir: dir,
			},
			want: Result{Path: "/etc/app.yaml", Source: SourceEnv},
		},
		{
			name: "directory property is ignored",
			in: Inputs{
				Property: dir,
				Env:      map[string]string{EnvVar: "/etc/app.yaml"},
			},
			want: Result{Path: "/etc/app.yaml", Source: SourceEnv},
		},
		{
			name: "empty env falls through to search",
			in: Inputs{
				Env:       map[string]string{EnvVar: ""},
				SearchDir: dir,
			},
			want: Result{Path: filepath.Join(dir, "application.yml"), Source: SourceSearch},
		},
		{
			name: "nothing found",
			in: Inputs{
				Env:       map[string]string{},
				SearchDir: emptyDir,
			},
			want: Result{Source: SourceNone},
		},
		{
			name: "search disabled",
			in:   Inputs{Env: map[string]string{}},
			want: Result{Source: SourceNone},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tc.in)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_ProcessEnvironment(t *testing.T) {
	t.Setenv(EnvVar, "/srv/from-env.yaml")

	got, err := Resolve(Inputs{})

	require.NoError(t, err)
	assert.Equal(t, Result{Path: "/srv/from-env.yaml", Source: SourceEnv}, got)
}

func TestSearch_Order(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"application.json":     {Data: []byte("{}")},
		"application.yaml":     {Mode: os.ModeDir},
		"application.yml":      {Data: []byte("a: 1")},
		"application.yaml.bak": {Data: []byte("a: 1")},
	}

	name, ok := search(fsys)

	require.True(t, ok)
	assert.Equal(t, "application.yml", name)

	_, ok = search(fstest.MapFS{})
	assert.False(t, ok)
}

func TestSource_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "property", SourceProperty.String())
	assert.Equal(t, "env", SourceEnv.String())
	assert.Equal(t, "search", SourceSearch.String())
	assert.Equal(t, "none", SourceNone.String())
}
