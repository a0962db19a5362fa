package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/diag"
	filefetcher "github.com/0xalexb/hjarta-config/config/fetcher/file"
	"github.com/0xalexb/hjarta-config/config/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city" validate:"required"`
	ZipCode string `yaml:"zipCode" validate:"omitempty,pattern=^[0-9]{5}$"`
}

type Employee struct {
	Name    string        `yaml:"name" validate:"required"`
	Dept    string        `yaml:"dept"`
	Salary  int           `yaml:"salary" validate:"gte=0"`
	Phone   *string       `yaml:"phone"`
	Address Address       `yaml:"address"`
	Skills  []string      `yaml:"skills"`
	Notice  time.Duration `yaml:"notice"`
}

func strPtr(s string) *string {
	return &s
}

func bob() *Employee {
	return &Employee{
		Name:   "Bob",
		Dept:   "Operations",
		Salary: 50000,
		Address: Address{
			Street:  "11 Wall Street",
			City:    "New York",
			ZipCode: "10118",
		},
		Skills: []string{"go", "sql"},
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func quietLoader[T any](opts ...config.Option) *config.Loader[T] {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	return config.New[T](append([]config.Option{config.WithLogger(logger)}, opts...)...)
}

func TestLoad_EmptyDocument(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee](config.WithFailOnUnknown(true))

	first, err := loader.Load(config.Empty())
	require.NoError(t, err)

	second, err := loader.LoadPath("")
	require.NoError(t, err)

	assert.Equal(t, &Employee{}, first)
	assert.Equal(t, first, second)
}

func TestLoad_EmptyDocumentIntoScalarTarget(t *testing.T) {
	t.Parallel()

	_, err := quietLoader[int]().Load(config.Empty())

	var errs diag.DecodeErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, diag.StageParse, errs[0].Stage)
	assert.Equal(t, diag.SummaryDefaultConfig, errs[0].Summary)
	assert.Empty(t, errs[0].Path)
	assert.Equal(t, "Malformed default config; is of type: object, expected: int", errs[0].Error())
}

func TestLoad_Map(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"name":   "John",
		"dept":   "Engineering",
		"salary": 75000,
		"phone":  "555-555-5555",
		"address": map[string]any{
			"street":  "11 Wall Street",
			"city":    "New York",
			"zipCode": "10118",
		},
	}

	cfg, err := quietLoader[Employee](config.WithFailOnUnknown(true)).Load(config.Map(values))

	require.NoError(t, err)
	assert.Equal(t, "John", cfg.Name)
	assert.Equal(t, "New York", cfg.Address.City)
	assert.Equal(t, 75000, cfg.Salary)
	assert.Equal(t, strPtr("555-555-5555"), cfg.Phone)
}

func TestLoad_Files(t *testing.T) {
	t.Parallel()

	want := &Employee{
		Name:    "John",
		Dept:    "Engineering",
		Salary:  75000,
		Address: Address{Street: "233 S Wacker Dr", City: "Chicago", ZipCode: "60606"},
		Skills:  []string{"go"},
		Notice:  2 * time.Hour,
	}

	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "application.yaml",
			content: `name: John
dept: Engineering
salary: 75000
address:
  street: 233 S Wacker Dr
  city: Chicago
  zipCode: "60606"
skills: [go]
notice: 2h
`,
		},
		{
			name: "yml",
			file: "application.yml",
			content: `# comment
notice: "2h"
skills:
  - go
address:
    zipCode: "60606"
    city: Chicago
    street: 233 S Wacker Dr
salary: 75000
dept: Engineering
name: John
`,
		},
		{
			name: "json",
			file: "application.JSON",
			content: `{"name":"John","dept":"Engineering","salary":75000,"notice":"2h","skills":["go"],
"address":{"street":"233 S Wacker Dr","city":"Chicago","zipCode":60606}}`,
		},
		{
			name:    "no extension",
			file:    "application",
			content: "name: John\ndept: Engineering\nsalary: 75000\nnotice: 2h\nskills: [go]\naddress:\n  street: 233 S Wacker Dr\n  city: Chicago\n  zipCode: \"60606\"\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tc.file, tc.content)

			cfg, err := quietLoader[Employee](config.WithFailOnUnknown(true)).Load(config.File(path))

			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoad_FormatFollowsExtension(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		file    string
		content string
		summary string
	}{
		{name: "json extension", file: "config.json", content: `{"name": }`, summary: "Malformed JSON"},
		{name: "yaml extension", file: "config.yaml", content: "name: [unclosed\n", summary: "Malformed YAML"},
		{name: "json content in yaml file", file: "config.yml", content: `{"name": "John"`, summary: "Malformed YAML"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tc.file, tc.content)

			_, err := quietLoader[Employee]().Load(config.File(path))

			var errs diag.DecodeErrors
			require.ErrorAs(t, err, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, diag.StageParse, errs[0].Stage)
			assert.Equal(t, tc.summary, errs[0].Summary)
			assert.Empty(t, errs[0].Path)
			assert.Equal(t, filepath.Clean(path), errs[0].Source)
		})
	}
}

func TestLoad_WarnsOnJSONExtensionWithOtherContent(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	path := writeConfig(t, "config.json", "name: John\n")
	loader := config.New[Employee](config.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))

	_, err := loader.Load(config.File(path))

	var errs diag.DecodeErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Malformed JSON", errs.First().Summary)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "does not look like JSON")
}

func TestLoad_SourceAccessErrors(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee]()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := loader.Load(config.File(filepath.Join(t.TempDir(), "missing.yaml")))

		var accessErr *diag.SourceAccessError
		require.ErrorAs(t, err, &accessErr)
		require.ErrorIs(t, err, os.ErrNotExist)

		var errs diag.DecodeErrors
		assert.NotErrorAs(t, err, &errs)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadPath(t.TempDir())

		var accessErr *diag.SourceAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.ErrorIs(t, err, filefetcher.ErrPathIsDirectory)
	})
}

func TestLoad_UnknownFieldPolicy(t *testing.T) {
	t.Parallel()

	values := map[string]any{"name": "John", "nmae": "typo"}

	t.Run("fail", func(t *testing.T) {
		t.Parallel()

		_, err := quietLoader[Employee](config.WithFailOnUnknown(true)).Load(config.Map(values))

		var errs diag.DecodeErrors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, diag.StageUnknownField, errs[0].Stage)
		assert.ElementsMatch(t,
			[]string{"name", "dept", "salary", "phone", "address", "skills", "notice"},
			errs[0].Suggestions)
		assert.True(t, strings.HasPrefix(diag.Render(err)[0],
			"Unrecognized field at: nmae\n    Did you mean?:\n      - name\n      - "))
	})

	t.Run("ignore", func(t *testing.T) {
		t.Parallel()

		cfg, err := quietLoader[Employee]().Load(config.Map(values))

		require.NoError(t, err)
		assert.Equal(t, "John", cfg.Name)
	})
}

func TestLoad_TypeMismatchInFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.yaml", "name: John\naddress:\n  city: [Chicago]\n")

	_, err := quietLoader[Employee]().Load(config.File(path))

	assert.Equal(t,
		[]string{"Incorrect type of value at: address.city; is of type: array, expected: string"},
		diag.Render(err))
}

func TestLoad_Section(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.yaml", `
staff:
  lead:
    name: Ada
    dept: Research
`)

	cfg, err := quietLoader[Employee](config.WithSection("staff:lead")).Load(config.File(path))
	require.NoError(t, err)
	assert.Equal(t, "Ada", cfg.Name)

	_, err = quietLoader[Employee](config.WithSection("staff:intern")).Load(config.File(path))

	var errs diag.DecodeErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, diag.StageMapping, errs[0].Stage)
	assert.Equal(t, "staff.intern", errs[0].Path.String())
}

func TestLoad_WithDefaults(t *testing.T) {
	t.Parallel()

	defaults := Employee{
		Dept:    "Unassigned",
		Address: Address{City: "Remote"},
		Notice:  30 * 24 * time.Hour,
	}

	loader := quietLoader[Employee](config.WithDefaults(defaults))

	cfg, err := loader.Load(config.Map(map[string]any{"name": "John", "address": map[string]any{"street": "Main"}}))

	require.NoError(t, err)
	assert.Equal(t, "Unassigned", cfg.Dept)
	assert.Equal(t, Address{Street: "Main", City: "Remote"}, cfg.Address)
	assert.Equal(t, 30*24*time.Hour, cfg.Notice)

	_, err = quietLoader[Employee](config.WithDefaults(Address{})).Load(config.Empty())
	require.Error(t, err)
}

func TestMerge_DeepMergesNestedObjects(t *testing.T) {
	t.Parallel()

	existing := bob()
	existing.Skills = nil

	merged, err := quietLoader[Employee]().Merge(map[string]any{
		"name":  "John",
		"dept":  "Engineering",
		"phone": "555-555-555",
		"address": map[string]any{
			"street":  "233 S Wacker Dr",
			"city":    "Chicago",
			"zipCode": "60606",
		},
	}, existing)

	require.NoError(t, err)
	assert.Same(t, existing, merged)
	assert.Equal(t, &Employee{
		Name:    "John",
		Dept:    "Engineering",
		Salary:  50000,
		Phone:   strPtr("555-555-555"),
		Address: Address{Street: "233 S Wacker Dr", City: "Chicago", ZipCode: "60606"},
	}, merged)
}

func TestMerge_PartialNestedUpdateKeepsSiblings(t *testing.T) {
	t.Parallel()

	existing := bob()

	merged, err := quietLoader[Employee]().Merge(map[string]any{
		"address": map[string]any{"city": "Chicago"},
	}, existing)

	require.NoError(t, err)
	assert.Equal(t, Address{Street: "11 Wall Street", City: "Chicago", ZipCode: "10118"}, merged.Address)
	assert.Equal(t, "Bob", merged.Name)
}

func TestMerge_ReplacesSequences(t *testing.T) {
	t.Parallel()

	merged, err := quietLoader[Employee]().Merge(map[string]any{"skills": []any{"rust"}}, bob())

	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, merged.Skills)
}

func TestMerge_Errors(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee](config.WithFailOnUnknown(true))

	_, err := loader.Merge(map[string]any{"salary": "lots"}, bob())

	var errs diag.DecodeErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, diag.StageTypeMismatch, errs[0].Stage)

	_, err = loader.Merge(map[string]any{"name": "John"}, nil)
	require.Error(t, err)
}

func TestMerge_FailureLeavesExistingUnchanged(t *testing.T) {
	t.Parallel()

	existing := bob()

	_, err := quietLoader[Employee]().Merge(map[string]any{
		"address": map[string]any{"city": "Chicago"},
		"name":    "John",
		"salary":  "lots",
		"skills":  []any{"rust"},
	}, existing)

	require.Error(t, err)
	assert.Equal(t, bob(), existing)
}

func TestLoad_NumbersAgreeAcrossSources(t *testing.T) {
	t.Parallel()

	type counter struct {
		Count int `yaml:"count"`
	}

	testCases := []struct {
		name string
		yaml string
		json string
		raw  any
		want int
	}{
		{name: "integral float", yaml: "count: 1.0\n", json: `{"count": 1.0}`, raw: 1.0, want: 1},
		{name: "exponent", yaml: "count: 1.0e+2\n", json: `{"count": 1e2}`, raw: 1e2, want: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			loader := quietLoader[counter](config.WithFailOnUnknown(true))

			sources := []config.Source{
				config.File(writeConfig(t, "config.yaml", tc.yaml)),
				config.File(writeConfig(t, "config.json", tc.json)),
				config.Map(map[string]any{"count": tc.raw}),
			}

			for _, src := range sources {
				cfg, err := loader.Load(src)
				require.NoError(t, err, src.String())
				assert.Equal(t, tc.want, cfg.Count, src.String())
			}
		})
	}

	t.Run("fraction", func(t *testing.T) {
		t.Parallel()

		loader := quietLoader[counter]()

		sources := []config.Source{
			config.File(writeConfig(t, "config.yaml", "count: 1.5\n")),
			config.File(writeConfig(t, "config.json", `{"count": 1.5}`)),
			config.Map(map[string]any{"count": 1.5}),
		}

		for _, src := range sources {
			_, err := loader.Load(src)

			var errs diag.DecodeErrors
			require.ErrorAs(t, err, &errs, src.String())
			assert.Equal(t, diag.StageTypeMismatch, errs[0].Stage, src.String())
			assert.Equal(t, "count", errs[0].Path.String(), src.String())
		}
	})
}

func TestLoader_ConcurrentUse(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee](config.WithFailOnUnknown(true))
	existing := bob()
	path := writeConfig(t, "config.yaml", "name: John\naddress:\n  city: Chicago\n")

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(3)

		go func() {
			defer wg.Done()

			cfg, err := loader.Load(config.Map(map[string]any{"name": "John", "salary": i}))
			assert.NoError(t, err)
			assert.Equal(t, i, cfg.Salary)
		}()

		go func() {
			defer wg.Done()

			cfg, err := loader.Load(config.File(path))
			assert.NoError(t, err)
			assert.Equal(t, "Chicago", cfg.Address.City)
		}()

		go func() {
			defer wg.Done()

			built, err := loader.Build(map[string]any{"salary": i, "address": map[string]any{"city": "Austin"}}, existing)
			assert.NoError(t, err)
			assert.Equal(t, i, built.Salary)
			assert.Equal(t, "Austin", built.Address.City)
			assert.Equal(t, "Operations", built.Dept)
		}()
	}

	wg.Wait()

	assert.Equal(t, bob(), existing)
}

func TestBuild_DoesNotMutateExisting(t *testing.T) {
	t.Parallel()

	existing := bob()
	snapshot := bob()

	built, err := quietLoader[Employee]().Build(map[string]any{
		"name":    "John",
		"skills":  []any{"rust"},
		"address": map[string]any{"city": "Chicago"},
	}, existing)

	require.NoError(t, err)
	assert.Equal(t, snapshot, existing)
	assert.NotSame(t, existing, built)

	assert.Equal(t, "John", built.Name)
	assert.Equal(t, 50000, built.Salary)
	assert.Equal(t, []string{"rust"}, built.Skills)
	assert.Equal(t, Address{City: "Chicago"}, built.Address, "a nested object is replaced as a whole")

	built.Skills[0] = "changed"
	assert.Equal(t, []string{"go", "sql"}, existing.Skills)
}

func TestBuild_NilExisting(t *testing.T) {
	t.Parallel()

	built, err := quietLoader[Employee]().Build(map[string]any{"name": "John"}, nil)

	require.NoError(t, err)
	assert.Equal(t, &Employee{Name: "John"}, built)
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	original := bob()
	original.Phone = strPtr("555-0100")
	original.Notice = 90 * time.Minute

	testCases := []struct {
		name   string
		format format.Format
		file   string
	}{
		{name: "yaml", format: format.YAML, file: "out.yaml"},
		{name: "json", format: format.JSON, file: "out.json"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			loader := quietLoader[Employee](config.WithFailOnUnknown(true))

			data, err := loader.Encode(original, tc.format)
			require.NoError(t, err)

			decoded, err := loader.Load(config.File(writeConfig(t, tc.file, string(data))))
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee]()

	cfg := bob()
	cfg.Name = ""
	cfg.Address.ZipCode = "ABC"

	violations := loader.Validate(cfg)

	assert.Equal(t, diag.ValidationErrors{
		{Field: "name", Message: "must not be empty"},
		{Field: "address.zipCode", Message: `must match "^[0-9]{5}$"`},
	}, violations)
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee]()

	ok, err := loader.IsValid(bob())
	require.NoError(t, err)
	assert.True(t, ok)

	cfg := bob()
	cfg.Salary = -1
	cfg.Address.City = ""

	ok, err = loader.IsValid(cfg)
	assert.False(t, ok)
	require.EqualError(t, err,
		"invalid configuration: address.city must not be empty; salary must be greater than or equal to 0")
	assert.Equal(t,
		[]string{"address.city must not be empty", "salary must be greater than or equal to 0"},
		diag.Render(err))
}

func TestLoadValid(t *testing.T) {
	t.Parallel()

	loader := quietLoader[Employee]()

	_, err := loader.LoadValid(config.Empty())

	var violations diag.ValidationErrors
	require.ErrorAs(t, err, &violations)
	assert.Len(t, violations, 2)

	cfg, err := loader.LoadValid(config.Map(map[string]any{"name": "Ada", "address": map[string]any{"city": "Oslo"}}))
	require.NoError(t, err)
	assert.Equal(t, "Oslo", cfg.Address.City)
}
