package mapper

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
)

// rankSuggestions orders every known name by edit distance to the unknown key.
// Ties keep declaration order.
func rankSuggestions(key string, names []string) []string {
	type ranked struct {
		name     string
		distance int
	}

	lowered := strings.ToLower(key)

	candidates := make([]ranked, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, ranked{
			name:     name,
			distance: levenshtein.Distance(lowered, strings.ToLower(name), nil),
		})
	}

	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Compare(a.distance, b.distance)
	})

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.name)
	}

	return out
}
