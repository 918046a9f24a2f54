package tokens

import (
	"sort"
	"strconv"
)

// IsColorScale reports whether the mapping is shaped like a color scale:
// non-empty, every key a numeric string (50, 100, ... 950) and every value a
// scalar. Scale-shaped maps get literal-union key types in emitted
// declarations and pattern-keyed constraints in generated schemas.
func IsColorScale(node map[string]any) bool {
	if len(node) == 0 {
		return false
	}
	for key, value := range node {
		if _, err := strconv.Atoi(key); err != nil {
			return false
		}
		if _, nested := value.(map[string]any); nested {
			return false
		}
	}
	return true
}

// ScaleKeys returns the numeric keys of a color-scale mapping in ascending
// numeric order.
func ScaleKeys(node map[string]any) []string {
	numeric := make([]int, 0, len(node))
	for key := range node {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		numeric = append(numeric, n)
	}
	sort.Ints(numeric)

	out := make([]string, len(numeric))
	for i, n := range numeric {
		out[i] = strconv.Itoa(n)
	}
	return out
}
