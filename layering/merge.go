// Package layering implements deterministic deep-merge semantics for nested
// token trees plus a small scope model for ordering overlay layers.
package layering

// Merge deep-merges base with the override trees applied left to right and
// returns a freshly allocated tree. Nested maps merge recursively; scalars and
// slices replace wholesale, later writers winning. Inputs are never mutated.
func Merge(base map[string]any, overrides ...map[string]any) map[string]any {
	merged := Clone(base)
	if merged == nil {
		merged = map[string]any{}
	}
	for _, override := range overrides {
		merged = mergeInto(merged, override)
	}
	return merged
}

// mergeInto overlays override onto dst in place. dst must already be a private
// copy; override is only read.
func mergeInto(dst, override map[string]any) map[string]any {
	for key, value := range override {
		overrideMap, overrideIsMap := asMap(value)
		if overrideIsMap {
			if existingMap, ok := asMap(dst[key]); ok {
				dst[key] = mergeInto(existingMap, overrideMap)
				continue
			}
			dst[key] = Clone(overrideMap)
			continue
		}
		dst[key] = cloneValue(value)
	}
	return dst
}

// Clone returns a deep copy of tree. Nested maps and slices are copied; scalar
// leaves are shared as-is.
func Clone(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return Clone(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}
