package tokens

import "sort"

// Leaf pairs a dot-delimited path with the scalar value found there. Arrays
// count as leaves: merge semantics replace them wholesale.
type Leaf struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Leaves enumerates every scalar leaf of the tree, sorted by path for
// deterministic output.
func Leaves(tree Tree) []Leaf {
	return appendLeaves(nil, "", tree)
}

// Paths returns the sorted dot-delimited paths of every scalar leaf.
func Paths(tree Tree) []string {
	leaves := Leaves(tree)
	paths := make([]string, len(leaves))
	for i, leaf := range leaves {
		paths[i] = leaf.Path
	}
	return paths
}

func appendLeaves(acc []Leaf, prefix string, value any) []Leaf {
	node, ok := value.(map[string]any)
	if !ok {
		return append(acc, Leaf{Path: prefix, Value: value})
	}
	if len(node) == 0 {
		if prefix != "" {
			return append(acc, Leaf{Path: prefix, Value: map[string]any{}})
		}
		return acc
	}

	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		acc = appendLeaves(acc, joinPath(prefix, key), node[key])
	}
	return acc
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}
