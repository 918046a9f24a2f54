package tokens

import "github.com/goliatone/go-tokens/layering"

// Merge deep-merges the base store with override trees applied left to right
// and returns a new store carrying the base metadata. Nested maps merge
// recursively; scalars and arrays replace wholesale, later writers winning.
// Neither the base nor the overrides are mutated.
func Merge(base *Store, overrides ...Tree) *Store {
	if base == nil {
		return &Store{Tokens: layering.Merge(nil, overrides...)}
	}
	return &Store{
		Metadata: base.Metadata,
		Tokens:   layering.Merge(base.Tokens, overrides...),
	}
}

// MergeTrees deep-merges raw trees without store metadata.
func MergeTrees(base Tree, overrides ...Tree) Tree {
	return layering.Merge(base, overrides...)
}
