package tokens

import "strings"

// RefKind discriminates the two reference variants.
type RefKind uint8

const (
	// RefLiteral marks a reference carrying its value directly.
	RefLiteral RefKind = iota
	// RefToken marks a reference addressing a value inside a tree.
	RefToken
)

// Reference is either a literal value or a dot-delimited token address with an
// optional fallback. Use Lit and Ref to construct the variants; the zero value
// is the empty literal.
type Reference struct {
	Kind     RefKind
	Value    string
	Path     string
	Fallback string
}

// Lit builds a literal reference that resolves to value unchanged.
func Lit(value string) Reference {
	return Reference{Kind: RefLiteral, Value: value}
}

// Ref builds a token reference addressing path, resolving to fallback when the
// path misses.
func Ref(path, fallback string) Reference {
	return Reference{Kind: RefToken, Path: path, Fallback: fallback}
}

// IsLiteral reports whether the reference carries its value directly.
func (r Reference) IsLiteral() bool { return r.Kind == RefLiteral }

// IsToken reports whether the reference addresses a tree path.
func (r Reference) IsToken() bool { return r.Kind == RefToken }

// ParseReference classifies a raw JSON-shaped value into a Reference. Strings
// become literals; mappings with a "token" key become token references with an
// optional "fallback"; other scalars become literals of their rendered form.
func ParseReference(value any) Reference {
	switch typed := value.(type) {
	case string:
		return Lit(typed)
	case map[string]any:
		path, ok := typed["token"].(string)
		if !ok {
			return Lit("")
		}
		fallback, _ := typed["fallback"].(string)
		return Ref(path, fallback)
	default:
		return Lit(FormatValue(value))
	}
}

// Resolve evaluates ref against tree and always returns a string. Literals
// pass through unchanged. Token references walk the tree; a missing path, a
// non-string leaf or an intermediate scalar resolves to the fallback, and an
// empty string when no fallback was given.
func Resolve(ref Reference, tree Tree) string {
	if ref.IsLiteral() {
		return ref.Value
	}
	value, ok := Value(tree, ref.Path)
	if !ok {
		return ref.Fallback
	}
	leaf, ok := value.(string)
	if !ok {
		return ref.Fallback
	}
	return leaf
}

// ResolveValue parses value as a reference and resolves it against tree.
func ResolveValue(value any, tree Tree) string {
	return Resolve(ParseReference(value), tree)
}

// Value walks the dot-delimited path through tree and returns the raw value
// found there. The boolean reports whether every segment existed; walking
// through a scalar or off the tree returns false.
func Value(tree Tree, path string) (any, bool) {
	if tree == nil || path == "" {
		return nil, false
	}
	var current any = tree
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
