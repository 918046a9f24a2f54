// Package tokens implements a layered design-token engine: deep-merged theme
// trees, token references with fallbacks, overlay resolution for variants,
// interaction states and responsive breakpoints, plus computed values driven
// by pluggable expression engines.
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-tokens/layering"
)

// Tree is the JSON-shaped nested payload every stage of the pipeline operates
// on: string keys mapping to scalar leaves or nested trees.
type Tree = map[string]any

// Mode identifies the color scheme a token store targets.
type Mode string

const (
	// ModeLight is the default color scheme.
	ModeLight Mode = "light"
	// ModeDark is the dark color scheme.
	ModeDark Mode = "dark"
)

// ParseMode converts a string representation into the corresponding Mode.
// Unrecognised values fall back to ModeLight.
func ParseMode(value string) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeDark):
		return ModeDark
	default:
		return ModeLight
	}
}

// ErrMetadataIncomplete indicates a store whose identifying metadata is
// missing required fields.
var ErrMetadataIncomplete = errors.New("tokens: store metadata incomplete")

// Metadata identifies a token store. Stores that enter a registry or are
// serialized must carry a complete Metadata value.
type Metadata struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Mode     Mode   `json:"mode"`
	Version  string `json:"version"`
}

// Validate reports whether every required metadata field is populated.
func (m Metadata) Validate() error {
	var missing []string
	if strings.TrimSpace(m.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(m.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(m.Category) == "" {
		missing = append(missing, "category")
	}
	if m.Mode != ModeLight && m.Mode != ModeDark {
		missing = append(missing, "mode")
	}
	if strings.TrimSpace(m.Version) == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMetadataIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Store is one theme's token tree plus its identifying metadata.
type Store struct {
	Metadata Metadata `json:"metadata"`
	Tokens   Tree     `json:"tokens"`
}

// New builds a Store from metadata and a token tree. The tree is deep copied
// so later caller mutations cannot leak into the store.
func New(md Metadata, tree Tree) *Store {
	return &Store{
		Metadata: md,
		Tokens:   layering.Clone(tree),
	}
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	if s == nil {
		return nil
	}
	return &Store{
		Metadata: s.Metadata,
		Tokens:   layering.Clone(s.Tokens),
	}
}

// Validate checks the store's metadata.
func (s *Store) Validate() error {
	if s == nil {
		return errors.New("tokens: store is nil")
	}
	return s.Metadata.Validate()
}

// CloneTree returns a deep copy of tree. Shorthand over the layering package
// for callers that only deal in raw trees.
func CloneTree(tree Tree) Tree {
	return layering.Clone(tree)
}

// Categories returns the canonical top-level token categories in their
// conventional order.
func Categories() []string {
	return []string{
		"colors",
		"typography",
		"spacing",
		"borderRadius",
		"shadows",
		"zIndex",
		"animation",
		"transitions",
		"branding",
		"accessibility",
		"responsive",
		"components",
	}
}

// FormatValue renders a scalar token value the way emitted artifacts expect:
// numbers without exponent notation or trailing zeros, booleans as
// true/false, nil as the empty string.
func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return formatFloat(typed)
	case float32:
		return formatFloat(float64(typed))
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
