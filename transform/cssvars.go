package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tokens "github.com/goliatone/go-tokens"
)

// CSSVars emits a custom-property declaration block, one property per leaf
// scalar, plus optional utility classes and responsive media-query blocks.
type CSSVars struct {
	selector     string
	prefix       string
	utilities    bool
	mediaQueries bool
}

// CSSVarsOption configures the style-variable transformer.
type CSSVarsOption func(*CSSVars)

// WithSelector scopes the declaration block. Default is :root.
func WithSelector(selector string) CSSVarsOption {
	return func(c *CSSVars) {
		selector = strings.TrimSpace(selector)
		if selector != "" {
			c.selector = selector
		}
	}
}

// WithPrefix prepends a namespace to every custom-property name and utility
// class.
func WithPrefix(prefix string) CSSVarsOption {
	return func(c *CSSVars) {
		c.prefix = strings.Trim(strings.TrimSpace(prefix), "-")
	}
}

// WithUtilities enables per-category utility class generation.
func WithUtilities() CSSVarsOption {
	return func(c *CSSVars) {
		c.utilities = true
	}
}

// WithMediaQueries enables min-width media blocks keyed off
// responsive.breakpoints, carrying breakpoint-prefixed utility variants.
func WithMediaQueries() CSSVarsOption {
	return func(c *CSSVars) {
		c.mediaQueries = true
	}
}

// NewCSSVars builds the style-variable transformer.
func NewCSSVars(opts ...CSSVarsOption) *CSSVars {
	c := &CSSVars{selector: ":root"}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Name implements Transformer.
func (c *CSSVars) Name() string { return "css-vars" }

// Transform implements Transformer.
func (c *CSSVars) Transform(s *tokens.Store) (*Artifact, error) {
	if s == nil {
		return nil, &Error{Transformer: c.Name(), Err: fmt.Errorf("store is required")}
	}

	var b strings.Builder
	b.WriteString(c.selector)
	b.WriteString(" {\n")
	for _, leaf := range tokens.Leaves(s.Tokens) {
		var value string
		switch typed := leaf.Value.(type) {
		case map[string]any:
			continue
		case []any:
			value = formatList(typed)
		default:
			value = tokens.FormatValue(leaf.Value)
		}
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s;\n", c.varName(leaf.Path), value)
	}
	b.WriteString("}\n")

	if c.utilities {
		c.writeUtilities(&b, s.Tokens, "")
	}
	if c.mediaQueries {
		c.writeMediaQueries(&b, s.Tokens)
	}

	return &Artifact{
		Name:        "tokens.css",
		ContentType: "text/css",
		Body:        []byte(b.String()),
	}, nil
}

func (c *CSSVars) varName(path string) string {
	name := strings.ReplaceAll(path, ".", "-")
	if c.prefix != "" {
		name = c.prefix + "-" + name
	}
	return "--" + name
}

func (c *CSSVars) className(name string) string {
	if c.prefix != "" {
		return c.prefix + "-" + name
	}
	return name
}

// writeUtilities emits color classes (.text-*, .bg-*, .border-*) for every
// color leaf and spacing classes (margin, padding, gap) for every spacing
// key, all referencing the custom properties rather than literal values.
func (c *CSSVars) writeUtilities(b *strings.Builder, tree tokens.Tree, breakpoint string) {
	classPrefix := ""
	if breakpoint != "" {
		classPrefix = breakpoint + "-"
	}
	indent := ""
	if breakpoint != "" {
		indent = "  "
	}

	colors, _ := tree["colors"].(map[string]any)
	for _, leaf := range tokens.Leaves(colors) {
		if leaf.Path == "" {
			continue
		}
		if _, isString := leaf.Value.(string); !isString {
			continue
		}
		suffix := strings.ReplaceAll(leaf.Path, ".", "-")
		variable := c.varName("colors." + leaf.Path)
		fmt.Fprintf(b, "%s.%s { color: var(%s); }\n", indent, c.className(classPrefix+"text-"+suffix), variable)
		fmt.Fprintf(b, "%s.%s { background-color: var(%s); }\n", indent, c.className(classPrefix+"bg-"+suffix), variable)
		fmt.Fprintf(b, "%s.%s { border-color: var(%s); }\n", indent, c.className(classPrefix+"border-"+suffix), variable)
	}

	spacing, _ := tree["spacing"].(map[string]any)
	for _, key := range sortedKeys(spacing) {
		if _, nested := spacing[key].(map[string]any); nested {
			continue
		}
		variable := c.varName("spacing." + key)
		fmt.Fprintf(b, "%s.%s { margin: var(%s); }\n", indent, c.className(classPrefix+"m-"+key), variable)
		fmt.Fprintf(b, "%s.%s { padding: var(%s); }\n", indent, c.className(classPrefix+"p-"+key), variable)
		fmt.Fprintf(b, "%s.%s { gap: var(%s); }\n", indent, c.className(classPrefix+"gap-"+key), variable)
	}
}

// writeMediaQueries emits one min-width block per responsive breakpoint,
// narrowest first, each carrying breakpoint-prefixed utility variants.
func (c *CSSVars) writeMediaQueries(b *strings.Builder, tree tokens.Tree) {
	raw, ok := tokens.Value(tree, "responsive.breakpoints")
	if !ok {
		return
	}
	breakpoints, ok := raw.(map[string]any)
	if !ok {
		return
	}

	type entry struct {
		name     string
		minWidth string
		pixels   float64
	}
	entries := make([]entry, 0, len(breakpoints))
	for name, value := range breakpoints {
		minWidth := tokens.FormatValue(value)
		if minWidth == "" {
			continue
		}
		entries = append(entries, entry{name: name, minWidth: minWidth, pixels: widthInPixels(minWidth)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pixels == entries[j].pixels {
			return entries[i].name < entries[j].name
		}
		return entries[i].pixels < entries[j].pixels
	})

	for _, bp := range entries {
		fmt.Fprintf(b, "@media (min-width: %s) {\n", bp.minWidth)
		c.writeUtilities(b, tree, bp.name)
		b.WriteString("}\n")
	}
}

func widthInPixels(value string) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "px")
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatList(values []any) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		part := tokens.FormatValue(value)
		if strings.ContainsAny(part, " ,") {
			part = strconv.Quote(part)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
