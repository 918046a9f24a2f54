package transform

import (
	"fmt"
	"sort"
	"strings"

	tokens "github.com/goliatone/go-tokens"
)

// Declarations emits TypeScript interface declarations for each token
// category, literal-union key types for color-scale-shaped maps, a TokenPath
// union of every leaf path and a module declaration naming the exports.
type Declarations struct {
	moduleName string
}

// DeclarationsOption configures the typed-declaration transformer.
type DeclarationsOption func(*Declarations)

// WithModuleName sets the declared module name. Default is design-tokens.
func WithModuleName(name string) DeclarationsOption {
	return func(d *Declarations) {
		name = strings.TrimSpace(name)
		if name != "" {
			d.moduleName = name
		}
	}
}

// NewDeclarations builds the typed-declaration transformer.
func NewDeclarations(opts ...DeclarationsOption) *Declarations {
	d := &Declarations{moduleName: "design-tokens"}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Name implements Transformer.
func (d *Declarations) Name() string { return "declarations" }

// Transform implements Transformer.
func (d *Declarations) Transform(s *tokens.Store) (*Artifact, error) {
	if s == nil {
		return nil, &Error{Transformer: d.Name(), Err: fmt.Errorf("store is required")}
	}

	emitter := &declarationEmitter{scales: map[string][]string{}}

	var categories []string
	for _, category := range tokens.Categories() {
		node, ok := s.Tokens[category].(map[string]any)
		if !ok || len(node) == 0 {
			continue
		}
		categories = append(categories, category)
		emitter.collectScales(category, node)
	}

	var b strings.Builder
	b.WriteString("// Type declarations for the resolved design token tree.\n\n")

	emitter.writeScaleKeys(&b)

	exported := make([]string, 0, len(categories)+2)
	for _, category := range categories {
		node := s.Tokens[category].(map[string]any)
		name := interfaceName(category)
		exported = append(exported, name)
		fmt.Fprintf(&b, "export interface %s {\n", name)
		// Branding trees are white-label extension points: keep the known
		// keys typed but leave the record open.
		if category == "branding" {
			b.WriteString("  [key: string]: unknown;\n")
		}
		emitter.writeMembers(&b, category, node, 1)
		b.WriteString("}\n\n")
	}

	b.WriteString("export interface DesignTokens {\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "  %s: %s;\n", memberName(category), interfaceName(category))
	}
	b.WriteString("}\n\n")
	exported = append(exported, "DesignTokens")

	paths := tokens.Paths(s.Tokens)
	if len(paths) > 0 {
		b.WriteString("export type TokenPath =\n")
		for i, path := range paths {
			if i == len(paths)-1 {
				fmt.Fprintf(&b, "  | %q;\n", path)
				continue
			}
			fmt.Fprintf(&b, "  | %q\n", path)
		}
		b.WriteString("\n")
		exported = append(exported, "TokenPath")
	}

	fmt.Fprintf(&b, "declare module %q {\n", d.moduleName)
	b.WriteString("  export const tokens: DesignTokens;\n")
	fmt.Fprintf(&b, "  export { %s };\n", strings.Join(exported, ", "))
	b.WriteString("}\n")

	return &Artifact{
		Name:        "tokens.d.ts",
		ContentType: "application/typescript",
		Body:        []byte(b.String()),
	}, nil
}

type declarationEmitter struct {
	scales map[string][]string
}

// collectScales records every color-scale-shaped map so each gets one named
// literal-union key type.
func (e *declarationEmitter) collectScales(path string, node map[string]any) {
	if tokens.IsColorScale(node) {
		e.scales[path] = tokens.ScaleKeys(node)
		return
	}
	for key, value := range node {
		child, ok := value.(map[string]any)
		if !ok {
			continue
		}
		e.collectScales(path+"."+key, child)
	}
}

func (e *declarationEmitter) writeScaleKeys(b *strings.Builder) {
	paths := make([]string, 0, len(e.scales))
	for path := range e.scales {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		keys := e.scales[path]
		quoted := make([]string, len(keys))
		for i, key := range keys {
			quoted[i] = fmt.Sprintf("%q", key)
		}
		fmt.Fprintf(b, "export type %s = %s;\n", scaleKeyName(path), strings.Join(quoted, " | "))
	}
	if len(paths) > 0 {
		b.WriteString("\n")
	}
}

func (e *declarationEmitter) writeMembers(b *strings.Builder, path string, node map[string]any, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, key := range sortedKeys(node) {
		childPath := path + "." + key
		switch typed := node[key].(type) {
		case map[string]any:
			if _, isScale := e.scales[childPath]; isScale {
				fmt.Fprintf(b, "%s%s: Record<%s, string>;\n", indent, memberName(key), scaleKeyName(childPath))
				continue
			}
			fmt.Fprintf(b, "%s%s: {\n", indent, memberName(key))
			e.writeMembers(b, childPath, typed, depth+1)
			fmt.Fprintf(b, "%s};\n", indent)
		case []any:
			fmt.Fprintf(b, "%s%s: %s[];\n", indent, memberName(key), elementType(typed))
		default:
			fmt.Fprintf(b, "%s%s: %s;\n", indent, memberName(key), scalarType(typed))
		}
	}
}

func scalarType(value any) string {
	switch value.(type) {
	case bool:
		return "boolean"
	case float64, float32, int, int64, uint64:
		return "number"
	default:
		return "string"
	}
}

func elementType(values []any) string {
	if len(values) == 0 {
		return "string"
	}
	return scalarType(values[0])
}

func interfaceName(category string) string {
	return pascalCase(category) + "Tokens"
}

func scaleKeyName(path string) string {
	segments := strings.Split(path, ".")
	parts := make([]string, len(segments))
	for i, segment := range segments {
		parts[i] = pascalCase(segment)
	}
	return strings.Join(parts, "") + "Key"
}

// memberName quotes keys that are not valid TypeScript identifiers, such as
// the 2xl breakpoint.
func memberName(key string) string {
	if isIdentifier(key) {
		return key
	}
	return fmt.Sprintf("%q", key)
}

func isIdentifier(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func pascalCase(segment string) string {
	if segment == "" {
		return segment
	}
	runes := []rune(segment)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
