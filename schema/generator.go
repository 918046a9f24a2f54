// Package schema derives JSON-Schema documents from token stores and
// validates arbitrary token trees against them. Constraints come from the
// shapes and value patterns actually observed: hex color strings, CSS
// dimension suffixes, numeric font weights and color-scale keyed maps.
package schema

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	tokens "github.com/goliatone/go-tokens"
)

// Document is a JSON-Schema-shaped mapping.
type Document = map[string]any

// Value patterns recognised by the generator.
const (
	HexColorPattern  = `^#[0-9a-fA-F]{6}$`
	DimensionPattern = `^-?\d+(\.\d+)?(px|rem|em|%|vh|vw)$`
	ScaleKeyPattern  = `^[0-9]+$`
)

var (
	hexColorRe  = regexp.MustCompile(HexColorPattern)
	dimensionRe = regexp.MustCompile(DimensionPattern)
)

// Generate derives a schema document from the store's token tree. The result
// always validates the tree it was generated from.
func Generate(s *tokens.Store, opts ...Option) Document {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var tree tokens.Tree
	if s != nil {
		tree = s.Tokens
	}

	doc := buildNode("", tree, cfg)
	doc["$schema"] = string(cfg.draft)
	doc["title"] = cfg.title
	return doc
}

// GenerateCategories derives one schema document per top-level category,
// keyed by category name. Used by the per-category schema transformer to
// assemble $defs-joined documents.
func GenerateCategories(s *tokens.Store, opts ...Option) map[string]Document {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := map[string]Document{}
	if s == nil {
		return out
	}
	for name, value := range s.Tokens {
		node, ok := value.(map[string]any)
		if !ok {
			continue
		}
		doc := buildNode(name, node, cfg)
		doc["title"] = titleCase(name)
		out[name] = doc
	}
	return out
}

func buildNode(path string, value any, cfg generatorConfig) Document {
	switch typed := value.(type) {
	case map[string]any:
		if tokens.IsColorScale(typed) {
			return scaleSchema(typed, cfg)
		}
		return objectSchema(path, typed, cfg)
	case string:
		return stringSchema(path, typed, cfg)
	case bool:
		return Document{"type": "boolean"}
	case float64, float32, int, int64, uint64:
		return numberSchema(path, typed)
	case []any:
		return arraySchema(path, typed, cfg)
	case nil:
		return Document{"type": "null"}
	default:
		return Document{"type": "string"}
	}
}

func objectSchema(path string, node map[string]any, cfg generatorConfig) Document {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	properties := make(map[string]any, len(node))
	for _, key := range keys {
		properties[key] = buildNode(joinPath(path, key), node[key], cfg)
	}

	doc := Document{
		"type":       "object",
		"properties": properties,
	}
	if len(keys) > 0 {
		doc["required"] = keys
	}
	if cfg.strict {
		doc["additionalProperties"] = false
	}
	return doc
}

func scaleSchema(node map[string]any, cfg generatorConfig) Document {
	schemas := make([]Document, 0, len(node))
	for _, key := range tokens.ScaleKeys(node) {
		entry := buildNode("", node[key], cfg)
		delete(entry, "examples")
		schemas = append(schemas, entry)
	}

	doc := Document{
		"type": "object",
		"patternProperties": map[string]any{
			ScaleKeyPattern: mergeValueSchemas(schemas),
		},
	}
	if cfg.strict {
		doc["additionalProperties"] = false
	}
	return doc
}

// mergeValueSchemas folds the observed entry schemas into one schema that
// accepts every entry: constraints shared by all entries of a type survive,
// disagreements are dropped, and mixed types widen to an anyOf union.
func mergeValueSchemas(schemas []Document) Document {
	if len(schemas) == 0 {
		return Document{"type": "string"}
	}

	byType := map[string]Document{}
	var order []string
	for _, entry := range schemas {
		name, _ := entry["type"].(string)
		merged, seen := byType[name]
		if !seen {
			byType[name] = entry
			order = append(order, name)
			continue
		}
		for field, value := range merged {
			if field == "type" {
				continue
			}
			if !reflect.DeepEqual(entry[field], value) {
				delete(merged, field)
			}
		}
	}

	if len(order) == 1 {
		return byType[order[0]]
	}
	variants := make([]any, len(order))
	for i, name := range order {
		variants[i] = byType[name]
	}
	return Document{"anyOf": variants}
}

func stringSchema(path, value string, cfg generatorConfig) Document {
	doc := Document{"type": "string"}
	switch {
	case hexColorRe.MatchString(value):
		doc["pattern"] = HexColorPattern
	case dimensionRe.MatchString(value):
		doc["pattern"] = DimensionPattern
	}
	if cfg.examples && value != "" {
		doc["examples"] = []any{value}
	}
	return doc
}

func numberSchema(path string, value any) Document {
	doc := Document{"type": "number"}
	if isFontWeightPath(path) {
		// Only constrain when the observed weight actually sits on the
		// hundred grid, so the tree keeps validating its own schema.
		if n, ok := toNumber(value); ok {
			if q := n / 100; q == float64(int64(q)) {
				doc["multipleOf"] = float64(100)
			}
		}
	}
	return doc
}

func arraySchema(path string, values []any, cfg generatorConfig) Document {
	schemas := make([]Document, 0, len(values))
	for _, value := range values {
		entry := buildNode(path, value, cfg)
		delete(entry, "examples")
		schemas = append(schemas, entry)
	}
	items := Document{}
	if len(schemas) > 0 {
		items = mergeValueSchemas(schemas)
	}
	return Document{
		"type":  "array",
		"items": items,
	}
}

func isFontWeightPath(path string) bool {
	for _, segment := range strings.Split(path, ".") {
		if strings.EqualFold(segment, "fontWeight") || strings.EqualFold(segment, "fontWeights") {
			return true
		}
	}
	return false
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
