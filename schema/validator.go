package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	tokens "github.com/goliatone/go-tokens"
)

// Issue reports one structural mismatch found during validation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result aggregates the outcome of one validation pass. Callers decide
// whether Valid: false is fatal.
type Result struct {
	Valid  bool    `json:"valid"`
	Errors []Issue `json:"errors,omitempty"`
}

// ValidationError aggregates every issue of a failed validation. Raised only
// by callers that request fail-fast behaviour; Validate itself never errors.
type ValidationError struct {
	Issues []Issue
}

// Error lists every collected issue, not just the first.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "schema: validation failed"
	}
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = "(root)"
		}
		lines[i] = fmt.Sprintf("%s: %s", path, issue.Message)
	}
	return fmt.Sprintf("schema: validation failed with %d issue(s):\n  %s",
		len(e.Issues), strings.Join(lines, "\n  "))
}

// Validate checks tree against doc and returns every mismatch found. It never
// panics and never returns an error; malformed schema nodes are skipped.
func Validate(tree tokens.Tree, doc Document) Result {
	var issues []Issue
	issues = validateNode(issues, "", tree, doc)
	return Result{Valid: len(issues) == 0, Errors: issues}
}

func validateNode(issues []Issue, path string, value any, doc Document) []Issue {
	if doc == nil {
		return issues
	}

	if variants, ok := doc["anyOf"].([]any); ok {
		return validateAnyOf(issues, path, value, variants)
	}

	schemaType, _ := doc["type"].(string)
	switch schemaType {
	case "object":
		node, ok := value.(map[string]any)
		if !ok {
			return append(issues, Issue{Path: path, Message: fmt.Sprintf("expected object, got %s", typeName(value))})
		}
		issues = validateRequired(issues, path, node, doc)
		issues = validateProperties(issues, path, node, doc)
		issues = validatePatternProperties(issues, path, node, doc)
		issues = validateAdditional(issues, path, node, doc)
	case "string":
		leaf, ok := value.(string)
		if !ok {
			return append(issues, Issue{Path: path, Message: fmt.Sprintf("expected string, got %s", typeName(value))})
		}
		if pattern, ok := doc["pattern"].(string); ok {
			re, err := compiledPattern(pattern)
			if err == nil && !re.MatchString(leaf) {
				issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %q does not match pattern %s", leaf, pattern)})
			}
		}
	case "number":
		n, ok := toNumber(value)
		if !ok {
			return append(issues, Issue{Path: path, Message: fmt.Sprintf("expected number, got %s", typeName(value))})
		}
		if multiple, ok := toNumber(doc["multipleOf"]); ok && multiple > 0 {
			if remainder := n / multiple; remainder != float64(int64(remainder)) {
				issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %v is not a multiple of %v", n, multiple)})
			}
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("expected boolean, got %s", typeName(value))})
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return append(issues, Issue{Path: path, Message: fmt.Sprintf("expected array, got %s", typeName(value))})
		}
		itemSchema, _ := doc["items"].(map[string]any)
		if len(itemSchema) > 0 {
			for i, item := range items {
				issues = validateNode(issues, fmt.Sprintf("%s[%d]", path, i), item, itemSchema)
			}
		}
	case "null":
		if value != nil {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("expected null, got %s", typeName(value))})
		}
	}
	return issues
}

// validateAnyOf accepts the value when any variant accepts it.
func validateAnyOf(issues []Issue, path string, value any, variants []any) []Issue {
	for _, raw := range variants {
		child, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if sub := validateNode(nil, path, value, child); len(sub) == 0 {
			return issues
		}
	}
	return append(issues, Issue{Path: path, Message: fmt.Sprintf("value of type %s matches no allowed variant", typeName(value))})
}

func validateRequired(issues []Issue, path string, node map[string]any, doc Document) []Issue {
	required, ok := doc["required"].([]string)
	if !ok {
		// Decoded schema documents carry []any.
		raw, rawOK := doc["required"].([]any)
		if !rawOK {
			return issues
		}
		for _, item := range raw {
			if name, ok := item.(string); ok {
				required = append(required, name)
			}
		}
	}
	sort.Strings(required)
	for _, name := range required {
		if _, present := node[name]; !present {
			issues = append(issues, Issue{Path: joinPath(path, name), Message: "required property is missing"})
		}
	}
	return issues
}

func validateProperties(issues []Issue, path string, node map[string]any, doc Document) []Issue {
	properties, ok := doc["properties"].(map[string]any)
	if !ok {
		return issues
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		child, ok := properties[key].(map[string]any)
		if !ok {
			continue
		}
		value, present := node[key]
		if !present {
			continue
		}
		issues = validateNode(issues, joinPath(path, key), value, child)
	}
	return issues
}

func validatePatternProperties(issues []Issue, path string, node map[string]any, doc Document) []Issue {
	patterns, ok := doc["patternProperties"].(map[string]any)
	if !ok {
		return issues
	}

	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for pattern, rawSchema := range patterns {
		child, ok := rawSchema.(map[string]any)
		if !ok {
			continue
		}
		re, err := compiledPattern(pattern)
		if err != nil {
			continue
		}
		for _, key := range keys {
			if re.MatchString(key) {
				issues = validateNode(issues, joinPath(path, key), node[key], child)
			}
		}
	}
	return issues
}

func validateAdditional(issues []Issue, path string, node map[string]any, doc Document) []Issue {
	allowed, present := doc["additionalProperties"]
	if !present {
		return issues
	}
	if permitted, ok := allowed.(bool); !ok || permitted {
		return issues
	}

	properties, _ := doc["properties"].(map[string]any)
	patterns, _ := doc["patternProperties"].(map[string]any)

	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, declared := properties[key]; declared {
			continue
		}
		if matchesAnyPattern(key, patterns) {
			continue
		}
		issues = append(issues, Issue{Path: joinPath(path, key), Message: "property is not allowed"})
	}
	return issues
}

func matchesAnyPattern(key string, patterns map[string]any) bool {
	for pattern := range patterns {
		re, err := compiledPattern(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

var (
	patternMu     sync.RWMutex
	compiledCache = map[string]*regexp.Regexp{}
)

func compiledPattern(pattern string) (*regexp.Regexp, error) {
	patternMu.RLock()
	re, ok := compiledCache[pattern]
	patternMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternMu.Lock()
	compiledCache[pattern] = re
	patternMu.Unlock()
	return re, nil
}

func toNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
