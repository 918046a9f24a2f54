package tokens

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Function is a helper callable from computed-token expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores expression helpers keyed by lowercase name. Safe for
// concurrent use.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry builds an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register adds fn under name. Names are case-insensitive and must be unique.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("tokens: function %q is nil", name)
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("tokens: function name must be provided")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("tokens: function %q already registered", key)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns an independent copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return NewFunctionRegistry()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewFunctionRegistry()
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call invokes the named helper.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	fn, ok := r.functions[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tokens: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the sorted helper names.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFunctions returns a registry pre-loaded with the built-in token
// helpers alpha and scale. The tree-bound ref helper is injected per
// evaluation pass.
func DefaultFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("alpha", alphaFunc)
	_ = registry.Register("scale", scaleFunc)
	return registry
}

// alphaFunc converts a hex color plus a numeric opacity into an rgba()
// expression: alpha("#0ea5e9", 0.5) => "rgba(14, 165, 233, 0.5)".
func alphaFunc(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("tokens: alpha expects a color and an opacity, got %d arguments", len(args))
	}
	hex, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("tokens: alpha expects a hex color string, got %T", args[0])
	}
	opacity, ok := toFloat(args[1])
	if !ok {
		return nil, fmt.Errorf("tokens: alpha expects a numeric opacity, got %T", args[1])
	}
	r, g, b, err := parseHexColor(hex)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatFloat(opacity)), nil
}

// scaleFunc multiplies a CSS dimension by a factor, preserving the unit:
// scale("1rem", 1.5) => "1.5rem".
func scaleFunc(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("tokens: scale expects a dimension and a factor, got %d arguments", len(args))
	}
	dimension, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("tokens: scale expects a dimension string, got %T", args[0])
	}
	factor, ok := toFloat(args[1])
	if !ok {
		return nil, fmt.Errorf("tokens: scale expects a numeric factor, got %T", args[1])
	}
	match := dimensionRe.FindStringSubmatch(strings.TrimSpace(dimension))
	if match == nil {
		return nil, fmt.Errorf("tokens: scale expects a dimension like \"1rem\", got %q", dimension)
	}
	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil, fmt.Errorf("tokens: scale cannot parse %q: %w", dimension, err)
	}
	return formatFloat(amount*factor) + match[2], nil
}

var dimensionRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)([a-z%]*)$`)

func parseHexColor(value string) (int, int, int, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = strings.Repeat(string(hex[0]), 2) +
			strings.Repeat(string(hex[1]), 2) +
			strings.Repeat(string(hex[2]), 2)
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("tokens: invalid hex color %q", value)
	}
	parsed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("tokens: invalid hex color %q", value)
	}
	return int(parsed >> 16), int(parsed >> 8 & 0xff), int(parsed & 0xff), nil
}

func toFloat(value any) (float64, bool) {
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
