package tokens

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNoEvaluator indicates an evaluation request with no engine available.
var ErrNoEvaluator = errors.New("tokens: evaluator not configured")

// DefaultEngine is the engine used by computed descriptors that do not name
// one.
const DefaultEngine = "expr"

// EngineRegistry stores expression evaluators keyed by engine name. Safe for
// concurrent use.
type EngineRegistry struct {
	mu      sync.RWMutex
	engines map[string]Evaluator
}

// NewEngineRegistry builds an empty registry.
func NewEngineRegistry() *EngineRegistry {
	return &EngineRegistry{engines: map[string]Evaluator{}}
}

// Register adds an evaluator under name. Names are case-insensitive and must
// be unique.
func (r *EngineRegistry) Register(name string, evaluator Evaluator) error {
	if evaluator == nil {
		return fmt.Errorf("tokens: engine %q is nil", name)
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("tokens: engine name must be provided")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[key]; exists {
		return fmt.Errorf("tokens: engine %q already registered", key)
	}
	r.engines[key] = evaluator
	return nil
}

// Lookup returns the evaluator registered under name. An empty name selects
// the default engine.
func (r *EngineRegistry) Lookup(name string) (Evaluator, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultEngine
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	evaluator, ok := r.engines[key]
	return evaluator, ok
}

// Names returns the sorted registered engine names.
func (r *EngineRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *EngineRegistry) Clone() *EngineRegistry {
	if r == nil {
		return NewEngineRegistry()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewEngineRegistry()
	for name, evaluator := range r.engines {
		clone.engines[name] = evaluator
	}
	return clone
}

// DefaultEngines returns a registry holding every built-in engine wired to the
// provided cache and helper registry: expr and cel always, js only when the
// binary was built with the js_eval tag.
func DefaultEngines(cache ProgramCache, functions *FunctionRegistry) *EngineRegistry {
	registry := NewEngineRegistry()
	_ = registry.Register("expr", NewExprEvaluator(
		ExprWithProgramCache(cache),
		ExprWithFunctionRegistry(functions),
	))
	_ = registry.Register("cel", NewCELEvaluator(
		CELWithProgramCache(cache),
		CELWithFunctionRegistry(functions),
	))
	if js := NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(functions)); js != nil {
		_ = registry.Register("js", js)
	}
	return registry
}

// engineName labels an evaluator for diagnostics.
func engineName(evaluator Evaluator) string {
	switch fmt.Sprintf("%T", evaluator) {
	case "*tokens.exprEvaluator":
		return "expr"
	case "*tokens.celEvaluator":
		return "cel"
	case "*tokens.jsEvaluator":
		return "js"
	default:
		return fmt.Sprintf("%T", evaluator)
	}
}
