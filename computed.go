package tokens

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Computed-descriptor keys.
const (
	computedExprKey     = "expr"
	computedEngineKey   = "engine"
	computedFallbackKey = "fallback"
)

// Computed describes a computed-token descriptor: an expression, the engine
// that should run it and a fallback substituted when evaluation fails.
type Computed struct {
	Expr     string
	Engine   string
	Fallback any
}

// IsComputed reports whether the mapping is shaped like a computed-token
// descriptor: an "expr" string plus optional "engine" and "fallback" entries
// and nothing else.
func IsComputed(node map[string]any) bool {
	if len(node) == 0 {
		return false
	}
	if _, ok := node[computedExprKey].(string); !ok {
		return false
	}
	for key := range node {
		switch key {
		case computedExprKey, computedEngineKey, computedFallbackKey:
		default:
			return false
		}
	}
	return true
}

// ParseComputed extracts the descriptor fields from node. Callers should check
// IsComputed first; unshaped input yields a zero descriptor.
func ParseComputed(node map[string]any) Computed {
	expr, _ := node[computedExprKey].(string)
	engine, _ := node[computedEngineKey].(string)
	return Computed{
		Expr:     expr,
		Engine:   engine,
		Fallback: node[computedFallbackKey],
	}
}

type evalConfig struct {
	engines   *EngineRegistry
	cache     ProgramCache
	functions *FunctionRegistry
	logger    Logger
	metadata  map[string]any
	now       *time.Time
	strict    bool
}

// EvalOption configures a computed-token evaluation pass.
type EvalOption func(*evalConfig)

// WithEngines replaces the engine registry used by the pass. Evaluators in a
// custom registry carry their own helper registries; the tree-bound ref helper
// is only injected into the default engines.
func WithEngines(registry *EngineRegistry) EvalOption {
	return func(cfg *evalConfig) {
		if registry != nil {
			cfg.engines = registry
		}
	}
}

// WithProgramCache shares a compiled-program cache across passes.
func WithProgramCache(cache ProgramCache) EvalOption {
	return func(cfg *evalConfig) {
		cfg.cache = cache
	}
}

// WithFunctions replaces the helper registry exposed to expressions.
func WithFunctions(registry *FunctionRegistry) EvalOption {
	return func(cfg *evalConfig) {
		if registry != nil {
			cfg.functions = registry
		}
	}
}

// WithEvalLogger attaches a logger to the pass; nil restores the no-op logger.
func WithEvalLogger(logger Logger) EvalOption {
	return func(cfg *evalConfig) {
		if logger == nil {
			logger = NopLogger()
		}
		cfg.logger = logger
	}
}

// WithEvalMetadata exposes additional values to expressions under the
// metadata variable.
func WithEvalMetadata(metadata map[string]any) EvalOption {
	return func(cfg *evalConfig) {
		cfg.metadata = metadata
	}
}

// WithEvalNow pins the timestamp expressions observe, keeping passes
// reproducible.
func WithEvalNow(now time.Time) EvalOption {
	return func(cfg *evalConfig) {
		cfg.now = &now
	}
}

// WithStrictComputed aborts the pass on the first evaluation failure instead
// of substituting fallbacks.
func WithStrictComputed() EvalOption {
	return func(cfg *evalConfig) {
		cfg.strict = true
	}
}

// EvaluateComputed returns a copy of the store with every computed descriptor
// replaced by its evaluated value. Expressions observe the tree as it stood
// before the pass, so descriptors cannot see each other's results. A failing
// descriptor resolves to its fallback unless strict mode is enabled.
func EvaluateComputed(s *Store, opts ...EvalOption) (*Store, error) {
	if s == nil {
		return nil, errors.New("tokens: store is required")
	}

	cfg := evalConfig{logger: NopLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.functions == nil {
		cfg.functions = DefaultFunctions()
	}

	result := s.Clone()
	frozen := layeringCloneTree(s.Tokens)

	functions := cfg.functions.Clone()
	_ = functions.Register("ref", refFunc(frozen))

	engines := cfg.engines
	if engines == nil {
		engines = DefaultEngines(cfg.cache, functions)
	}

	for _, found := range findComputed(frozen) {
		value, err := evaluateDescriptor(engines, frozen, found.Path, found.Descriptor, cfg)
		if err != nil {
			if cfg.strict {
				return nil, err
			}
			cfg.logger.Warnf("tokens: computed value at %s fell back: %v", found.Path, err)
			value = found.Descriptor.Fallback
		}
		setValue(result.Tokens, found.Path, value)
	}
	return result, nil
}

func layeringCloneTree(tree Tree) Tree {
	return CloneTree(tree)
}

// refFunc builds the tree-bound reference helper exposed to expressions:
// ref("colors.primary.500") or ref("colors.accent", "#f59e0b").
func refFunc(tree Tree) Function {
	return func(args ...any) (any, error) {
		if len(args) == 0 || len(args) > 2 {
			return nil, fmt.Errorf("tokens: ref expects a path and an optional fallback, got %d arguments", len(args))
		}
		path, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("tokens: ref expects a path string, got %T", args[0])
		}
		fallback := ""
		if len(args) == 2 {
			fallback, ok = args[1].(string)
			if !ok {
				return nil, fmt.Errorf("tokens: ref expects a string fallback, got %T", args[1])
			}
		}
		return Resolve(Ref(path, fallback), tree), nil
	}
}

type computedLeaf struct {
	Path       string
	Descriptor Computed
}

func findComputed(tree Tree) []computedLeaf {
	return appendComputed(nil, "", tree)
}

func appendComputed(acc []computedLeaf, prefix string, value any) []computedLeaf {
	node, ok := value.(map[string]any)
	if !ok {
		return acc
	}
	if IsComputed(node) {
		return append(acc, computedLeaf{Path: prefix, Descriptor: ParseComputed(node)})
	}

	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		acc = appendComputed(acc, joinPath(prefix, key), node[key])
	}
	return acc
}

func evaluateDescriptor(engines *EngineRegistry, tree Tree, path string, desc Computed, cfg evalConfig) (any, error) {
	engineKey := desc.Engine
	if engineKey == "" {
		engineKey = DefaultEngine
	}
	evaluator, ok := engines.Lookup(engineKey)
	if !ok || evaluator == nil {
		return nil, wrapEvaluationError(engineKey, desc.Expr, path,
			fmt.Errorf("%w: engine %q", ErrNoEvaluator, engineKey))
	}
	if strings.TrimSpace(desc.Expr) == "" {
		return nil, wrapEvaluationError(engineKey, desc.Expr, path,
			errors.New("expression must not be empty"))
	}

	ctx := EvalContext{
		Tree:     tree,
		Path:     path,
		Now:      cfg.now,
		Metadata: cfg.metadata,
	}
	started := time.Now()
	result, err := evaluator.Evaluate(ctx, desc.Expr)
	cfg.logger.Debugf("tokens: %s evaluator %s path=%s took %s",
		engineName(evaluator), describeExpression(desc.Expr), ctx.pathLabel(), time.Since(started))
	if err != nil {
		return nil, wrapEvaluationError(engineName(evaluator), desc.Expr, path, err)
	}
	return result, nil
}

func setValue(tree Tree, path string, value any) {
	segments := strings.Split(path, ".")
	current := tree
	for i, segment := range segments {
		if i == len(segments)-1 {
			current[segment] = value
			return
		}
		next, ok := current[segment].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
}
