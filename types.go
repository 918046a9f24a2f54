package tokens

import "time"

// EvalContext carries the inputs a computed-token expression can observe.
type EvalContext struct {
	// Tree is the merged token tree the expression reads from.
	Tree Tree
	// Path is the dot-delimited location of the descriptor being evaluated.
	Path string
	// Now anchors time-dependent expressions. Nil means evaluation time.
	Now *time.Time
	// Metadata carries free-form values exposed to the expression.
	Metadata map[string]any
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now == nil {
		now := time.Now().UTC()
		ctx.Now = &now
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	if ctx.Now != nil {
		return *ctx.Now
	}
	return time.Now().UTC()
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Tree == nil {
		ctx.Tree = Tree{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) withDefaults() EvalContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx EvalContext) pathLabel() string {
	if ctx.Path == "" {
		return "unknown"
	}
	return ctx.Path
}

// Evaluator executes computed-token expressions against an evaluation
// context. Implementations MUST be safe for concurrent use.
type Evaluator interface {
	// Evaluate runs the expression and returns its value.
	Evaluate(ctx EvalContext, expression string) (any, error)
	// Compile pre-compiles the expression for repeated evaluation.
	Compile(expression string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule is a pre-compiled expression that can be evaluated repeatedly
// without re-parsing.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures expression compilation.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	f(cfg)
}
