package tokens

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
// The registry is cloned so later registrations do not leak in.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry != nil {
			e.registry = registry.Clone()
		}
	}
}

// NewExprEvaluator builds the default expression engine backed by expr-lang.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	evaluator := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(evaluator)
		}
	}
	return evaluator
}

type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	ctx = ctx.withDefaultNow().withDefaultMaps()
	env := e.environment(ctx)

	if e.cache == nil {
		result, err := exprlang.Eval(expression, env)
		if err != nil {
			return nil, wrapEvaluatorError("expr", expression, err)
		}
		return result, nil
	}

	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapEvaluatorError("expr", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{evaluator: e, program: program}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}

	compileOpts := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.registry != nil {
		for _, name := range e.registry.Names() {
			fnName := name
			compileOpts = append(compileOpts, exprlang.Function(fnName, func(params ...any) (any, error) {
				return e.registry.Call(fnName, params...)
			}))
		}
	}

	program, err := exprlang.Compile(expression, compileOpts...)
	if err != nil {
		return nil, wrapEvaluatorError("expr", expression, fmt.Errorf("compile: %w", err))
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *exprEvaluator) environment(ctx EvalContext) map[string]any {
	env := map[string]any{
		"now":      ctx.timestamp(),
		"path":     ctx.Path,
		"metadata": ctx.Metadata,
		"tokens":   ctx.Tree,
	}
	// Top-level categories double as bare variables so expressions can say
	// colors.primary instead of tokens.colors.primary.
	for key, value := range ctx.Tree {
		if _, exists := env[key]; !exists {
			env[key] = value
		}
	}
	if e.registry != nil {
		env["call"] = func(name string, args ...any) (any, error) {
			return e.registry.Call(name, args...)
		}
		for _, name := range e.registry.Names() {
			fnName := name
			if _, exists := env[fnName]; exists {
				continue
			}
			env[fnName] = func(args ...any) (any, error) {
				return e.registry.Call(fnName, args...)
			}
		}
	}
	return env
}

type exprCompiledRule struct {
	evaluator *exprEvaluator
	program   *exprvm.Program
}

func (r *exprCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	ctx = ctx.withDefaultNow().withDefaultMaps()
	result, err := exprlang.Run(r.program, r.evaluator.environment(ctx))
	if err != nil {
		return nil, wrapEvaluatorError("expr", "", err)
	}
	return result, nil
}
