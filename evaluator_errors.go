package tokens

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError describes a computed-token expression failure enriched with
// the engine, the expression and the tree path being evaluated.
type EvaluationError struct {
	Engine string
	Expr   string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	engine := e.Engine
	if engine == "" {
		engine = "unknown"
	}
	path := e.Path
	if path == "" {
		path = "unknown"
	}
	return fmt.Sprintf("tokens: %s evaluator %s path=%s: %v", engine, describeExpression(e.Expr), path, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is and errors.As.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func describeExpression(expression string) string {
	if expression == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expression)
}

// wrapEvaluatorError normalises raw engine failures so every evaluator
// surfaces errors under the same prefix. Errors that already carry evaluation
// context pass through untouched.
func wrapEvaluatorError(engine, expression string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "tokens:") {
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expression, Err: err}
}

// wrapEvaluationError attaches engine, expression and path context to err,
// enriching an existing EvaluationError in place of wrapping it twice.
func wrapEvaluationError(engine, expression, path string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expression
		}
		if evalErr.Path == "" {
			evalErr.Path = path
		}
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expression, Path: path, Err: err}
}
