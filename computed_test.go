package tokens

import (
	"errors"
	"strings"
	"testing"
)

func computedStore() *Store {
	return New(validMetadata(), Tree{
		"colors": map[string]any{
			"primary": map[string]any{"500": "#0ea5e9"},
			"overlay": map[string]any{
				"expr":     `alpha(ref("colors.primary.500"), 0.5)`,
				"fallback": "rgba(0, 0, 0, 0.5)",
			},
		},
		"spacing": map[string]any{
			"md": "1rem",
			"lg": map[string]any{
				"expr": `scale(ref("spacing.md"), 2)`,
			},
		},
	})
}

func TestIsComputed(t *testing.T) {
	tests := []struct {
		name string
		node map[string]any
		want bool
	}{
		{"expr only", map[string]any{"expr": "1 + 1"}, true},
		{"full descriptor", map[string]any{"expr": "1 + 1", "engine": "cel", "fallback": "2"}, true},
		{"missing expr", map[string]any{"engine": "expr"}, false},
		{"non-string expr", map[string]any{"expr": 42}, false},
		{"foreign key", map[string]any{"expr": "1 + 1", "token": "spacing.md"}, false},
		{"empty", map[string]any{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsComputed(tc.node); got != tc.want {
				t.Errorf("IsComputed(%v) = %v, want %v", tc.node, got, tc.want)
			}
		})
	}
}

func TestParseComputed(t *testing.T) {
	desc := ParseComputed(map[string]any{
		"expr":     "1 + 1",
		"engine":   "cel",
		"fallback": float64(2),
	})
	if desc.Expr != "1 + 1" || desc.Engine != "cel" || desc.Fallback != float64(2) {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
}

func TestEvaluateComputedReplacesDescriptors(t *testing.T) {
	result, err := EvaluateComputed(computedStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overlay, _ := Value(result.Tokens, "colors.overlay")
	if overlay != "rgba(14, 165, 233, 0.5)" {
		t.Fatalf("expected alpha helper result, got %v", overlay)
	}
	lg, _ := Value(result.Tokens, "spacing.lg")
	if lg != "2rem" {
		t.Fatalf("expected scale helper result, got %v", lg)
	}

	// Plain leaves survive unchanged.
	if md, _ := Value(result.Tokens, "spacing.md"); md != "1rem" {
		t.Fatalf("expected plain leaf to survive, got %v", md)
	}
}

func TestEvaluateComputedDoesNotMutateInput(t *testing.T) {
	store := computedStore()
	if _, err := EvaluateComputed(store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, _ := Value(store.Tokens, "spacing.lg")
	if _, ok := raw.(map[string]any); !ok {
		t.Fatalf("expected input descriptor to survive, got %T", raw)
	}
}

func TestEvaluateComputedObservesFrozenTree(t *testing.T) {
	// Descriptors must not see each other's results: a descriptor referencing
	// another computed path resolves the raw descriptor map, which is not a
	// string, so ref falls back.
	store := New(validMetadata(), Tree{
		"spacing": map[string]any{
			"md": map[string]any{"expr": `"1rem"`},
			"lg": map[string]any{"expr": `ref("spacing.md", "fallback")`},
		},
	})

	result, err := EvaluateComputed(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lg, _ := Value(result.Tokens, "spacing.lg"); lg != "fallback" {
		t.Fatalf("expected frozen-tree semantics, got %v", lg)
	}
}

func TestEvaluateComputedLenientFallback(t *testing.T) {
	store := New(validMetadata(), Tree{
		"colors": map[string]any{
			"broken": map[string]any{
				"expr":     `alpha("not-a-color", 0.5)`,
				"fallback": "#000000",
			},
			"accent": "#f59e0b",
		},
	})

	result, err := EvaluateComputed(store)
	if err != nil {
		t.Fatalf("expected lenient pass to succeed, got %v", err)
	}
	if got, _ := Value(result.Tokens, "colors.broken"); got != "#000000" {
		t.Fatalf("expected fallback substitution, got %v", got)
	}
}

func TestEvaluateComputedStrictMode(t *testing.T) {
	store := New(validMetadata(), Tree{
		"colors": map[string]any{
			"broken": map[string]any{
				"expr":     `alpha("not-a-color", 0.5)`,
				"fallback": "#000000",
			},
		},
	})

	_, err := EvaluateComputed(store, WithStrictComputed())
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Path != "colors.broken" {
		t.Fatalf("expected path on error, got %q", evalErr.Path)
	}
}

func TestEvaluateComputedUnknownEngine(t *testing.T) {
	store := New(validMetadata(), Tree{
		"colors": map[string]any{
			"fancy": map[string]any{
				"expr":     "1 + 1",
				"engine":   "lua",
				"fallback": "2",
			},
		},
	})

	_, err := EvaluateComputed(store, WithStrictComputed())
	if !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}

	// Lenient mode substitutes the fallback instead.
	result, err := EvaluateComputed(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := Value(result.Tokens, "colors.fancy"); got != "2" {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestEvaluateComputedEmptyExpression(t *testing.T) {
	store := New(validMetadata(), Tree{
		"colors": map[string]any{
			"blank": map[string]any{"expr": "  ", "fallback": "#fff"},
		},
	})
	if _, err := EvaluateComputed(store, WithStrictComputed()); err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestEvaluateComputedMetadataVariable(t *testing.T) {
	store := New(validMetadata(), Tree{
		"branding": map[string]any{
			"label": map[string]any{"expr": `metadata.tenant`},
		},
	})

	result, err := EvaluateComputed(store, WithEvalMetadata(map[string]any{"tenant": "acme"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := Value(result.Tokens, "branding.label"); got != "acme" {
		t.Fatalf("expected metadata lookup, got %v", got)
	}
}

func TestEvaluateComputedSharedProgramCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	store := New(validMetadata(), Tree{
		"spacing": map[string]any{
			"a": map[string]any{"expr": `scale("1rem", 2)`},
			"b": map[string]any{"expr": `scale("1rem", 2)`},
		},
	})

	result, err := EvaluateComputed(store, WithProgramCache(cache))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, path := range []string{"spacing.a", "spacing.b"} {
		if got, _ := Value(result.Tokens, path); got != "2rem" {
			t.Fatalf("expected cached program result at %s, got %v", path, got)
		}
	}
	if cache.Len() == 0 {
		t.Fatal("expected compiled programs to land in the shared cache")
	}
}

func TestEngineRegistry(t *testing.T) {
	registry := NewEngineRegistry()
	if err := registry.Register("expr", NewExprEvaluator()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.Register("EXPR", NewExprEvaluator()); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := registry.Register("", NewExprEvaluator()); err == nil {
		t.Fatal("expected empty name to fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatal("expected nil evaluator to fail")
	}

	if _, ok := registry.Lookup("expr"); !ok {
		t.Fatal("expected lookup hit")
	}
	// Empty name selects the default engine.
	if _, ok := registry.Lookup(""); !ok {
		t.Fatal("expected default engine lookup hit")
	}
	if _, ok := registry.Lookup("lua"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestDefaultEnginesNames(t *testing.T) {
	engines := DefaultEngines(nil, DefaultFunctions())
	names := engines.Names()

	has := func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
	if !has("expr") || !has("cel") {
		t.Fatalf("expected expr and cel engines, got %v", names)
	}
}

func TestFunctionRegistryHelpers(t *testing.T) {
	registry := DefaultFunctions()

	rgba, err := registry.Call("alpha", "#0ea5e9", 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rgba != "rgba(14, 165, 233, 0.5)" {
		t.Fatalf("unexpected alpha result: %v", rgba)
	}

	// Short hex form expands.
	rgba, err = registry.Call("alpha", "#fff", float64(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rgba != "rgba(255, 255, 255, 1)" {
		t.Fatalf("unexpected alpha result: %v", rgba)
	}

	scaled, err := registry.Call("scale", "1.5rem", float64(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scaled != "3rem" {
		t.Fatalf("unexpected scale result: %v", scaled)
	}

	if _, err := registry.Call("scale", "wide", 2); err == nil {
		t.Fatal("expected error for non-dimension input")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatal("expected error for unregistered helper")
	}
}

func TestEvaluationErrorFormatting(t *testing.T) {
	inner := errors.New("boom")
	err := &EvaluationError{Engine: "expr", Expr: "1 + 1", Path: "colors.x", Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("expected Unwrap to expose the cause")
	}
	message := err.Error()
	for _, fragment := range []string{"expr", `expr="1 + 1"`, "colors.x", "boom"} {
		if !strings.Contains(message, fragment) {
			t.Errorf("expected %q in %q", fragment, message)
		}
	}

	blank := &EvaluationError{Err: inner}
	if !strings.Contains(blank.Error(), "unknown") {
		t.Errorf("expected placeholder labels, got %q", blank.Error())
	}
}
