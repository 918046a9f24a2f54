package transform

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tokens "github.com/goliatone/go-tokens"
)

func testStore(t *testing.T) *tokens.Store {
	t.Helper()
	return tokens.New(tokens.Metadata{
		ID:       "base",
		Name:     "base",
		Category: "core",
		Mode:     tokens.ModeLight,
		Version:  "1.0.0",
	}, tokens.Tree{
		"colors": map[string]any{
			"primary": map[string]any{
				"500": "#0ea5e9",
				"600": "#0284c7",
			},
			"background": "#ffffff",
		},
		"typography": map[string]any{
			"fontFamily": map[string]any{
				"sans": []any{"Inter", "sans-serif"},
			},
			"fontWeight": map[string]any{
				"bold": float64(700),
			},
		},
		"spacing": map[string]any{
			"sm": "0.5rem",
			"md": "1rem",
		},
		"borderRadius": map[string]any{
			"lg": "0.5rem",
		},
		"zIndex": map[string]any{
			"modal": float64(50),
		},
		"branding": map[string]any{
			"logoUrl": "https://example.com/logo.svg",
		},
		"responsive": map[string]any{
			"breakpoints": map[string]any{
				"sm": "640px",
				"md": "768px",
			},
		},
	})
}

type failingTransformer struct{}

func (failingTransformer) Name() string { return "failing" }

func (failingTransformer) Transform(*tokens.Store) (*Artifact, error) {
	return nil, errors.New("boom")
}

func TestRunIsolatesFailures(t *testing.T) {
	artifacts, err := Run(testStore(t), NewCSSVars(), failingTransformer{}, NewDeclarations())
	if err == nil {
		t.Fatal("expected joined error from failing transformer")
	}

	var wrapped *Error
	if !errors.As(err, &wrapped) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if wrapped.Transformer != "failing" {
		t.Fatalf("expected failure attributed to failing, got %q", wrapped.Transformer)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected surviving artifacts from healthy transformers, got %d", len(artifacts))
	}
}

func TestCSSVarsDeclarationBlock(t *testing.T) {
	artifact, err := NewCSSVars(WithPrefix("app")).Transform(testStore(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	css := string(artifact.Body)
	if !strings.HasPrefix(css, ":root {") {
		t.Fatalf("expected :root scope, got %q", css[:20])
	}
	for _, want := range []string{
		"--app-colors-primary-500: #0ea5e9;",
		"--app-spacing-md: 1rem;",
		"--app-zIndex-modal: 50;",
		`--app-typography-fontFamily-sans: Inter, sans-serif;`,
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected declaration %q in output:\n%s", want, css)
		}
	}
	if strings.Contains(css, ".text-") {
		t.Fatal("expected no utility classes without WithUtilities")
	}
}

func TestCSSVarsUtilitiesAndMediaQueries(t *testing.T) {
	artifact, err := NewCSSVars(WithUtilities(), WithMediaQueries()).Transform(testStore(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	css := string(artifact.Body)
	for _, want := range []string{
		".text-primary-500 { color: var(--colors-primary-500); }",
		".bg-background { background-color: var(--colors-background); }",
		".m-md { margin: var(--spacing-md); }",
		"@media (min-width: 640px) {",
		".sm-text-primary-500",
		"@media (min-width: 768px) {",
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected %q in output:\n%s", want, css)
		}
	}

	// Narrower breakpoints must come first.
	if strings.Index(css, "640px") > strings.Index(css, "768px") {
		t.Fatal("expected media blocks ordered narrowest first")
	}
}

func TestCSSVarsCustomSelector(t *testing.T) {
	artifact, err := NewCSSVars(WithSelector(".theme-dark")).Transform(testStore(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if !strings.HasPrefix(string(artifact.Body), ".theme-dark {") {
		t.Fatalf("expected custom selector, got %q", string(artifact.Body[:20]))
	}
}

func TestUtilityConfigShape(t *testing.T) {
	transformer := NewUtilityConfig(
		WithClassPrefix("tw-"),
		WithImportant("#app"),
		WithExtend(),
		WithPlugins("@tailwindcss/forms"),
		WithSafelist(`^bg-(red|green|blue)-\d{3}$`),
	)
	artifact, err := transformer.Transform(testStore(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	var config map[string]any
	if err := json.Unmarshal(artifact.Body, &config); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if config["prefix"] != "tw-" {
		t.Fatalf("expected prefix tw-, got %v", config["prefix"])
	}
	if config["important"] != "#app" {
		t.Fatalf("expected important selector, got %v", config["important"])
	}

	theme, ok := config["theme"].(map[string]any)
	if !ok {
		t.Fatalf("expected theme object, got %v", config["theme"])
	}
	extend, ok := theme["extend"].(map[string]any)
	if !ok {
		t.Fatalf("expected theme.extend with WithExtend, got %v", theme)
	}
	for _, category := range []string{"colors", "spacing", "screens", "borderRadius", "zIndex", "fontFamily"} {
		if _, ok := extend[category]; !ok {
			t.Fatalf("expected %s in theme.extend, got %v", category, extend)
		}
	}

	safelist, ok := config["safelist"].([]any)
	if !ok || len(safelist) != 1 {
		t.Fatalf("expected one safelist entry, got %v", config["safelist"])
	}
}

func TestUtilityConfigRejectsInvalidSafelistPattern(t *testing.T) {
	_, err := NewUtilityConfig(WithSafelist(`^bg-(`)).Transform(testStore(t))
	var wrapped *Error
	if !errors.As(err, &wrapped) {
		t.Fatalf("expected *Error for invalid pattern, got %v", err)
	}
}

func TestDeclarationsOutput(t *testing.T) {
	artifact, err := NewDeclarations(WithModuleName("@acme/tokens")).Transform(testStore(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	dts := string(artifact.Body)
	for _, want := range []string{
		`export type ColorsPrimaryKey = "500" | "600";`,
		"primary: Record<ColorsPrimaryKey, string>;",
		"export interface ColorsTokens {",
		"export interface BrandingTokens {",
		"[key: string]: unknown;",
		"export interface DesignTokens {",
		`| "colors.primary.500"`,
		`declare module "@acme/tokens" {`,
		"modal: number;",
		"sans: string[];",
	} {
		if !strings.Contains(dts, want) {
			t.Fatalf("expected %q in declarations:\n%s", want, dts)
		}
	}
}

func TestSchemaDocPerCategory(t *testing.T) {
	artifact, err := NewSchemaDoc(WithPerCategory()).Transform(testStore(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(artifact.Body, &doc); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	defs, ok := doc["$defs"].(map[string]any)
	if !ok {
		t.Fatalf("expected $defs, got %v", doc)
	}
	if _, ok := defs["colors"]; !ok {
		t.Fatalf("expected colors definition, got %v", defs)
	}
	properties := doc["properties"].(map[string]any)
	colorsRef := properties["colors"].(map[string]any)
	if colorsRef["$ref"] != "#/$defs/colors" {
		t.Fatalf("expected $ref join, got %v", colorsRef)
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	want := []string{"css-vars", "declarations", "schema", "utility-config"}
	got := registry.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if _, ok := registry.Get("css-vars"); !ok {
		t.Fatal("expected css-vars to be retrievable")
	}
}
