package schema

import (
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
			"fontWeight": map[string]any{
				"normal": float64(400),
				"bold":   float64(700),
			},
			"fontFamily": map[string]any{
				"sans": []any{"Inter", "sans-serif"},
			},
		},
		"spacing": map[string]any{
			"sm": "0.5rem",
			"md": "1rem",
		},
		"zIndex": map[string]any{
			"modal": float64(50),
		},
		"accessibility": map[string]any{
			"reducedMotion": false,
		},
	})
}

func TestGenerateDerivesPatterns(t *testing.T) {
	doc := Generate(testStore(t))

	if doc["$schema"] != string(Draft07) {
		t.Fatalf("expected draft-07 dialect, got %v", doc["$schema"])
	}

	colors := propertySchema(t, doc, "colors")
	background := propertySchema(t, colors, "background")
	if background["pattern"] != HexColorPattern {
		t.Fatalf("expected hex pattern on colors.background, got %v", background["pattern"])
	}

	primary := propertySchema(t, colors, "primary")
	patterns, ok := primary["patternProperties"].(map[string]any)
	if !ok {
		t.Fatalf("expected patternProperties on color scale, got %v", primary)
	}
	if _, ok := patterns[ScaleKeyPattern]; !ok {
		t.Fatalf("expected scale key pattern, got %v", patterns)
	}

	spacing := propertySchema(t, doc, "spacing")
	sm := propertySchema(t, spacing, "sm")
	if sm["pattern"] != DimensionPattern {
		t.Fatalf("expected dimension pattern on spacing.sm, got %v", sm["pattern"])
	}

	typography := propertySchema(t, doc, "typography")
	weights := propertySchema(t, typography, "fontWeight")
	bold := propertySchema(t, weights, "bold")
	if bold["multipleOf"] != float64(100) {
		t.Fatalf("expected multipleOf 100 on font weight, got %v", bold["multipleOf"])
	}
}

func TestGenerateSelfConsistency(t *testing.T) {
	store := testStore(t)

	for _, name := range []string{"default", "strict", "2020-12"} {
		t.Run(name, func(t *testing.T) {
			var opts []Option
			switch name {
			case "strict":
				opts = append(opts, WithStrict())
			case "2020-12":
				opts = append(opts, WithDraft(Draft202012))
			}
			doc := Generate(store, opts...)
			result := Validate(store.Tokens, doc)
			if !result.Valid {
				t.Fatalf("store failed its own schema: %+v", result.Errors)
			}
		})
	}
}

func TestGenerateSelfConsistencyHeterogeneousValues(t *testing.T) {
	// Nothing guarantees scale entries or array items share a pattern or
	// even a type; the generated schema still has to accept its own tree.
	store := tokens.New(tokens.Metadata{
		ID:       "base",
		Name:     "base",
		Category: "core",
		Mode:     tokens.ModeLight,
		Version:  "1.0.0",
	}, tokens.Tree{
		"colors": map[string]any{
			"primary": map[string]any{
				"50":  "#e0f2fe",
				"100": "4px",
			},
		},
		"zIndex": map[string]any{
			"10": float64(10),
			"20": "auto",
		},
		"typography": map[string]any{
			"fontWeight": map[string]any{
				"display": float64(450),
			},
			"fontFamily": []any{"Inter", float64(400)},
		},
	})

	for _, name := range []string{"default", "strict"} {
		t.Run(name, func(t *testing.T) {
			var opts []Option
			if name == "strict" {
				opts = append(opts, WithStrict())
			}
			doc := Generate(store, opts...)
			result := Validate(store.Tokens, doc)
			if !result.Valid {
				t.Fatalf("store failed its own schema: %+v", result.Errors)
			}
		})
	}

	doc := Generate(store)

	// Mixed string patterns widen to an unconstrained string schema.
	primary := propertySchema(t, propertySchema(t, doc, "colors"), "primary")
	patterns := primary["patternProperties"].(map[string]any)
	valueSchema := patterns[ScaleKeyPattern].(map[string]any)
	if valueSchema["type"] != "string" || valueSchema["pattern"] != nil {
		t.Fatalf("expected pattern dropped on mixed scale, got %v", valueSchema)
	}

	// Mixed value types widen to an anyOf union.
	zIndex := propertySchema(t, doc, "zIndex")
	zPatterns := zIndex["patternProperties"].(map[string]any)
	zValue := zPatterns[ScaleKeyPattern].(map[string]any)
	variants, ok := zValue["anyOf"].([]any)
	if !ok || len(variants) != 2 {
		t.Fatalf("expected two-variant anyOf on mixed-type scale, got %v", zValue)
	}

	// An off-grid font weight gets no multipleOf constraint.
	weights := propertySchema(t, propertySchema(t, doc, "typography"), "fontWeight")
	display := propertySchema(t, weights, "display")
	if _, constrained := display["multipleOf"]; constrained {
		t.Fatalf("expected no multipleOf for weight 450, got %v", display)
	}
}

func TestValidateAnyOfRejectsUnlistedType(t *testing.T) {
	store := tokens.New(tokens.Metadata{
		ID:       "base",
		Name:     "base",
		Category: "core",
		Mode:     tokens.ModeLight,
		Version:  "1.0.0",
	}, tokens.Tree{
		"zIndex": map[string]any{
			"10": float64(10),
			"20": "auto",
		},
	})
	doc := Generate(store)

	broken := tokens.CloneTree(store.Tokens)
	broken["zIndex"].(map[string]any)["20"] = true

	result := Validate(broken, doc)
	if result.Valid {
		t.Fatal("expected boolean scale entry to fail the string/number union")
	}
	if result.Errors[0].Path != "zIndex.20" {
		t.Fatalf("expected issue at zIndex.20, got %+v", result.Errors)
	}
}

func TestValidateReportsEveryIssue(t *testing.T) {
	store := testStore(t)
	doc := Generate(store, WithStrict())

	broken := tokens.CloneTree(store.Tokens)
	colors := broken["colors"].(map[string]any)
	colors["background"] = "not-a-color"
	delete(broken["spacing"].(map[string]any), "sm")
	broken["zIndex"].(map[string]any)["modal"] = "high"

	result := Validate(broken, doc)
	if result.Valid {
		t.Fatal("expected validation to fail")
	}
	if len(result.Errors) < 3 {
		t.Fatalf("expected at least 3 issues, got %+v", result.Errors)
	}

	byPath := map[string]string{}
	for _, issue := range result.Errors {
		byPath[issue.Path] = issue.Message
	}
	if _, ok := byPath["colors.background"]; !ok {
		t.Fatalf("expected pattern issue at colors.background, got %v", byPath)
	}
	if _, ok := byPath["spacing.sm"]; !ok {
		t.Fatalf("expected required issue at spacing.sm, got %v", byPath)
	}
	if _, ok := byPath["zIndex.modal"]; !ok {
		t.Fatalf("expected type issue at zIndex.modal, got %v", byPath)
	}
}

func TestValidateStrictRejectsUnknownProperties(t *testing.T) {
	store := testStore(t)
	doc := Generate(store, WithStrict())

	extended := tokens.CloneTree(store.Tokens)
	extended["surprise"] = "value"

	result := Validate(extended, doc)
	if result.Valid {
		t.Fatal("expected strict validation to fail on unknown property")
	}
}

func TestValidationErrorListsAllIssues(t *testing.T) {
	err := &ValidationError{Issues: []Issue{
		{Path: "colors.background", Message: "bad pattern"},
		{Path: "spacing.sm", Message: "required property is missing"},
	}}
	message := err.Error()
	if !strings.Contains(message, "colors.background") || !strings.Contains(message, "spacing.sm") {
		t.Fatalf("expected every issue in message, got %q", message)
	}
}

func TestGenerateCategories(t *testing.T) {
	docs := GenerateCategories(testStore(t))
	if _, ok := docs["colors"]; !ok {
		t.Fatalf("expected colors category document, got %v", docs)
	}
	if docs["colors"]["title"] != "Colors" {
		t.Fatalf("expected titled category, got %v", docs["colors"]["title"])
	}
}

func propertySchema(t *testing.T, doc Document, name string) Document {
	t.Helper()
	properties, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", doc)
	}
	child, ok := properties[name].(map[string]any)
	if !ok {
		t.Fatalf("schema has no property %q: %v", name, properties)
	}
	return child
}
