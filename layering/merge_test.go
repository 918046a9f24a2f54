package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeFromFixture(t *testing.T) {
	fx := loadLayeringFixture(t, "layering_merge.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			got := Merge(tc.Base, tc.Overrides...)
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("merged tree mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{
		"colors": map[string]any{
			"primary":   "#0ea5e9",
			"secondary": "#8b5cf6",
		},
	}
	override := map[string]any{
		"colors": map[string]any{"primary": "#222222"},
	}

	merged := Merge(base, override)

	if got := merged["colors"].(map[string]any)["primary"]; got != "#222222" {
		t.Fatalf("expected override to win, got %v", got)
	}
	if got := merged["colors"].(map[string]any)["secondary"]; got != "#8b5cf6" {
		t.Fatalf("expected untouched sibling to survive, got %v", got)
	}
	if got := base["colors"].(map[string]any)["primary"]; got != "#0ea5e9" {
		t.Fatalf("expected base to remain unchanged, got %v", got)
	}
}

func TestMergeIdempotent(t *testing.T) {
	base := map[string]any{
		"spacing": map[string]any{"4": "1rem", "8": "2rem"},
	}
	override := map[string]any{
		"spacing": map[string]any{"4": "1.25rem"},
	}

	once := Merge(base, override)
	twice := Merge(base, override, override)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected repeated override to be a no-op:\nonce: %#v\ntwice: %#v", once, twice)
	}
}

func TestMergeOrderAssociative(t *testing.T) {
	base := map[string]any{
		"colors": map[string]any{"primary": "#0ea5e9"},
	}
	mid := map[string]any{
		"colors": map[string]any{"primary": "#111111", "accent": "#f59e0b"},
	}
	last := map[string]any{
		"colors": map[string]any{"primary": "#222222"},
	}

	chained := Merge(Merge(base, mid), last)
	flat := Merge(base, mid, last)

	if !reflect.DeepEqual(chained, flat) {
		t.Fatalf("expected chained and flat merges to agree:\nchained: %#v\nflat: %#v", chained, flat)
	}
	if got := flat["colors"].(map[string]any)["primary"]; got != "#222222" {
		t.Fatalf("expected last override to win, got %v", got)
	}
}

func TestMergeNilBase(t *testing.T) {
	got := Merge(nil, map[string]any{"spacing": map[string]any{"4": "1rem"}})
	want := map[string]any{"spacing": map[string]any{"4": "1rem"}}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}

	if got := Merge(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty tree for nil base, got %#v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := map[string]any{
		"typography": map[string]any{
			"fontFamily": []any{"Inter", "sans-serif"},
		},
	}

	copied := Clone(original)
	copied["typography"].(map[string]any)["fontFamily"].([]any)[0] = "Roboto"

	if got := original["typography"].(map[string]any)["fontFamily"].([]any)[0]; got != "Inter" {
		t.Fatalf("expected original slice to be untouched, got %v", got)
	}
}

func BenchmarkMerge(b *testing.B) {
	base := map[string]any{}
	scale := map[string]any{}
	for _, key := range []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"} {
		scale[key] = "#0ea5e9"
	}
	for _, name := range []string{"primary", "secondary", "accent", "neutral"} {
		base[name] = scale
	}
	tree := map[string]any{"colors": base, "spacing": map[string]any{"4": "1rem"}}
	override := map[string]any{"colors": map[string]any{"primary": map[string]any{"500": "#222222"}}}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Merge(tree, override)
	}
}

type layeringFixture struct {
	Description string                `json:"description"`
	Cases       []layeringFixtureCase `json:"cases"`
}

type layeringFixtureCase struct {
	Name      string           `json:"name"`
	Base      map[string]any   `json:"base"`
	Overrides []map[string]any `json:"overrides"`
	Expect    map[string]any   `json:"expect"`
	Notes     string           `json:"notes"`
}

func loadLayeringFixture(t *testing.T, name string) layeringFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read layering fixture %q: %v", name, err)
	}
	var fx layeringFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal layering fixture %q: %v", name, err)
	}
	return fx
}
