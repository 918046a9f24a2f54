package tokens

import (
	"reflect"
	"testing"
)

func TestIsColorScale(t *testing.T) {
	tests := []struct {
		name string
		node map[string]any
		want bool
	}{
		{"tailwind scale", map[string]any{"50": "#f0f9ff", "500": "#0ea5e9", "950": "#082f49"}, true},
		{"numeric values", map[string]any{"100": float64(1), "200": float64(2)}, true},
		{"named keys", map[string]any{"primary": "#0ea5e9"}, false},
		{"mixed keys", map[string]any{"500": "#0ea5e9", "hover": "#0284c7"}, false},
		{"nested value", map[string]any{"500": map[string]any{"hex": "#0ea5e9"}}, false},
		{"empty", map[string]any{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsColorScale(tc.node); got != tc.want {
				t.Errorf("IsColorScale(%v) = %v, want %v", tc.node, got, tc.want)
			}
		})
	}
}

func TestScaleKeysNumericOrder(t *testing.T) {
	node := map[string]any{
		"950": "#082f49",
		"50":  "#f0f9ff",
		"100": "#e0f2fe",
		"500": "#0ea5e9",
	}
	want := []string{"50", "100", "500", "950"}
	if got := ScaleKeys(node); !reflect.DeepEqual(want, got) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
