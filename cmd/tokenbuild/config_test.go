package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tokens.yaml", `
metadata:
  id: base
  name: base
  category: core
  mode: dark
  version: 1.0.0
base: tokens/base.json
themes:
  dark: tokens/dark.json
theme: dark
output: dist
transformers:
  - css-vars
  - declarations
serialize:
  format: yaml
  compression: gzip
  minify: true
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Base != filepath.Join(dir, "tokens/base.json") {
		t.Fatalf("expected base path resolved against config dir, got %q", config.Base)
	}
	if config.Themes["dark"] != filepath.Join(dir, "tokens/dark.json") {
		t.Fatalf("expected theme path resolved, got %q", config.Themes["dark"])
	}
	if config.Theme != "dark" || config.Output != filepath.Join(dir, "dist") {
		t.Fatalf("unexpected config: %+v", config)
	}
	want := []string{"css-vars", "declarations"}
	if !reflect.DeepEqual(want, config.Transformers) {
		t.Fatalf("expected %v, got %v", want, config.Transformers)
	}
	if config.Serialize.Format != "yaml" || config.Serialize.Compression != "gzip" || !config.Serialize.Minify {
		t.Fatalf("unexpected serialize block: %+v", config.Serialize)
	}

	md := config.Metadata.Metadata()
	if err := md.Validate(); err != nil {
		t.Fatalf("expected valid metadata, got %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tokens.yaml", "base: base.json\nmetadata: {id: x, name: x, category: x, version: 1.0.0}\n")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Theme != "light" {
		t.Fatalf("expected default theme, got %q", config.Theme)
	}
	if filepath.Base(config.Output) != "dist" {
		t.Fatalf("expected default output, got %q", config.Output)
	}
	if config.Serialize.Format != "json" {
		t.Fatalf("expected default format, got %q", config.Serialize.Format)
	}
}

func TestLoadConfigRejections(t *testing.T) {
	dir := t.TempDir()

	missingBase := writeFile(t, dir, "nobase.yaml", "theme: dark\n")
	if _, err := LoadConfig(missingBase); err == nil {
		t.Fatal("expected error for config without base")
	}

	unknownField := writeFile(t, dir, "unknown.yaml", "base: base.json\ntypo: true\n")
	if _, err := LoadConfig(unknownField); err == nil {
		t.Fatal("expected error for unknown config field")
	}

	if _, err := LoadConfig(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadTree(t *testing.T) {
	dir := t.TempDir()

	jsonPath := writeFile(t, dir, "base.json", `{"spacing": {"md": "1rem"}, "zIndex": {"modal": 50}}`)
	tree, err := loadTree(jsonPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree["spacing"].(map[string]any)["md"] != "1rem" {
		t.Fatalf("unexpected tree: %v", tree)
	}
	// Numbers normalize to float64 regardless of source format.
	if tree["zIndex"].(map[string]any)["modal"] != float64(50) {
		t.Fatalf("expected normalized number, got %T", tree["zIndex"].(map[string]any)["modal"])
	}

	yamlPath := writeFile(t, dir, "dark.yaml", "colors:\n  background: \"#0f172a\"\n  weight: 600\n")
	tree, err = loadTree(yamlPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree["colors"].(map[string]any)["background"] != "#0f172a" {
		t.Fatalf("unexpected tree: %v", tree)
	}
	if tree["colors"].(map[string]any)["weight"] != float64(600) {
		t.Fatalf("expected normalized yaml number, got %T", tree["colors"].(map[string]any)["weight"])
	}
}

func TestSelectTransformers(t *testing.T) {
	all, err := selectTransformers(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected every built-in transformer, got %d", len(all))
	}

	subset, err := selectTransformers([]string{"css-vars"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subset) != 1 || subset[0].Name() != "css-vars" {
		t.Fatalf("unexpected selection: %v", subset)
	}

	if _, err := selectTransformers([]string{"sass"}); err == nil {
		t.Fatal("expected error for unknown transformer")
	}
}
