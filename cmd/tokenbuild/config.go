package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/codec"
	"github.com/goliatone/go-tokens/internal/hydrate"
)

// BuildConfig is the yaml build manifest tokenbuild consumes.
type BuildConfig struct {
	Metadata     MetadataConfig    `json:"metadata"`
	Base         string            `json:"base"`
	Themes       map[string]string `json:"themes"`
	Theme        string            `json:"theme"`
	Output       string            `json:"output"`
	Transformers []string          `json:"transformers"`
	Serialize    SerializeConfig   `json:"serialize"`
}

// MetadataConfig mirrors tokens.Metadata in manifest form.
type MetadataConfig struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Mode     string `json:"mode"`
	Version  string `json:"version"`
}

// SerializeConfig carries pack options from the manifest.
type SerializeConfig struct {
	Format      string `json:"format"`
	Compression string `json:"compression"`
	Minify      bool   `json:"minify"`
}

// Metadata converts the manifest block into engine metadata.
func (m MetadataConfig) Metadata() tokens.Metadata {
	return tokens.Metadata{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		Mode:     tokens.ParseMode(m.Mode),
		Version:  m.Version,
	}
}

// LoadConfig reads, hydrates and defaults a build manifest. Relative paths in
// the manifest resolve against the manifest's directory.
func LoadConfig(path string) (*BuildConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	payload = codec.NormalizeTree(payload)

	decoder := hydrate.NewDecoder[BuildConfig](
		hydrate.WithDisallowUnknownFields[BuildConfig](),
		hydrate.WithPostHook[BuildConfig](applyConfigDefaults),
	)
	config, err := decoder.Decode(hydrate.Context{Key: path, Source: "file"}, payload)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	config.Base = resolvePath(dir, config.Base)
	config.Output = resolvePath(dir, config.Output)
	for name, themePath := range config.Themes {
		config.Themes[name] = resolvePath(dir, themePath)
	}
	return &config, nil
}

func applyConfigDefaults(_ hydrate.Context, config *BuildConfig) error {
	if config.Base == "" {
		return fmt.Errorf("config must name a base token file")
	}
	if config.Theme == "" {
		config.Theme = tokens.DefaultTheme
	}
	if config.Output == "" {
		config.Output = "dist"
	}
	if config.Serialize.Format == "" {
		config.Serialize.Format = string(codec.JSON)
	}
	return nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// loadTree reads a token tree from a JSON or YAML file, normalized to the
// engine's canonical shapes.
func loadTree(path string) (tokens.Tree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokens %q: %w", path, err)
	}

	var tree map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse tokens %q: %w", path, err)
		}
	default:
		c, err := codec.DefaultRegistry().Lookup(codec.JSON)
		if err != nil {
			return nil, err
		}
		if err := c.Decode(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse tokens %q: %w", path, err)
		}
	}
	return codec.NormalizeTree(tree), nil
}
