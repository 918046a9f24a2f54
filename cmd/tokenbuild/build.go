package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/transform"
)

var flagConfig string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Merge themes, evaluate computed values and emit artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		return runBuild(config)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&flagConfig, "config", "c", "tokens.yaml", "build manifest")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(config *BuildConfig) error {
	store, err := resolveStore(config)
	if err != nil {
		return err
	}

	transformers, err := selectTransformers(config.Transformers)
	if err != nil {
		return err
	}

	artifacts, runErr := transform.Run(store, transformers...)
	for _, artifact := range artifacts {
		path := filepath.Join(config.Output, artifact.Name)
		if err := os.MkdirAll(config.Output, 0o755); err != nil {
			return fmt.Errorf("create output dir %q: %w", config.Output, err)
		}
		if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
			return fmt.Errorf("write artifact %q: %w", path, err)
		}
		logger.Infof("wrote %s (%d bytes)", path, len(artifact.Body))
	}
	if runErr != nil {
		// Remaining artifacts were still written; surface what failed.
		return runErr
	}
	logger.Infof("build complete: theme=%s artifacts=%d", config.Theme, len(artifacts))
	return nil
}

// resolveStore loads the base and theme trees, merges the selected theme and
// evaluates computed descriptors.
func resolveStore(config *BuildConfig) (*tokens.Store, error) {
	baseTree, err := loadTree(config.Base)
	if err != nil {
		return nil, err
	}
	base := tokens.New(config.Metadata.Metadata(), baseTree)

	opts := []tokens.RegistryOption{tokens.WithRegistryLogger(engineLogger())}
	names := make([]string, 0, len(config.Themes))
	for name := range config.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		overrides, err := loadTree(config.Themes[name])
		if err != nil {
			return nil, err
		}
		opts = append(opts, tokens.WithTheme(name, overrides))
	}

	registry, err := tokens.NewRegistry(base, opts...)
	if err != nil {
		return nil, err
	}

	merged := registry.MergedWithFallback(config.Theme, "")
	return tokens.EvaluateComputed(merged, tokens.WithEvalLogger(engineLogger()))
}

// selectTransformers maps manifest names onto registered transformers. An
// empty list selects every built-in.
func selectTransformers(names []string) ([]transform.Transformer, error) {
	registry := transform.DefaultRegistry()
	if len(names) == 0 {
		names = registry.Names()
	}

	transformers := make([]transform.Transformer, 0, len(names))
	for _, name := range names {
		t, ok := registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown transformer %q (known: %v)", name, registry.Names())
		}
		transformers = append(transformers, t)
	}
	return transformers, nil
}
