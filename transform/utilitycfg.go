package transform

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	tokens "github.com/goliatone/go-tokens"
)

// UtilityConfig emits a Tailwind-shaped configuration object mirroring the
// resolved token categories.
type UtilityConfig struct {
	content   []string
	prefix    string
	important string
	extend    bool
	plugins   []string
	safelist  []string
}

// UtilityConfigOption configures the utility-framework transformer.
type UtilityConfigOption func(*UtilityConfig)

// WithContent replaces the content globs scanned for class names.
func WithContent(globs ...string) UtilityConfigOption {
	return func(u *UtilityConfig) {
		if len(globs) > 0 {
			u.content = append([]string{}, globs...)
		}
	}
}

// WithClassPrefix sets the utility class prefix.
func WithClassPrefix(prefix string) UtilityConfigOption {
	return func(u *UtilityConfig) {
		u.prefix = strings.TrimSpace(prefix)
	}
}

// WithImportant sets the important strategy: true or a scoping selector.
func WithImportant(selector string) UtilityConfigOption {
	return func(u *UtilityConfig) {
		u.important = strings.TrimSpace(selector)
	}
}

// WithExtend nests the generated theme under theme.extend instead of
// replacing the framework defaults.
func WithExtend() UtilityConfigOption {
	return func(u *UtilityConfig) {
		u.extend = true
	}
}

// WithPlugins lists plugin module names included in the config.
func WithPlugins(plugins ...string) UtilityConfigOption {
	return func(u *UtilityConfig) {
		u.plugins = append([]string{}, plugins...)
	}
}

// WithSafelist records regex patterns for dynamically constructed class names
// that static analysis of the content globs cannot discover. Patterns are
// validated by compiling at transform time.
func WithSafelist(patterns ...string) UtilityConfigOption {
	return func(u *UtilityConfig) {
		u.safelist = append([]string{}, patterns...)
	}
}

// NewUtilityConfig builds the utility-framework-config transformer.
func NewUtilityConfig(opts ...UtilityConfigOption) *UtilityConfig {
	u := &UtilityConfig{
		content: []string{"./src/**/*.{html,js,ts,jsx,tsx}"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// Name implements Transformer.
func (u *UtilityConfig) Name() string { return "utility-config" }

// Transform implements Transformer.
func (u *UtilityConfig) Transform(s *tokens.Store) (*Artifact, error) {
	config, err := u.buildConfig(s)
	if err != nil {
		return nil, &Error{Transformer: u.Name(), Err: err}
	}
	body, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, &Error{Transformer: u.Name(), Err: err}
	}
	return &Artifact{
		Name:        "tailwind.config.json",
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// BuildConfig returns the raw configuration object for callers that embed it
// instead of writing the JSON artifact.
func (u *UtilityConfig) BuildConfig(s *tokens.Store) (map[string]any, error) {
	return u.buildConfig(s)
}

func (u *UtilityConfig) buildConfig(s *tokens.Store) (map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	for _, pattern := range u.safelist {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("safelist pattern %q: %w", pattern, err)
		}
	}

	tree := s.Tokens
	theme := map[string]any{}
	copyCategory(theme, "colors", tree, "colors")
	copyCategory(theme, "fontFamily", tree, "typography.fontFamily")
	copyCategory(theme, "fontSize", tree, "typography.fontSize")
	copyCategory(theme, "fontWeight", tree, "typography.fontWeight")
	copyCategory(theme, "spacing", tree, "spacing")
	copyCategory(theme, "screens", tree, "responsive.breakpoints")
	copyCategory(theme, "borderRadius", tree, "borderRadius")
	copyCategory(theme, "boxShadow", tree, "shadows")
	copyCategory(theme, "zIndex", tree, "zIndex")
	copyCategory(theme, "keyframes", tree, "animation.keyframes")
	copyCategory(theme, "animation", tree, "animation.presets")
	copyCategory(theme, "transitionDuration", tree, "transitions.duration")
	copyCategory(theme, "transitionTimingFunction", tree, "transitions.timing")

	config := map[string]any{
		"content": append([]string{}, u.content...),
	}
	if u.prefix != "" {
		config["prefix"] = u.prefix
	}
	if u.important != "" {
		if u.important == "true" {
			config["important"] = true
		} else {
			config["important"] = u.important
		}
	}
	if u.extend {
		config["theme"] = map[string]any{"extend": theme}
	} else {
		config["theme"] = theme
	}
	config["plugins"] = append([]string{}, u.plugins...)
	if len(u.safelist) > 0 {
		safelist := make([]map[string]any, 0, len(u.safelist))
		for _, pattern := range u.safelist {
			safelist = append(safelist, map[string]any{"pattern": pattern})
		}
		config["safelist"] = safelist
	}
	return config, nil
}

func copyCategory(theme map[string]any, key string, tree tokens.Tree, path string) {
	value, ok := tokens.Value(tree, path)
	if !ok {
		return
	}
	node, ok := value.(map[string]any)
	if !ok || len(node) == 0 {
		return
	}
	theme[key] = tokens.CloneTree(node)
}
