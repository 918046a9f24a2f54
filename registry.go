package tokens

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-tokens/layering"
	"github.com/goliatone/go-tokens/pkg/events"
)

// SystemTheme is the synthetic theme name resolved through the mode provider.
const SystemTheme = "system"

// DefaultTheme is the theme substituted when a fallback is not configured.
const DefaultTheme = "light"

// ErrBaseStoreRequired indicates a registry constructed without a base store.
var ErrBaseStoreRequired = errors.New("tokens: base store is required")

// ModeProvider reports the platform's preferred color scheme. Implementations
// live outside the engine; the registry only consumes the signal.
type ModeProvider interface {
	SystemColorMode() (Mode, error)
}

// ModeProviderFunc adapts a function to ModeProvider.
type ModeProviderFunc func() (Mode, error)

// SystemColorMode implements ModeProvider.
func (fn ModeProviderFunc) SystemColorMode() (Mode, error) {
	if fn == nil {
		return ModeLight, nil
	}
	return fn()
}

type registryConfig struct {
	themes       map[string]Tree
	mode         ModeProvider
	logger       Logger
	hooks        events.Hooks
	defaultTheme string
}

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*registryConfig)

// WithTheme pre-registers a named override tree.
func WithTheme(name string, overrides Tree) RegistryOption {
	return func(cfg *registryConfig) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		cfg.themes[name] = layering.Clone(overrides)
	}
}

// WithModeProvider injects the platform-preference collaborator consulted for
// the synthetic system theme.
func WithModeProvider(provider ModeProvider) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.mode = provider
	}
}

// WithRegistryLogger attaches a logger; nil restores the no-op logger.
func WithRegistryLogger(logger Logger) RegistryOption {
	return func(cfg *registryConfig) {
		if logger == nil {
			logger = NopLogger()
		}
		cfg.logger = logger
	}
}

// WithRegistryHooks attaches lifecycle hooks notified on registrations and
// cache invalidations. Hook failures are logged, never propagated.
func WithRegistryHooks(hooks events.Hooks) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.hooks = hooks
	}
}

// WithDefaultTheme overrides the theme substituted for empty fallbacks.
func WithDefaultTheme(name string) RegistryOption {
	return func(cfg *registryConfig) {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.defaultTheme = name
		}
	}
}

// Registry holds named override trees and hands out merged-with-base views.
// Entries are immutable once registered: re-registration replaces the entry
// and invalidates the whole merged cache. Safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	base         *Store
	themes       map[string]Tree
	merged       map[string]*Store
	mode         ModeProvider
	logger       Logger
	hooks        events.Hooks
	defaultTheme string
}

// NewRegistry builds a registry around the base store. The base is cloned so
// later caller mutations cannot leak into merged views.
func NewRegistry(base *Store, opts ...RegistryOption) (*Registry, error) {
	if base == nil {
		return nil, ErrBaseStoreRequired
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	cfg := registryConfig{
		themes:       map[string]Tree{},
		logger:       NopLogger(),
		defaultTheme: DefaultTheme,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Registry{
		base:         base.Clone(),
		themes:       cfg.themes,
		merged:       map[string]*Store{},
		mode:         cfg.mode,
		logger:       cfg.logger,
		hooks:        cfg.hooks,
		defaultTheme: cfg.defaultTheme,
	}, nil
}

// Base returns a copy of the base store.
func (r *Registry) Base() *Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.base.Clone()
}

// Register inserts or replaces the named override tree and invalidates the
// entire merged cache. Invalidation is deliberately coarse: a reader racing a
// registration sees either the fully-old or the fully-new entry, never a
// partially merged one.
func (r *Registry) Register(name string, overrides Tree) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	r.mu.Lock()
	r.themes[name] = layering.Clone(overrides)
	r.merged = map[string]*Store{}
	r.mu.Unlock()

	r.emit(events.Event{Type: events.TypeThemeRegistered, Theme: name})
	r.emit(events.Event{Type: events.TypeCacheInvalidated, Theme: name})
}

// Registered reports whether the named theme is known.
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.themes[name]
	return ok
}

// Themes returns the sorted registered theme names.
func (r *Registry) Themes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merged returns the base store merged with the named theme's overrides. The
// result is cached: repeated calls return the same store until the next
// Register. Unknown names merge against an empty override, yielding a base
// clone carrying the requested name.
func (r *Registry) Merged(name string) *Store {
	name = r.ResolveThemeName(name)

	r.mu.RLock()
	if cached, ok := r.merged[name]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.merged[name]; ok {
		return cached
	}

	store := Merge(r.base, r.themes[name])
	store.Metadata.Name = name
	r.merged[name] = store
	return store
}

// MergedWithFallback returns the merged view for name, substituting fallback
// when name is unregistered. An empty fallback selects the default theme. A
// store is always returned.
func (r *Registry) MergedWithFallback(name, fallback string) *Store {
	name = r.ResolveThemeName(name)
	if fallback == "" {
		fallback = r.defaultTheme
	}
	if !r.Registered(name) {
		r.logger.Debugf("tokens: theme %q not registered, falling back to %q", name, fallback)
		name = fallback
	}
	return r.Merged(name)
}

// ResolveThemeName maps the synthetic system theme to a concrete name by
// consulting the mode provider. A missing or failing provider resolves to
// light. Other names pass through unchanged.
func (r *Registry) ResolveThemeName(name string) string {
	if name != SystemTheme {
		return name
	}
	if r.mode == nil {
		return string(ModeLight)
	}
	mode, err := r.mode.SystemColorMode()
	if err != nil {
		r.logger.Warnf("tokens: mode provider failed, defaulting to light: %v", err)
		return string(ModeLight)
	}
	if mode != ModeLight && mode != ModeDark {
		return string(ModeLight)
	}
	return string(mode)
}

// TraceTheme reports which layer supplies the value at path for the named
// theme: the base tree first, the theme's override tree above it.
func (r *Registry) TraceTheme(name, path string) MergeTrace {
	name = r.ResolveThemeName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return TracePath(path, r.base.Tokens, NamedTree{Name: name, Tree: r.themes[name]})
}

func (r *Registry) emit(event events.Event) {
	if !r.hooks.Enabled() {
		return
	}
	if err := r.hooks.Notify(context.Background(), event); err != nil {
		r.logger.Warnf("tokens: registry hook failed: %v", err)
	}
}
