// Package transform compiles resolved token stores into downstream artifact
// formats: CSS custom properties, a Tailwind-shaped utility config,
// TypeScript declarations and JSON-Schema documents. Transformers are pure
// over (store, options); a failing transformer loses only its own artifact.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	tokens "github.com/goliatone/go-tokens"
)

// Artifact is one produced output document.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// Transformer turns a resolved token store into one artifact.
type Transformer interface {
	Name() string
	Transform(s *tokens.Store) (*Artifact, error)
}

// Error wraps a transformer failure with the transformer's name.
type Error struct {
	Transformer string
	Err         error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("transform: %s: %v", e.Transformer, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Registry stores transformers keyed by name. Safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]Transformer
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{transformers: map[string]Transformer{}}
}

// DefaultRegistry returns a registry pre-loaded with the four built-in
// transformers in their default configuration.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(NewCSSVars())
	_ = registry.Register(NewUtilityConfig())
	_ = registry.Register(NewDeclarations())
	_ = registry.Register(NewSchemaDoc())
	return registry
}

// Register adds a transformer. Names must be unique.
func (r *Registry) Register(t Transformer) error {
	if t == nil {
		return fmt.Errorf("transform: transformer is nil")
	}
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return fmt.Errorf("transform: transformer name must be provided")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transformers[name]; exists {
		return fmt.Errorf("transform: transformer %q already registered", name)
	}
	r.transformers[name] = t
	return nil
}

// Get returns the named transformer.
func (r *Registry) Get(name string) (Transformer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transformers[name]
	return t, ok
}

// Names returns the sorted registered transformer names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transformers))
	for name := range r.transformers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every transformer against the store. A failing transformer is
// fatal for its own artifact only: the remaining artifacts are still
// produced and the failures are joined into the returned error.
func Run(s *tokens.Store, transformers ...Transformer) ([]*Artifact, error) {
	artifacts := make([]*Artifact, 0, len(transformers))
	var errs []error
	for _, t := range transformers {
		if t == nil {
			continue
		}
		artifact, err := t.Transform(s)
		if err != nil {
			var wrapped *Error
			if !errors.As(err, &wrapped) {
				err = &Error{Transformer: t.Name(), Err: err}
			}
			errs = append(errs, err)
			continue
		}
		artifacts = append(artifacts, artifact)
	}
	if len(errs) > 0 {
		return artifacts, errors.Join(errs...)
	}
	return artifacts, nil
}
