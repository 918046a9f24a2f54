package layering

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Canonical priorities for the overlay cascade. Higher numbers override lower
// ones when a stack is applied.
const (
	PriorityBase       = 100
	PriorityVariant    = 200
	PriorityState      = 300
	PriorityBreakpoint = 400
)

var (
	// ErrScopeNameRequired indicates a layer without a usable name.
	ErrScopeNameRequired = errors.New("layering: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers sharing the same name.
	ErrDuplicateScopeName = errors.New("layering: scope names must be unique")
	// ErrPriorityOrder indicates two layers sharing the same priority, which
	// would make the merge outcome ambiguous.
	ErrPriorityOrder = errors.New("layering: scope priorities must be strictly ordered")
)

// Scope names a precedence bucket in the overlay cascade.
type Scope struct {
	Name     string
	Label    string
	Priority int
}

// ScopeOption customises an individual scope.
type ScopeOption func(*Scope)

// WithScopeLabel sets a human readable label used in diagnostics.
func WithScopeLabel(label string) ScopeOption {
	return func(s *Scope) {
		s.Label = label
	}
}

// NewScope builds a Scope with the provided name and priority.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	scope := Scope{
		Name:     strings.TrimSpace(name),
		Priority: priority,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&scope)
		}
	}
	return scope
}

// Layer pairs a scope with the override tree captured for it. The tree is deep
// copied on construction so later caller mutations cannot leak into the stack.
type Layer struct {
	Scope Scope
	Tree  map[string]any
}

// NewLayer builds a Layer for the provided scope and tree.
func NewLayer(scope Scope, tree map[string]any) Layer {
	return Layer{
		Scope: scope,
		Tree:  Clone(tree),
	}
}

// Stack is an immutable, priority ordered collection of layers, weakest first.
type Stack struct {
	layers []Layer
}

// NewStack validates and orders the provided layers. Layer names must be
// unique and non-empty, and priorities must be strictly distinct.
func NewStack(layers ...Layer) (*Stack, error) {
	ordered := make([]Layer, len(layers))
	copy(ordered, layers)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Scope.Priority == ordered[j].Scope.Priority {
			return ordered[i].Scope.Name < ordered[j].Scope.Name
		}
		return ordered[i].Scope.Priority < ordered[j].Scope.Priority
	})

	seen := make(map[string]struct{}, len(ordered))
	for i, layer := range ordered {
		name := layer.Scope.Name
		if name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, name)
		}
		seen[name] = struct{}{}
		if i > 0 && ordered[i-1].Scope.Priority == layer.Scope.Priority {
			return nil, fmt.Errorf("%w: %s and %s share priority %d",
				ErrPriorityOrder, ordered[i-1].Scope.Name, name, layer.Scope.Priority)
		}
	}

	return &Stack{layers: ordered}, nil
}

// Layers returns a defensive copy of the ordered layers, weakest first.
func (s *Stack) Layers() []Layer {
	if s == nil {
		return nil
	}
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len reports how many layers the stack holds.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Apply merges the stack's layers onto base from weakest to strongest and
// returns the combined tree. Base and the stack are never mutated.
func (s *Stack) Apply(base map[string]any) map[string]any {
	if s == nil || len(s.layers) == 0 {
		return Merge(base)
	}
	trees := make([]map[string]any, 0, len(s.layers))
	for _, layer := range s.layers {
		if layer.Tree == nil {
			continue
		}
		trees = append(trees, layer.Tree)
	}
	return Merge(base, trees...)
}

// CascadeStack assembles the canonical overlay cascade. Nil trees are skipped
// so callers can omit dimensions that do not apply.
func CascadeStack(variant, state, breakpoint map[string]any) (*Stack, error) {
	layers := make([]Layer, 0, 3)
	if variant != nil {
		layers = append(layers, NewLayer(NewScope("variant", PriorityVariant), variant))
	}
	if state != nil {
		layers = append(layers, NewLayer(NewScope("state", PriorityState), state))
	}
	if breakpoint != nil {
		layers = append(layers, NewLayer(NewScope("breakpoint", PriorityBreakpoint), breakpoint))
	}
	return NewStack(layers...)
}
