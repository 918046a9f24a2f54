// Package events fans token-pipeline lifecycle events out to registered
// hooks: theme registrations, cache invalidations and storage operations.
package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types emitted by the engine.
const (
	TypeThemeRegistered  = "theme.registered"
	TypeCacheInvalidated = "cache.invalidated"
	TypeStoreSaved       = "store.saved"
	TypeStoreLoaded      = "store.loaded"
	TypeStoreDeleted     = "store.deleted"
)

// Event describes one pipeline occurrence that can be fanned out to hooks.
type Event struct {
	ID       string
	Type     string
	Theme    string
	Key      string
	Metadata map[string]any
	At       time.Time
}

// Hook receives normalized lifecycle events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []Hook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to all hooks, returning a joined error if any
// fail. It normalizes the event and short-circuits when the type is missing.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Type == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims whitespace, clones metadata, and ensures an ID and a
// timestamp are present.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.ID = strings.TrimSpace(event.ID)
	normalized.Type = strings.TrimSpace(event.Type)
	normalized.Theme = strings.TrimSpace(event.Theme)
	normalized.Key = strings.TrimSpace(event.Key)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.ID == "" {
		normalized.ID = uuid.NewString()
	}
	if normalized.At.IsZero() {
		normalized.At = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
