package storage

import (
	"context"
	"fmt"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/pkg/events"
)

// Backend persists envelopes under string keys. Backends are thin adapters
// over Serialize/Deserialize and carry no engine logic. Every call takes a
// context; in-flight work is not cancelled, callers race their own timeouts.
type Backend interface {
	Save(ctx context.Context, key string, s *tokens.Store, opts ...SerializeOption) error
	Load(ctx context.Context, key string, opts ...DeserializeOption) (*tokens.Store, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

// InstrumentedBackend decorates a Backend with lifecycle event emission.
// Hook failures are logged and never fail the storage operation.
type InstrumentedBackend struct {
	backend Backend
	emitter *events.Emitter
	logger  tokens.Logger
}

// Instrument wraps backend so saves, loads and deletes emit events.
func Instrument(backend Backend, hooks events.Hooks, logger tokens.Logger) *InstrumentedBackend {
	if logger == nil {
		logger = tokens.NopLogger()
	}
	return &InstrumentedBackend{
		backend: backend,
		emitter: events.NewEmitter(hooks, events.Config{Enabled: true, Source: "storage"}),
		logger:  logger,
	}
}

// Save implements Backend.
func (b *InstrumentedBackend) Save(ctx context.Context, key string, s *tokens.Store, opts ...SerializeOption) error {
	if err := b.backend.Save(ctx, key, s, opts...); err != nil {
		return err
	}
	b.emit(ctx, events.Event{Type: events.TypeStoreSaved, Key: key, Theme: s.Metadata.Name})
	return nil
}

// Load implements Backend.
func (b *InstrumentedBackend) Load(ctx context.Context, key string, opts ...DeserializeOption) (*tokens.Store, error) {
	store, err := b.backend.Load(ctx, key, opts...)
	if err != nil {
		return nil, err
	}
	b.emit(ctx, events.Event{Type: events.TypeStoreLoaded, Key: key, Theme: store.Metadata.Name})
	return store, nil
}

// Exists implements Backend.
func (b *InstrumentedBackend) Exists(ctx context.Context, key string) (bool, error) {
	return b.backend.Exists(ctx, key)
}

// Delete implements Backend.
func (b *InstrumentedBackend) Delete(ctx context.Context, key string) error {
	if err := b.backend.Delete(ctx, key); err != nil {
		return err
	}
	b.emit(ctx, events.Event{Type: events.TypeStoreDeleted, Key: key})
	return nil
}

// List implements Backend.
func (b *InstrumentedBackend) List(ctx context.Context) ([]string, error) {
	return b.backend.List(ctx)
}

func (b *InstrumentedBackend) emit(ctx context.Context, event events.Event) {
	if err := b.emitter.Emit(ctx, event); err != nil {
		b.logger.Warnf("storage: event hook failed: %v", err)
	}
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage: key is required")
	}
	return nil
}
