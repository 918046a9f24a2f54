package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	tokens "github.com/goliatone/go-tokens"
)

// KV is the minimal persistence shim backends can be layered on: the
// getItem/setItem/removeItem surface of web storage and its look-alikes.
// It cannot enumerate keys, so KVBackend maintains its own key index.
type KV interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string)
	RemoveItem(key string)
}

// MemoryKV is an in-memory KV reference implementation. Safe for concurrent
// use.
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKV builds an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: map[string]string{}}
}

// GetItem implements KV.
func (m *MemoryKV) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok
}

// SetItem implements KV.
func (m *MemoryKV) SetItem(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// RemoveItem implements KV.
func (m *MemoryKV) RemoveItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// KVBackend layers the Backend contract over any KV shim. Envelopes are
// stored in their JSON wire form under prefixed keys; a JSON key index lives
// under a reserved <prefix>::index entry and is updated on save and delete.
type KVBackend struct {
	kv     KV
	prefix string
	mu     sync.Mutex
}

// NewKVBackend builds a backend over kv. The prefix namespaces this
// backend's keys; default is tokens.
func NewKVBackend(kv KV, prefix string) (*KVBackend, error) {
	if kv == nil {
		return nil, fmt.Errorf("storage: kv shim is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "tokens"
	}
	return &KVBackend{kv: kv, prefix: prefix}, nil
}

// Save implements Backend.
func (b *KVBackend) Save(ctx context.Context, key string, s *tokens.Store, opts ...SerializeOption) error {
	if err := validKey(key); err != nil {
		return err
	}
	envelope, err := Serialize(ctx, s, opts...)
	if err != nil {
		return err
	}
	encoded, err := EncodeEnvelope(envelope)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Verify the index before the item lands; a corrupt index must not
	// leave a stored envelope invisible to List.
	keys, err := b.readIndex()
	if err != nil {
		return err
	}
	b.kv.SetItem(b.itemKey(key), string(encoded))
	return b.writeIndex(withKey(keys, key, true))
}

// Load implements Backend.
func (b *KVBackend) Load(ctx context.Context, key string, opts ...DeserializeOption) (*tokens.Store, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	raw, ok := b.kv.GetItem(b.itemKey(key))
	if !ok {
		return nil, fmt.Errorf("storage: key %q not found", key)
	}
	envelope, err := DecodeEnvelope([]byte(raw))
	if err != nil {
		return nil, err
	}
	return Deserialize(ctx, envelope, opts...)
}

// Exists implements Backend.
func (b *KVBackend) Exists(_ context.Context, key string) (bool, error) {
	if err := validKey(key); err != nil {
		return false, err
	}
	_, ok := b.kv.GetItem(b.itemKey(key))
	return ok, nil
}

// Delete implements Backend.
func (b *KVBackend) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	keys, err := b.readIndex()
	if err != nil {
		return err
	}
	b.kv.RemoveItem(b.itemKey(key))
	return b.writeIndex(withKey(keys, key, false))
}

// List implements Backend.
func (b *KVBackend) List(_ context.Context) ([]string, error) {
	keys, err := b.readIndex()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *KVBackend) itemKey(key string) string {
	return b.prefix + "::" + key
}

func (b *KVBackend) indexKey() string {
	return b.prefix + "::index"
}

func (b *KVBackend) readIndex() ([]string, error) {
	raw, ok := b.kv.GetItem(b.indexKey())
	if !ok || raw == "" {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("storage: corrupt key index: %w", err)
	}
	return keys, nil
}

func (b *KVBackend) writeIndex(keys []string) error {
	encoded, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("storage: encode key index: %w", err)
	}
	b.kv.SetItem(b.indexKey(), string(encoded))
	return nil
}

func withKey(keys []string, key string, present bool) []string {
	filtered := make([]string, 0, len(keys)+1)
	for _, existing := range keys {
		if existing != key {
			filtered = append(filtered, existing)
		}
	}
	if present {
		filtered = append(filtered, key)
	}
	return filtered
}
