package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	tokens "github.com/goliatone/go-tokens"
)

const envelopeExtension = ".json"

// FSBackend stores one envelope file per key on a billy filesystem: osfs in
// production, memfs in tests.
type FSBackend struct {
	fs  billy.Filesystem
	dir string
}

// NewFSBackend builds a backend rooted at dir on fsys. The directory is
// created on first save.
func NewFSBackend(fsys billy.Filesystem, dir string) (*FSBackend, error) {
	if fsys == nil {
		return nil, fmt.Errorf("storage: filesystem is required")
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	return &FSBackend{fs: fsys, dir: dir}, nil
}

// NewOSBackend builds a backend over the host filesystem rooted at dir.
func NewOSBackend(dir string) (*FSBackend, error) {
	return NewFSBackend(osfs.New("/"), dir)
}

// Save implements Backend.
func (b *FSBackend) Save(ctx context.Context, key string, s *tokens.Store, opts ...SerializeOption) error {
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

	if err := b.fs.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdirall %q: %w", b.dir, err)
	}
	path := b.path(key)
	if err := util.WriteFile(b.fs, path, encoded, 0o644); err != nil {
		return fmt.Errorf("storage: write %q: %w", path, err)
	}
	return nil
}

// Load implements Backend.
func (b *FSBackend) Load(ctx context.Context, key string, opts ...DeserializeOption) (*tokens.Store, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	path := b.path(key)
	encoded, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", path, err)
	}
	envelope, err := DecodeEnvelope(encoded)
	if err != nil {
		return nil, err
	}
	return Deserialize(ctx, envelope, opts...)
}

// Exists implements Backend.
func (b *FSBackend) Exists(_ context.Context, key string) (bool, error) {
	if err := validKey(key); err != nil {
		return false, err
	}
	_, err := b.fs.Stat(b.path(key))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat %q: %w", b.path(key), err)
	}
}

// Delete implements Backend.
func (b *FSBackend) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	path := b.path(key)
	if err := b.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %q: %w", path, err)
	}
	return nil
}

// List implements Backend.
func (b *FSBackend) List(_ context.Context) ([]string, error) {
	entries, err := b.fs.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: readdir %q: %w", b.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, envelopeExtension) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, envelopeExtension))
	}
	return keys, nil
}

func (b *FSBackend) path(key string) string {
	return b.fs.Join(b.dir, key+envelopeExtension)
}
