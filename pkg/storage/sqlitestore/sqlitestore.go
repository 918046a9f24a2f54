// Package sqlitestore persists token envelopes in a SQLite database. One row
// per key, JSON envelope bodies, suited to desktop tooling and CI caches
// where a single file beats a directory of artifacts.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/pkg/storage"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS envelopes (
	key        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// Backend stores envelopes in a SQLite database.
type Backend struct {
	db    *sql.DB
	owned bool
}

// Open opens (or creates) the database at path and prepares the schema. Use
// :memory: for throwaway stores.
func Open(ctx context.Context, path string) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %q: %w", path, err)
	}
	backend, err := NewWithDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	backend.owned = true
	return backend, nil
}

// NewWithDB builds a backend over an existing handle. The caller keeps
// ownership of the handle; Close does not close it.
func NewWithDB(ctx context.Context, db *sql.DB) (*Backend, error) {
	if db == nil {
		return nil, errors.New("sqlitestore: db handle is required")
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("sqlitestore: prepare schema: %w", err)
	}
	return &Backend{db: db}, nil
}

// Close releases the database handle when this backend opened it.
func (b *Backend) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}

// Save implements storage.Backend via upsert.
func (b *Backend) Save(ctx context.Context, key string, s *tokens.Store, opts ...storage.SerializeOption) error {
	if err := validKey(key); err != nil {
		return err
	}
	envelope, err := storage.Serialize(ctx, s, opts...)
	if err != nil {
		return err
	}
	encoded, err := storage.EncodeEnvelope(envelope)
	if err != nil {
		return err
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO envelopes (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, encoded, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlitestore: save %q: %w", key, err)
	}
	return nil
}

// Load implements storage.Backend.
func (b *Backend) Load(ctx context.Context, key string, opts ...storage.DeserializeOption) (*tokens.Store, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var encoded []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT body FROM envelopes WHERE key = ?`, key).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlitestore: key %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: load %q: %w", key, err)
	}
	envelope, err := storage.DecodeEnvelope(encoded)
	if err != nil {
		return nil, err
	}
	return storage.Deserialize(ctx, envelope, opts...)
}

// Exists implements storage.Backend.
func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	if err := validKey(key); err != nil {
		return false, err
	}
	var one int
	err := b.db.QueryRowContext(ctx,
		`SELECT 1 FROM envelopes WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlitestore: exists %q: %w", key, err)
	}
	return true, nil
}

// Delete implements storage.Backend. Absent keys succeed.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx,
		`DELETE FROM envelopes WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlitestore: delete %q: %w", key, err)
	}
	return nil
}

// List implements storage.Backend.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM envelopes ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlitestore: list: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: list: %w", err)
	}
	return keys, nil
}

func validKey(key string) error {
	if key == "" {
		return errors.New("sqlitestore: key is required")
	}
	return nil
}
