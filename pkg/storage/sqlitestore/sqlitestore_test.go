package sqlitestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/codec"
	"github.com/goliatone/go-tokens/pkg/storage"
)

func openBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func testStore(t *testing.T) *tokens.Store {
	t.Helper()
	return tokens.New(tokens.Metadata{
		ID:       "base",
		Name:     "base",
		Category: "core",
		Mode:     tokens.ModeLight,
		Version:  "1.0.0",
	}, tokens.Tree{
		"spacing": map[string]any{"lg": "2rem"},
	})
}

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := openBackend(t)

	require.NoError(t, backend.Save(ctx, "base", testStore(t),
		storage.WithFormat(codec.Binary), storage.WithCompression(codec.Gzip)))

	loaded, err := backend.Load(ctx, "base")
	require.NoError(t, err)
	value, ok := tokens.Value(loaded.Tokens, "spacing.lg")
	require.True(t, ok)
	require.Equal(t, "2rem", value)
}

func TestBackendUpsert(t *testing.T) {
	ctx := context.Background()
	backend := openBackend(t)

	require.NoError(t, backend.Save(ctx, "theme", testStore(t)))

	updated := testStore(t)
	updated.Tokens["spacing"].(map[string]any)["lg"] = "3rem"
	require.NoError(t, backend.Save(ctx, "theme", updated))

	loaded, err := backend.Load(ctx, "theme")
	require.NoError(t, err)
	value, _ := tokens.Value(loaded.Tokens, "spacing.lg")
	require.Equal(t, "3rem", value)

	keys, err := backend.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"theme"}, keys)
}

func TestBackendLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := openBackend(t)

	ok, err := backend.Exists(ctx, "base")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = backend.Load(ctx, "base")
	require.ErrorContains(t, err, "not found")

	require.NoError(t, backend.Save(ctx, "base", testStore(t)))
	ok, err = backend.Exists(ctx, "base")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, backend.Delete(ctx, "base"))
	require.NoError(t, backend.Delete(ctx, "base"))

	keys, err := backend.List(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestBackendListSorted(t *testing.T) {
	ctx := context.Background()
	backend := openBackend(t)

	for _, key := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, backend.Save(ctx, key, testStore(t)))
	}

	keys, err := backend.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mid", "zeta"}, keys)
}
