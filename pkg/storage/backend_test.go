package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tokens/pkg/events"
)

func TestInstrumentedBackendEmitsLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	capture := &events.CaptureHook{}
	inner, err := NewKVBackend(NewMemoryKV(), "test")
	require.NoError(t, err)
	backend := Instrument(inner, events.Hooks{capture}, nil)

	require.NoError(t, backend.Save(ctx, "base", testStore(t)))
	_, err = backend.Load(ctx, "base")
	require.NoError(t, err)
	require.NoError(t, backend.Delete(ctx, "base"))

	require.Equal(t, []string{
		events.TypeStoreSaved,
		events.TypeStoreLoaded,
		events.TypeStoreDeleted,
	}, capture.Types())

	saved := capture.Events[0]
	require.Equal(t, "base", saved.Key)
	require.Equal(t, "base", saved.Theme)
	require.Equal(t, "storage", saved.Metadata["source"])
	require.NotEmpty(t, saved.ID)
}

func TestInstrumentedBackendSilentOnFailure(t *testing.T) {
	ctx := context.Background()
	capture := &events.CaptureHook{}
	inner, err := NewKVBackend(NewMemoryKV(), "test")
	require.NoError(t, err)
	backend := Instrument(inner, events.Hooks{capture}, nil)

	_, err = backend.Load(ctx, "missing")
	require.Error(t, err)
	require.Empty(t, capture.Events)
}

func TestInstrumentedBackendHookErrorDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	capture := &events.CaptureHook{Err: errors.New("sink down")}
	inner, err := NewKVBackend(NewMemoryKV(), "test")
	require.NoError(t, err)
	backend := Instrument(inner, events.Hooks{capture}, nil)

	require.NoError(t, backend.Save(ctx, "base", testStore(t)))

	ok, err := backend.Exists(ctx, "base")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParseEnvelopeBytesSniffsGzip(t *testing.T) {
	envelope, err := Serialize(context.Background(), testStore(t))
	require.NoError(t, err)
	encoded, err := EncodeEnvelope(envelope)
	require.NoError(t, err)

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err = writer.Write(encoded)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	for _, raw := range [][]byte{encoded, buf.Bytes()} {
		parsed, err := ParseEnvelopeBytes(raw)
		require.NoError(t, err)
		require.Equal(t, envelope.Metadata.Checksum, parsed.Metadata.Checksum)
	}
}
