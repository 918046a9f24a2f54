// Package storage wraps token stores in integrity-checked serialized
// envelopes and persists them through pluggable backends. Serialization
// encodes through the codec registry, optionally compresses, and stamps a
// checksum of the uncompressed encoded payload; deserialization refuses to
// return a store it cannot verify.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-tokens/codec"
	"github.com/goliatone/go-tokens/internal/hydrate"
)

// SerializationVersion is the envelope format version, independent of any
// store's own metadata version. Bump the major on breaking wire changes.
const SerializationVersion = "1.0.0"

// ErrIncompatibleVersion indicates an envelope produced by an incompatible
// (newer-major or unparsable) serializer.
var ErrIncompatibleVersion = errors.New("storage: incompatible envelope version")

// IntegrityError indicates a checksum mismatch between the envelope metadata
// and the decompressed payload. It is always fatal.
type IntegrityError struct {
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("storage: checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// EnvelopeMetadata carries the envelope's size and integrity fields.
type EnvelopeMetadata struct {
	// OriginalSize is the byte length of the uncompressed encoded payload.
	OriginalSize int `json:"originalSize"`
	// CompressedSize is the byte length after compression, zero when the
	// payload is not compressed.
	CompressedSize int `json:"compressedSize,omitempty"`
	// Checksum is the lowercase hex SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`
	// Compression names the applied algorithm, empty when uncompressed.
	Compression codec.Compression `json:"compression,omitempty"`
}

// Envelope is the immutable serialized wrapper around an encoded token
// store. Data holds the encoded payload, compressed when Metadata says so.
type Envelope struct {
	Format    codec.Format      `json:"format"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Data      []byte            `json:"data"`
	Metadata  *EnvelopeMetadata `json:"metadata,omitempty"`
}

// EncodeEnvelope renders the envelope in its JSON wire form: ISO-8601
// timestamp, base64 data.
func EncodeEnvelope(envelope *Envelope) ([]byte, error) {
	if envelope == nil {
		return nil, errors.New("storage: envelope is required")
	}
	c, err := codec.DefaultRegistry().Lookup(codec.JSON)
	if err != nil {
		return nil, err
	}
	return c.Encode(envelope, false)
}

var envelopeDecoder = hydrate.NewDecoder[Envelope](
	hydrate.WithDisallowUnknownFields[Envelope](),
)

// DecodeEnvelope parses an envelope from its JSON wire form. Unknown fields
// are rejected: an envelope is a closed contract.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var payload map[string]any
	c, err := codec.DefaultRegistry().Lookup(codec.JSON)
	if err != nil {
		return nil, err
	}
	if err := c.Decode(data, &payload); err != nil {
		return nil, fmt.Errorf("storage: decode envelope: %w", err)
	}

	envelope, err := envelopeDecoder.Decode(hydrate.Context{Key: "envelope", Source: "wire"}, payload)
	if err != nil {
		return nil, fmt.Errorf("storage: decode envelope: %w", err)
	}
	return &envelope, nil
}
