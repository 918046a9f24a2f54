package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
)

// ReadEnvelopeFile reads an envelope from disk, transparently decompressing
// files that were gzipped at rest. The content is sniffed, not judged by
// extension, so renamed files still load.
func ReadEnvelopeFile(path string) (*Envelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", path, err)
	}
	return ParseEnvelopeBytes(raw)
}

// ParseEnvelopeBytes decodes an envelope from raw bytes, unwrapping at-rest
// gzip when detected.
func ParseEnvelopeBytes(raw []byte) (*Envelope, error) {
	if mimetype.Detect(raw).Is("application/gzip") {
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("storage: gunzip envelope: %w", err)
		}
		defer reader.Close()
		raw, err = io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("storage: gunzip envelope: %w", err)
		}
	}
	return DecodeEnvelope(raw)
}
