package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Compression names a payload compression algorithm.
type Compression string

// Supported compression algorithms. The empty value means uncompressed.
const (
	Gzip   Compression = "gzip"
	Brotli Compression = "brotli"
)

// Compress reduces data with the named algorithm. The empty algorithm returns
// data unchanged.
func Compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case "":
		return data, nil
	case Gzip:
		var buf bytes.Buffer
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("codec: gzip compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("codec: gzip compress: %w", err)
		}
		return buf.Bytes(), nil
	case Brotli:
		var buf bytes.Buffer
		writer := brotli.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("codec: brotli compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("codec: brotli compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("codec: unsupported compression %q", compression)
	}
}

// Decompress reverses Compress for the named algorithm.
func Decompress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case "":
		return data, nil
	case Gzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("codec: gzip decompress: %w", err)
		}
		defer reader.Close()
		out, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("codec: gzip decompress: %w", err)
		}
		return out, nil
	case Brotli:
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("codec: brotli decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unsupported compression %q", compression)
	}
}
