// Package codec provides the serialization capability registry: pluggable
// encode/decode pairs per wire format, compression helpers and the checksum
// used for envelope integrity. Formats are registered at startup; asking for
// an unregistered format fails immediately instead of at decode time.
package codec

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Format names a wire encoding.
type Format string

// Wire formats with built-in codecs.
const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	TOML   Format = "toml"
	Binary Format = "binary"
)

// UnsupportedFormatError indicates a format with no registered codec. Using
// one is a programming error, reported as soon as the format is requested.
type UnsupportedFormatError struct {
	Format Format
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("codec: unsupported format %q", e.Format)
}

// Codec is one encode/decode capability.
type Codec interface {
	Format() Format
	// Encode renders v. Minify requests the compact form; codecs without one
	// ignore it.
	Encode(v any, minify bool) ([]byte, error)
	// Decode parses data into v.
	Decode(data []byte, v any) error
}

// Registry maps formats to codecs. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[Format]Codec
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: map[Format]Codec{}}
}

// DefaultRegistry returns a registry holding every built-in codec.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(jsonCodec{})
	_ = registry.Register(yamlCodec{})
	_ = registry.Register(tomlCodec{})
	_ = registry.Register(binaryCodec{})
	return registry
}

// Register adds a codec. Formats must be unique.
func (r *Registry) Register(c Codec) error {
	if c == nil {
		return fmt.Errorf("codec: codec is nil")
	}
	format := Format(strings.ToLower(strings.TrimSpace(string(c.Format()))))
	if format == "" {
		return fmt.Errorf("codec: codec format must be provided")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codecs[format]; exists {
		return fmt.Errorf("codec: format %q already registered", format)
	}
	r.codecs[format] = c
	return nil
}

// Lookup returns the codec registered for format.
func (r *Registry) Lookup(format Format) (Codec, error) {
	key := Format(strings.ToLower(strings.TrimSpace(string(format))))

	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[key]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return c, nil
}

// Formats returns the sorted registered format names.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.codecs))
	for format := range r.codecs {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
