package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/codec"
	"github.com/goliatone/go-tokens/schema"
)

type serializeConfig struct {
	format       codec.Format
	minify       bool
	compression  codec.Compression
	validate     bool
	excludeEmpty bool
	registry     *codec.Registry
	schemaDoc    schema.Document
	schemaOpts   []schema.Option
	now          func() time.Time
}

// SerializeOption configures one Serialize call.
type SerializeOption func(*serializeConfig)

// WithFormat selects the wire format. Default is JSON.
func WithFormat(format codec.Format) SerializeOption {
	return func(cfg *serializeConfig) {
		if format != "" {
			cfg.format = format
		}
	}
}

// WithMinify requests the compact encoded form where the format has one.
func WithMinify() SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.minify = true
	}
}

// WithCompression compresses the encoded payload before wrapping.
func WithCompression(compression codec.Compression) SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.compression = compression
	}
}

// WithValidate generates a schema from the store and fails fast, with every
// issue reported, before any encoding happens.
func WithValidate(opts ...schema.Option) SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.validate = true
		cfg.schemaOpts = append(cfg.schemaOpts, opts...)
	}
}

// WithValidateSchema validates against doc instead of a schema generated
// from the store. Same fail-fast contract as WithValidate.
func WithValidateSchema(doc schema.Document) SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.validate = true
		cfg.schemaDoc = doc
	}
}

// WithExcludeEmpty strips nil, empty-string, empty-map and empty-slice
// leaves before encoding. Zero and false are meaningful token values and are
// kept.
func WithExcludeEmpty() SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.excludeEmpty = true
	}
}

// WithCodecRegistry substitutes the codec capability registry. Default is
// the built-in registry with all four formats.
func WithCodecRegistry(registry *codec.Registry) SerializeOption {
	return func(cfg *serializeConfig) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// withClock pins envelope timestamps in tests.
func withClock(now func() time.Time) SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.now = now
	}
}

// Serialize encodes the store into an integrity-checked envelope. The
// checksum always covers the uncompressed encoded payload, so integrity can
// be verified after decompression regardless of algorithm.
func Serialize(ctx context.Context, s *tokens.Store, opts ...SerializeOption) (*Envelope, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("storage: store is required")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := serializeConfig{
		format:   codec.JSON,
		registry: codec.DefaultRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c, err := cfg.registry.Lookup(cfg.format)
	if err != nil {
		return nil, err
	}

	if cfg.validate {
		doc := cfg.schemaDoc
		if doc == nil {
			doc = schema.Generate(s, cfg.schemaOpts...)
		}
		result := schema.Validate(s.Tokens, doc)
		if !result.Valid {
			return nil, &schema.ValidationError{Issues: result.Errors}
		}
	}

	tree := s.Tokens
	if cfg.excludeEmpty {
		tree = stripEmpty(tree)
	}

	payload := map[string]any{
		"metadata": metadataToMap(s.Metadata),
		"tokens":   tree,
	}
	encoded, err := c.Encode(payload, cfg.minify)
	if err != nil {
		return nil, fmt.Errorf("storage: encode %s payload: %w", cfg.format, err)
	}

	metadata := &EnvelopeMetadata{
		OriginalSize: len(encoded),
		Checksum:     codec.Checksum(encoded),
	}

	data := encoded
	if cfg.compression != "" {
		data, err = codec.Compress(encoded, cfg.compression)
		if err != nil {
			return nil, err
		}
		metadata.CompressedSize = len(data)
		metadata.Compression = cfg.compression
	}

	return &Envelope{
		Format:    cfg.format,
		Version:   SerializationVersion,
		Timestamp: cfg.now().UTC(),
		Data:      data,
		Metadata:  metadata,
	}, nil
}

type deserializeConfig struct {
	revalidate bool
	registry   *codec.Registry
	schemaOpts []schema.Option
}

// DeserializeOption configures one Deserialize call.
type DeserializeOption func(*deserializeConfig)

// WithRevalidate re-checks the decoded tree against a schema generated from
// it after decoding.
func WithRevalidate(opts ...schema.Option) DeserializeOption {
	return func(cfg *deserializeConfig) {
		cfg.revalidate = true
		cfg.schemaOpts = append(cfg.schemaOpts, opts...)
	}
}

// WithDecodeRegistry substitutes the codec capability registry used for
// decoding.
func WithDecodeRegistry(registry *codec.Registry) DeserializeOption {
	return func(cfg *deserializeConfig) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// Deserialize unwraps an envelope back into a token store. A checksum
// mismatch is fatal: the engine refuses to return a store it cannot verify.
func Deserialize(ctx context.Context, envelope *Envelope, opts ...DeserializeOption) (*tokens.Store, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if envelope == nil {
		return nil, errors.New("storage: envelope is required")
	}

	cfg := deserializeConfig{registry: codec.DefaultRegistry()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := checkVersion(envelope.Version); err != nil {
		return nil, err
	}

	c, err := cfg.registry.Lookup(envelope.Format)
	if err != nil {
		return nil, err
	}

	data := envelope.Data
	if envelope.Metadata != nil && envelope.Metadata.Compression != "" {
		data, err = codec.Decompress(data, envelope.Metadata.Compression)
		if err != nil {
			return nil, err
		}
	}

	if envelope.Metadata != nil && envelope.Metadata.Checksum != "" {
		actual := codec.Checksum(data)
		if actual != envelope.Metadata.Checksum {
			return nil, &IntegrityError{Expected: envelope.Metadata.Checksum, Actual: actual}
		}
	}

	var payload map[string]any
	if err := c.Decode(data, &payload); err != nil {
		return nil, fmt.Errorf("storage: decode %s payload: %w", envelope.Format, err)
	}
	payload = codec.NormalizeTree(payload)

	store, err := storeFromPayload(payload)
	if err != nil {
		return nil, err
	}

	if cfg.revalidate {
		doc := schema.Generate(store, cfg.schemaOpts...)
		result := schema.Validate(store.Tokens, doc)
		if !result.Valid {
			return nil, &schema.ValidationError{Issues: result.Errors}
		}
	}
	return store, nil
}

// checkVersion accepts envelopes from the same or an older major version.
func checkVersion(version string) error {
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrIncompatibleVersion, version)
	}
	current := semver.MustParse(SerializationVersion)
	if parsed.Major() > current.Major() {
		return fmt.Errorf("%w: %q is newer than %q", ErrIncompatibleVersion, version, SerializationVersion)
	}
	return nil
}

func metadataToMap(md tokens.Metadata) map[string]any {
	return map[string]any{
		"id":       md.ID,
		"name":     md.Name,
		"category": md.Category,
		"mode":     string(md.Mode),
		"version":  md.Version,
	}
}

func storeFromPayload(payload map[string]any) (*tokens.Store, error) {
	rawMetadata, ok := payload["metadata"].(map[string]any)
	if !ok {
		return nil, errors.New("storage: payload is missing metadata")
	}
	tree, _ := payload["tokens"].(map[string]any)

	md := tokens.Metadata{
		ID:       stringAt(rawMetadata, "id"),
		Name:     stringAt(rawMetadata, "name"),
		Category: stringAt(rawMetadata, "category"),
		Mode:     tokens.ParseMode(stringAt(rawMetadata, "mode")),
		Version:  stringAt(rawMetadata, "version"),
	}
	store := tokens.New(md, tree)
	if err := store.Validate(); err != nil {
		return nil, err
	}
	return store, nil
}

func stringAt(node map[string]any, key string) string {
	value, _ := node[key].(string)
	return value
}

// stripEmpty removes nil, empty-string, empty-map and empty-slice leaves,
// post-order so maps emptied by stripping are removed too.
func stripEmpty(tree tokens.Tree) tokens.Tree {
	out := make(tokens.Tree, len(tree))
	for key, value := range tree {
		switch typed := value.(type) {
		case nil:
			continue
		case string:
			if typed == "" {
				continue
			}
			out[key] = typed
		case map[string]any:
			stripped := stripEmpty(typed)
			if len(stripped) == 0 {
				continue
			}
			out[key] = stripped
		case []any:
			if len(typed) == 0 {
				continue
			}
			out[key] = typed
		default:
			out[key] = value
		}
	}
	return out
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
