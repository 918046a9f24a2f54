// Package s3store persists token envelopes as S3 objects. One object per
// key, JSON envelope bodies, keys namespaced under a configurable prefix.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/pkg/storage"
)

const objectSuffix = ".json"

// API is the slice of the S3 surface the backend needs. *s3.Client satisfies
// it; tests inject fakes.
type API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Backend stores envelopes in an S3 bucket.
type Backend struct {
	client API
	bucket string
	prefix string
}

// Option configures a Backend.
type Option func(*Backend)

// WithPrefix namespaces this backend's objects. Default is themes/.
func WithPrefix(prefix string) Option {
	return func(b *Backend) {
		prefix = strings.Trim(strings.TrimSpace(prefix), "/")
		if prefix != "" {
			b.prefix = prefix + "/"
		}
	}
}

// NewWithClient builds a backend over an injected client.
func NewWithClient(client API, bucket string, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, errors.New("s3store: client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("s3store: bucket is required")
	}
	backend := &Backend{client: client, bucket: bucket, prefix: "themes/"}
	for _, opt := range opts {
		if opt != nil {
			opt(backend)
		}
	}
	return backend, nil
}

// New builds a backend using the default AWS credential chain.
func New(ctx context.Context, bucket string, opts ...Option) (*Backend, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, opts...)
}

// Save implements storage.Backend.
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

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.objectKey(key)),
		Body:        bytes.NewReader(encoded),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3store: put %q: %w", key, err)
	}
	return nil
}

// Load implements storage.Backend.
func (b *Backend) Load(ctx context.Context, key string, opts ...storage.DeserializeOption) (*tokens.Store, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	output, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3store: key %q not found", key)
		}
		return nil, fmt.Errorf("s3store: get %q: %w", key, err)
	}
	defer output.Body.Close()

	encoded, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3store: read %q: %w", key, err)
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
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("s3store: head %q: %w", key, err)
	}
}

// Delete implements storage.Backend. S3 deletes are idempotent, so absent
// keys succeed.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3store: delete %q: %w", key, err)
	}
	return nil
}

// List implements storage.Backend, following continuation tokens until the
// listing is exhausted.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string
	for {
		output, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(b.bucket),
			Prefix:            aws.String(b.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3store: list %q: %w", b.prefix, err)
		}
		for _, object := range output.Contents {
			name := aws.ToString(object.Key)
			name = strings.TrimPrefix(name, b.prefix)
			if !strings.HasSuffix(name, objectSuffix) || strings.Contains(name, "/") {
				continue
			}
			keys = append(keys, strings.TrimSuffix(name, objectSuffix))
		}
		if !aws.ToBool(output.IsTruncated) {
			break
		}
		token = output.NextContinuationToken
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *Backend) objectKey(key string) string {
	return b.prefix + key + objectSuffix
}

func validKey(key string) error {
	if key == "" {
		return errors.New("s3store: key is required")
	}
	return nil
}

// isNotFound matches the SDK's typed missing-object errors plus the string
// forms some S3-compatible stores return.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "NoSuchKey") || strings.Contains(message, "NotFound")
}
