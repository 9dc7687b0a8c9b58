package schema

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource stores contract documents in a Redis hash.
//
// Documents live under a single hash where:
//   - Key: configurable (default "normalize:schemas")
//   - Field: the textual schema reference
//   - Value: the raw contract document
//
// The Redis client is owned by the caller; Close does not close it.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	source := schema.NewRedisSource(client)
//	validator := schema.NewJSONValidator(source)
type RedisSource struct {
	client redis.UniversalClient
	key    string
}

// RedisOption configures RedisSource.
type RedisOption func(*RedisSource)

// WithKey sets a custom hash key (default "normalize:schemas").
func WithKey(key string) RedisOption {
	return func(s *RedisSource) {
		s.key = key
	}
}

// NewRedisSource creates a Redis-backed schema source.
func NewRedisSource(client redis.UniversalClient, opts ...RedisOption) *RedisSource {
	s := &RedisSource{
		client: client,
		key:    "normalize:schemas",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the document stored for ref.
func (s *RedisSource) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	document, err := s.client.HGet(ctx, s.key, ref.String()).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	return document, nil
}

// Register stores document for ref, replacing any previous revision.
func (s *RedisSource) Register(ctx context.Context, ref Ref, document []byte) error {
	if ref.IsZero() {
		return fmt.Errorf("%w: empty ref", ErrMalformedRef)
	}
	if len(document) == 0 {
		return ErrEmptyDocument
	}
	if err := s.client.HSet(ctx, s.key, ref.String(), document).Err(); err != nil {
		return fmt.Errorf("register schema: %w", err)
	}
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *RedisSource) Close() error {
	return nil
}

// Compile-time check.
var _ Source = (*RedisSource)(nil)
