package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ArtifactTTL bounds how long a self-hosted artifact survives without a rewrite
const ArtifactTTL = 30 * 24 * time.Hour

// RedisStore keeps artifacts in Redis hashes, one per key
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "artifact:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ArtifactTTL,
	}
}

// Get reads an artifact hash
func (s *RedisStore) Get(ctx context.Context, key string) (*Object, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	body, ok := fields["body"]
	if !ok {
		return nil, ErrNotFound
	}

	return &Object{
		Body: []byte(body),
		PutOptions: PutOptions{
			ContentType:     fields["content_type"],
			ContentEncoding: fields["content_encoding"],
			CacheControl:    fields["cache_control"],
		},
	}, nil
}

// Put replaces an artifact hash and refreshes its TTL
func (s *RedisStore) Put(ctx context.Context, key string, body []byte, opts PutOptions) error {
	redisKey := s.prefix + key

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisKey)
	pipe.HSet(ctx, redisKey, map[string]interface{}{
		"body":             body,
		"content_type":     opts.ContentType,
		"content_encoding": opts.ContentEncoding,
		"cache_control":    opts.CacheControl,
	})
	pipe.Expire(ctx, redisKey, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
