package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisConfig configures NewRedis.
type RedisConfig[V any] struct {
	// Prefix namespaces every key as "{Prefix}:{key}". Clear only removes
	// keys under the prefix, so it is required.
	Prefix string

	// DefaultTTL applies when Set is called with a zero TTL. Default: 1 hour.
	DefaultTTL time.Duration

	// Marshaler encodes values. Default: JSONMarshaler.
	Marshaler Marshaler[V]
}

// Redis is a cache backed by Redis, shared between processes.
type Redis[V any] struct {
	client     redis.UniversalClient
	marshaler  Marshaler[V]
	prefix     string
	defaultTTL time.Duration
}

// NewRedis creates a Redis-backed cache.
// The client lifecycle belongs to the caller; Close does not close it.
func NewRedis[V any](client redis.UniversalClient, cfg RedisConfig[V]) (*Redis[V], error) {
	if cfg.Prefix == "" {
		return nil, ErrEmptyPrefix
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.Marshaler == nil {
		cfg.Marshaler = JSONMarshaler[V]{}
	}
	return &Redis[V]{
		client:     client,
		marshaler:  cfg.Marshaler,
		prefix:     cfg.Prefix,
		defaultTTL: cfg.DefaultTTL,
	}, nil
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	// Redis reads 0 as "no expiration".
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear removes all keys under the prefix using SCAN, which does not block the server.
func (r *Redis[V]) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+":*", scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	return r.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
