package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache with TTL support.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error

	Close() error
}

// Marshaler serializes cache values for backends that store bytes.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSONMarshaler encodes values with encoding/json.
type JSONMarshaler[V any] struct{}

func (JSONMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSONMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var sfGroup singleflight.Group

// Generation counts invalidations of one cache. Writers bump it once the
// source of truth has changed and before they clear the cache, so a value
// read from the old state is never stored.
type Generation struct {
	n atomic.Uint64
}

// Bump marks every value computed so far as outdated.
func (g *Generation) Bump() {
	g.n.Add(1)
}

func (g *Generation) load() uint64 {
	if g == nil {
		return 0
	}
	return g.n.Load()
}

// GetOrSet returns the cached value for key, or computes it with fn on a miss.
// Concurrent misses for the same cache and key share a single call to fn.
// Values are not cached when fn fails. A failed Set is not reported: the
// computed value is still returned.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	return GetOrSetFresh(ctx, c, nil, key, ttl, fn)
}

// GetOrSetFresh is GetOrSet guarded by gen. A miss that overlaps a Bump
// still returns what fn computed but leaves nothing in the cache, and
// callers arriving after the Bump do not join the older computation.
//
// The shared call runs detached from the caller's cancellation, so one
// client going away does not fail the others waiting on it.
func GetOrSetFresh[V any](ctx context.Context, c Cache[V], gen *Generation, key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	start := gen.load()
	v, err, _ := sfGroup.Do(fmt.Sprintf("%p:%d:%s", c, start, key), func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if gen.load() != start {
			return val, nil
		}
		_ = c.Set(ctx, key, val, ttl)
		// A writer that bumps after this look clears after the Set.
		if gen.load() != start {
			_ = c.Delete(ctx, key)
		}
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	r, _ := v.(V)
	return r, nil
}
