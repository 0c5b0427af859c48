package internal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/popapi/pkg/cache"
	"github.com/dmitrymomot/popapi/pkg/content"
	pkgredis "github.com/dmitrymomot/popapi/pkg/redis"
)

// CacheConfig configures the Cache plugin.
type CacheConfig struct {
	// Name prefixes Redis keys.
	Name string

	// TTL overrides CACHE_TTL when positive. Caching stays off while both are zero.
	TTL time.Duration

	// MaxEntries caps each in-memory cache. Zero means unlimited.
	MaxEntries int
}

// ContentCache hands out one cache per content item type, so writes to
// one type only invalidate that type.
type ContentCache struct {
	name       string
	ttl        time.Duration
	maxEntries int
	redis      redis.UniversalClient

	mu     sync.Mutex
	caches map[string]cache.Cache[content.Entry]
}

// CachePlugin enables read caching for content services. It uses Redis when
// REDIS_URL is set and process memory otherwise.
var CachePlugin = NewPlugin("cache", installCache)

func installCache(ctx context.Context, r *Registry, cfg CacheConfig) (*ContentCache, error) {
	env := r.Config()
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = env.CacheTTL
	}
	if ttl <= 0 {
		r.Logger().DebugContext(ctx, "content cache disabled")
		return nil, nil
	}

	cc := &ContentCache{
		name:       cfg.Name,
		ttl:        ttl,
		maxEntries: cfg.MaxEntries,
		caches:     make(map[string]cache.Cache[content.Entry]),
	}

	if env.RedisURL != "" {
		client, err := pkgredis.Open(ctx, env.RedisURL)
		if err != nil {
			return nil, err
		}
		cc.redis = client
		r.OnShutdown(pkgredis.Shutdown(client))
	}

	r.with(func(r *Registry) {
		r.cache = cc
		r.redis = cc.redis
	})
	r.OnShutdown(func(context.Context) error { return cc.Close() })

	r.Logger().InfoContext(ctx, "content cache enabled",
		slog.Duration("ttl", ttl),
		slog.Bool("redis", cc.redis != nil),
	)
	return cc, nil
}

// TTL is the lifetime of cached reads.
func (c *ContentCache) TTL() time.Duration { return c.ttl }

// For returns the cache dedicated to itemType, creating it on first use.
func (c *ContentCache) For(itemType string) (cache.Cache[content.Entry], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.caches[itemType]; ok {
		return existing, nil
	}

	var (
		store cache.Cache[content.Entry]
		err   error
	)
	if c.redis != nil {
		prefix := itemType
		if c.name != "" {
			prefix = c.name + ":" + itemType
		}
		store, err = cache.NewRedis(c.redis, cache.RedisConfig[content.Entry]{
			Prefix:     prefix,
			DefaultTTL: c.ttl,
			Marshaler:  content.EntryMarshaler{},
		})
		if err != nil {
			return nil, err
		}
	} else {
		store = cache.NewMemory[content.Entry](cache.MemoryConfig{
			DefaultTTL:      c.ttl,
			CleanupInterval: c.ttl,
			MaxEntries:      c.maxEntries,
		})
	}

	c.caches[itemType] = store
	return store, nil
}

// Close stops every cache. The Redis client is closed by its own shutdown hook.
func (c *ContentCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, store := range c.caches {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
