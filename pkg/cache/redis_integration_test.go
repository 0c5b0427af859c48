//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/pkg/cache"
	"github.com/dmitrymomot/popapi/pkg/redis"
)

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	client, err := redis.Open(context.Background(), url)
	require.NoError(t, err, "failed to connect to Redis")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestRedisClient(t)

	posts, err := cache.NewRedis[map[string]any](client, cache.RedisConfig[map[string]any]{Prefix: "test:posts"})
	require.NoError(t, err)
	users, err := cache.NewRedis[map[string]any](client, cache.RedisConfig[map[string]any]{Prefix: "test:users"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = posts.Clear(ctx)
		_ = users.Clear(ctx)
	})

	_, err = posts.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, posts.Set(ctx, "1", map[string]any{"title": "hello"}, time.Minute))
	require.NoError(t, users.Set(ctx, "1", map[string]any{"name": "chris"}, time.Minute))

	v, err := posts.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "hello", v["title"])

	require.NoError(t, posts.Clear(ctx))
	_, err = posts.Get(ctx, "1")
	require.ErrorIs(t, err, cache.ErrNotFound)

	_, err = users.Get(ctx, "1")
	require.NoError(t, err, "clearing one prefix must keep the other")
}
