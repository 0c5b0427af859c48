// Package cache provides a generic Cache interface with in-memory and Redis implementations.
//
// The content service uses it to keep rendered page listings and documents
// out of MongoDB between writes.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL (1 hour by default)
//   - Negative: item never expires
//
// # In-Memory Cache
//
// [NewMemory] keeps entries in a map guarded by a mutex. Expired entries are
// dropped on read and, when CleanupInterval is set, by a background sweeper:
//
//	c := cache.NewMemory[string](cache.MemoryConfig{
//		DefaultTTL:      5 * time.Minute,
//		CleanupInterval: 30 * time.Second,
//		MaxEntries:      10000,
//	})
//	defer c.Close()
//
// # Redis Cache
//
// [NewRedis] stores values under "{prefix}:{key}" so several caches can
// share one Redis database, and Clear only touches its own keys:
//
//	client, _ := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c, err := cache.NewRedis[Post](client, cache.RedisConfig[Post]{Prefix: "posts"})
//
// Values are JSON-encoded unless a [Marshaler] is supplied.
//
// # Cache Stampede Prevention
//
// [GetOrSet] computes a missing value once, however many goroutines miss
// at the same time:
//
//	post, err := cache.GetOrSet(ctx, c, "post:1", time.Minute, func(ctx context.Context) (Post, error) {
//		return repo.FindPost(ctx, "1")
//	})
//
// [GetOrSetFresh] adds a [Generation] that writers bump before clearing the
// cache, so a read that raced a write does not store what it saw:
//
//	var gen cache.Generation
//	// writer
//	_ = repo.SavePost(ctx, post)
//	gen.Bump()
//	_ = c.Clear(ctx)
package cache
