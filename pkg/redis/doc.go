// Package redis opens the Redis connection that backs the shared response cache.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"), redis.WithPoolSize(20))
//	if err != nil {
//		return err
//	}
//	hooks = append(hooks, redis.Shutdown(client))
//
// Open pings with linear backoff before returning. [Healthcheck] plugs the
// client into readiness probes.
package redis
