package redis

import (
	"context"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"
)

// Healthcheck pings client on every call. It has the shape of
// health.CheckFunc; a nil client always fails.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnhealthy
		}
		err := client.Ping(ctx).Err()
		if err == nil {
			return nil
		}
		return errors.Join(ErrUnhealthy, err)
	}
}

// Shutdown adapts client.Close to a registry shutdown hook.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error { return client.Close() }
}
