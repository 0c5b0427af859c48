package redis

import "errors"

// Errors returned by Open and Healthcheck. Causes are joined to them, so
// match with errors.Is.
var (
	ErrNoURL       = errors.New("redis: REDIS_URL is empty")
	ErrInvalidURL  = errors.New("redis: invalid URL")
	ErrUnreachable = errors.New("redis: server unreachable")
	ErrUnhealthy   = errors.New("redis: ping failed")
)
