package health

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/popapi/pkg/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports whether a dependency is usable.
// mongodb.Healthcheck and redis.Healthcheck return this shape.
type CheckFunc func(ctx context.Context) error

// Checks maps dependency names to their checks.
type Checks map[string]CheckFunc

// Response is the JSON body of a probe.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one dependency check.
type Check struct {
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Took   time.Duration `json:"took_ns"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a probe.
type Option func(*config)

// WithTimeout bounds the whole probe. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger failing checks are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) config {
	cfg := config{timeout: 5 * time.Second, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Run executes all checks concurrently. The response is unhealthy when any
// check fails or outlives the timeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return newConfig(opts...).run(ctx, checks)
}

type result struct {
	name string
	Check
}

func (cfg config) run(ctx context.Context, checks Checks) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	out := make(chan result, len(checks))
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			r := result{name: name, Check: Check{Status: StatusHealthy, Took: time.Since(start)}}
			if err != nil {
				r.Status, r.Error = StatusUnhealthy, err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
			}
			out <- r
			return nil
		})
	}
	_ = g.Wait()
	close(out)

	resp.Checks = make(map[string]Check, len(checks))
	for r := range out {
		resp.Checks[r.name] = r.Check
		if r.Status == StatusUnhealthy {
			resp.Status = StatusUnhealthy
		}
	}
	return resp
}
