package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/popapi/internal"
)

// ResponseTimeHeader carries the handler duration in milliseconds.
const ResponseTimeHeader = "X-Response-Time"

// ResponseTimeConfig configures the response time middleware.
type ResponseTimeConfig struct {
	Header   string
	Duration *prometheus.HistogramVec // nil disables metrics
}

// ResponseTimeOption configures ResponseTimeConfig.
type ResponseTimeOption func(*ResponseTimeConfig)

// WithResponseTimeHeader sets the header name.
func WithResponseTimeHeader(name string) ResponseTimeOption {
	return func(cfg *ResponseTimeConfig) {
		cfg.Header = name
	}
}

// WithResponseTimeRegisterer records every request in the
// "http_request_duration_seconds" histogram, labelled by method, route
// pattern and status code, and registers it with reg.
func WithResponseTimeRegisterer(reg prometheus.Registerer) ResponseTimeOption {
	return func(cfg *ResponseTimeConfig) {
		hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"})

		if err := reg.Register(hist); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
			hist = are.ExistingCollector.(*prometheus.HistogramVec)
		}
		cfg.Duration = hist
	}
}

// ResponseTime returns middleware that reports how long the handler took in
// the X-Response-Time header, e.g. "3.141ms".
func ResponseTime(opts ...ResponseTimeOption) internal.Middleware {
	cfg := &ResponseTimeConfig{Header: ResponseTimeHeader}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			c.ResponseWriter().OnBeforeWrite(func() {
				elapsed := float64(time.Since(start).Microseconds()) / 1000
				c.Response().Header().Set(cfg.Header, fmt.Sprintf("%.3fms", elapsed))
			})

			err := next(c)

			if cfg.Duration != nil {
				status := c.ResponseWriter().Status()
				if err != nil && !c.Written() {
					status = http.StatusInternalServerError
					if httpErr := internal.AsHTTPError(err); httpErr != nil {
						status = httpErr.Code
					}
				}
				cfg.Duration.WithLabelValues(
					c.Request().Method,
					routePattern(c),
					strconv.Itoa(status),
				).Observe(time.Since(start).Seconds())
			}
			return err
		}
	}
}

// routePattern is the matched chi pattern, e.g. "/post/{id}".
func routePattern(c internal.Context) string {
	if rctx := chi.RouteContext(c.Request().Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
