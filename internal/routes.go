package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/popapi/pkg/health"
	"github.com/dmitrymomot/popapi/pkg/mongodb"
	pkgredis "github.com/dmitrymomot/popapi/pkg/redis"
)

// Default endpoint paths.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	MetricsPath   = "/metrics"
)

// compressionLevel is the gzip/deflate level for response bodies.
const compressionLevel = 4

// ControllerFactory builds a controller once the database and cache are
// available.
type ControllerFactory func(r *Registry) (Handler, error)

// RoutesConfig configures the Routes plugin.
type RoutesConfig struct {
	Controllers []ControllerFactory
	Handlers    []Handler

	// RequestScope runs outside the request logger, so values it stores in
	// the context (request IDs) reach the request log lines.
	RequestScope []Middleware

	// Middlewares run inside the request logger, before every handler.
	Middlewares []Middleware

	// ErrorHandler defaults to NewErrorHandler, with stacks in development.
	ErrorHandler ErrorHandler

	// Metrics exposes the registry at /metrics when set.
	Metrics *prometheus.Registry

	// ReadinessChecks run next to the database and Redis checks.
	ReadinessChecks health.Checks
}

// RoutesPlugin builds the HTTP router: body compression, the middleware
// chain, health and metrics endpoints, every controller's routes and a JSON
// 404 for everything else.
var RoutesPlugin = NewPlugin("routes", installRoutes)

func installRoutes(_ context.Context, r *Registry, cfg RoutesConfig) (*Mux, error) {
	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = NewErrorHandler(r.Config().Development())
	}

	mux := NewMux(WithMuxLogger(r.Logger()), WithErrorHandler(errorHandler))
	mux.UseHTTP(middleware.Compress(compressionLevel))
	mux.Use(cfg.RequestScope...)
	mux.Use(RequestLogger(r.HTTPLogger()))
	mux.Use(cfg.Middlewares...)

	mux.HandleFunc(http.MethodGet, LivenessPath, health.LivenessHandler())
	mux.HandleFunc(http.MethodGet, ReadinessPath, health.ReadinessHandler(
		readinessChecks(r, cfg.ReadinessChecks),
		health.WithLogger(r.Logger()),
	))
	if cfg.Metrics != nil {
		mux.HandleFunc(http.MethodGet, MetricsPath, promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}).ServeHTTP)
	}

	for i, factory := range cfg.Controllers {
		h, err := factory(r)
		if err != nil {
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		mux.Handle(h)
	}
	mux.Handle(cfg.Handlers...)

	mux.NotFound(NotFoundHandler)
	mux.MethodNotAllowed(NotFoundHandler)

	r.with(func(r *Registry) { r.mux = mux })
	return mux, nil
}

func readinessChecks(r *Registry, extra health.Checks) health.Checks {
	checks := health.Checks{}
	if db := r.Database(); db != nil {
		checks["mongodb"] = mongodb.Healthcheck(db)
	}
	if client := r.Redis(); client != nil {
		checks["redis"] = pkgredis.Healthcheck(client)
	}
	for name, fn := range extra {
		checks[name] = fn
	}
	return checks
}
