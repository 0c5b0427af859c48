package popapi

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/middlewares"
	"github.com/dmitrymomot/popapi/pkg/health"
	"github.com/dmitrymomot/popapi/pkg/logger"
)

// Type aliases - public API
type (
	// Registry holds installed plugins and the state they share.
	Registry = internal.Registry

	// Plugin is a named installer. Declare plugins once with NewPlugin.
	Plugin[C any] = internal.Plugin[C]

	// PluginToken identifies a plugin regardless of its config type.
	PluginToken = internal.PluginToken

	// Config is the process environment read by Init.
	Config = internal.Config

	// LoggerArgs is the logging mode selected on the command line.
	LoggerArgs = internal.LoggerArgs

	// Option configures Init.
	Option = internal.Option

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler answers errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// ControllerFactory builds a handler once the registry is ready.
	ControllerFactory = internal.ControllerFactory

	// HTTPError is an error with a status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ContextExtractor pulls a slog attribute from a request context.
	ContextExtractor = logger.ContextExtractor

	// Mux is the router behind the Routes plugin.
	Mux = internal.Mux

	// Server runs the HTTP workers.
	Server = internal.Server

	// ContentCache hands out per-type content caches.
	ContentCache = internal.ContentCache
)

// Plugin configs
type (
	CLIConfig      = internal.CLIConfig
	LoggerConfig   = internal.LoggerConfig
	DatabaseConfig = internal.DatabaseConfig
	CacheConfig    = internal.CacheConfig
	ServerConfig   = internal.ServerConfig
	RoutesConfig   = internal.RoutesConfig
)

// Built-in plugins, in the order Init installs them.
var (
	CLIPlugin        = internal.CLIPlugin
	LoggerPlugin     = internal.LoggerPlugin
	DatabasePlugin   = internal.DatabasePlugin
	CachePlugin      = internal.CachePlugin
	HTTPServerPlugin = internal.HTTPServerPlugin
	RoutesPlugin     = internal.RoutesPlugin
)

// Errors
var (
	ErrInvalidConfig   = internal.ErrInvalidConfig
	ErrInvalidMode     = internal.ErrInvalidMode
	ErrExit            = internal.ErrExit
	ErrMissingName     = internal.ErrMissingName
	ErrNilPlugin       = internal.ErrNilPlugin
	ErrNoDatabase      = internal.ErrNoDatabase
	ErrNoServer        = internal.ErrNoServer
	ErrWorkerCrashLoop = internal.ErrWorkerCrashLoop

	ErrUnsupportedContentType = internal.ErrUnsupportedContentType
)

// Modes accepted by --mode.
const (
	ModePretty = internal.ModePretty
	ModeQuiet  = internal.ModeQuiet
	ModeUgly   = internal.ModeUgly
)

// Environments with special behavior.
const (
	EnvTest        = internal.EnvTest
	EnvDevelopment = internal.EnvDevelopment
)

// Paths served by the Routes plugin.
const (
	LivenessPath  = internal.LivenessPath
	ReadinessPath = internal.ReadinessPath
	MetricsPath   = internal.MetricsPath
)

// Init builds a registry, installs the built-in plugins and waits for
// MongoDB. Requests go through RequestID, the request logger, ResponseTime,
// Recover and SecureHeaders before any middleware added with WithMiddleware.
// Process and Go runtime metrics are served at /metrics together with the
// request duration histogram.
//
// Example:
//
//	api, err := popapi.Init(ctx,
//	    popapi.WithName("api"),
//	    popapi.WithVersion("1.0.0"),
//	    popapi.WithControllers(controllers.ForCollection("posts", content.Config{ItemType: "post"})),
//	)
//	if errors.Is(err, popapi.ErrExit) {
//	    return nil
//	}
//	if err != nil {
//	    return err
//	}
//	return api.Run(ctx)
func Init(ctx context.Context, opts ...Option) (*Registry, error) {
	return internal.Init(ctx, append(defaultOptions(metricsRegistry(opts)), opts...)...)
}

func defaultOptions(reg *prometheus.Registry) []Option {
	return []Option{
		internal.WithRequestScope(middlewares.RequestID()),
		internal.WithMiddleware(
			middlewares.ResponseTime(middlewares.WithResponseTimeRegisterer(reg)),
			middlewares.Recover(),
			middlewares.SecureHeaders(),
		),
		internal.WithExtractors(middlewares.RequestIDExtractor()),
		internal.WithMetrics(reg),
	}
}

// metricsRegistry returns the registry set with WithMetrics, or a new one
// with the Go and process collectors.
func metricsRegistry(opts []Option) *prometheus.Registry {
	var given internal.Options
	for _, opt := range opts {
		opt(&given)
	}
	if given.Metrics != nil {
		return given.Metrics
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRegistry returns an empty registry over cfg, for installing plugins
// without Init.
func NewRegistry(cfg Config) *Registry {
	return internal.NewRegistry(cfg)
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	return internal.LoadConfig()
}

// NewPlugin declares a plugin. fn runs at most once per registry; its
// result is kept and returned by Instance.
//
// Example:
//
//	var Seed = popapi.NewPlugin("seed", func(ctx context.Context, r *popapi.Registry, file string) (int, error) {
//	    return r.Database().ImportCollection(ctx, "post", file)
//	})
func NewPlugin[C, P any](name string, fn func(ctx context.Context, r *Registry, cfg C) (P, error)) *Plugin[C] {
	return internal.NewPlugin(name, fn)
}

// Use installs p on r unless it is already installed and returns r.
func Use[C any](ctx context.Context, r *Registry, p *Plugin[C], cfg C) (*Registry, error) {
	return internal.Use(ctx, r, p, cfg)
}

// Instance returns what p's install function produced on r.
func Instance[P any](r *Registry, p PluginToken) (P, bool) {
	return internal.Instance[P](r, p)
}

// Init options

// WithName sets the application name. It names the CLI, the log file and,
// suffixed with the environment, the database. Required.
func WithName(name string) Option { return internal.WithName(name) }

// WithVersion sets the version printed by --version.
func WithVersion(version string) Option { return internal.WithVersion(version) }

// WithArgs replaces os.Args[1:] as the command line.
func WithArgs(args ...string) Option { return internal.WithArgs(args...) }

// WithLogDir sets the directory for log files. It is emptied by Init.
func WithLogDir(dir string) Option { return internal.WithLogDir(dir) }

// WithLogLevel sets the minimum console level.
func WithLogLevel(level slog.Level) Option { return internal.WithLogLevel(level) }

// WithOutput sets the console writer for logs, help and version text.
func WithOutput(w io.Writer) Option { return internal.WithOutput(w) }

// WithHosts sets the MongoDB hosts.
func WithHosts(hosts ...string) Option { return internal.WithHosts(hosts...) }

// WithDatabasePort sets the MongoDB port shared by every host.
func WithDatabasePort(port int) Option { return internal.WithDatabasePort(port) }

// WithCredentials sets the MongoDB user.
func WithCredentials(username, password string) Option {
	return internal.WithCredentials(username, password)
}

// WithServerPort overrides PORT.
func WithServerPort(port int) Option { return internal.WithServerPort(port) }

// WithWorkers sets the number of HTTP workers.
func WithWorkers(n int) Option { return internal.WithWorkers(n) }

// WithCache enables the content cache. It overrides CACHE_TTL.
func WithCache(ttl time.Duration, maxEntries int) Option {
	return internal.WithCache(ttl, maxEntries)
}

// WithControllers adds controllers built from the registry.
func WithControllers(factories ...ControllerFactory) Option {
	return internal.WithControllers(factories...)
}

// WithHandlers adds handlers that need nothing from the registry.
func WithHandlers(h ...Handler) Option { return internal.WithHandlers(h...) }

// WithRequestScope adds middleware that runs before the request logger.
func WithRequestScope(mw ...Middleware) Option { return internal.WithRequestScope(mw...) }

// WithMiddleware adds global middleware after the defaults.
func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }

// WithErrorHandler replaces the central error handler.
func WithErrorHandler(h ErrorHandler) Option { return internal.WithErrorHandlerFunc(h) }

// WithExtractors adds context extractors to the request logger.
func WithExtractors(ex ...ContextExtractor) Option { return internal.WithExtractors(ex...) }

// WithMetrics serves reg at /metrics instead of the default registry.
func WithMetrics(reg *prometheus.Registry) Option { return internal.WithMetrics(reg) }

// WithReadinessCheck adds a check to /health/ready.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return internal.WithReadinessCheck(name, fn)
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg Config) Option { return internal.WithConfig(cfg) }

// HTTP errors

// NewHTTPError returns an error answered with code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithPublic shows the error message to clients.
func WithPublic() HTTPErrorOption { return internal.WithPublic() }

// WithError records the underlying cause.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

var (
	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrMethodNotAllowed   = internal.ErrMethodNotAllowed
	ErrConflict           = internal.ErrConflict
	ErrUnprocessable      = internal.ErrUnprocessable
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable
)

// IsHTTPError reports whether err wraps an *HTTPError.
func IsHTTPError(err error) bool { return internal.IsHTTPError(err) }

// AsHTTPError returns the *HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

// NewErrorHandler returns the default error handler. In development it
// adds the error chain or a recorded stack to the body.
func NewErrorHandler(development bool) ErrorHandler {
	return internal.NewErrorHandler(development)
}

// Request helpers

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Lookup reads a string from a request.
type Lookup = internal.Lookup

var (
	Header     = internal.Header
	QueryParam = internal.QueryParam
	URLParam   = internal.URLParam
	FirstOf    = internal.FirstOf
)
