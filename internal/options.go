package internal

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/popapi/pkg/health"
	"github.com/dmitrymomot/popapi/pkg/logger"
)

// Options configures Init.
type Options struct {
	Config *Config

	Name    string
	Version string
	Args    []string

	LogDir   string
	LogLevel slog.Level
	Output   io.Writer

	Hosts        []string
	DatabasePort int
	Username     string
	Password     string

	ServerPort int
	Workers    int

	CacheTTL        time.Duration
	CacheMaxEntries int

	Controllers     []ControllerFactory
	Handlers        []Handler
	RequestScope    []Middleware
	Middlewares     []Middleware
	ErrorHandler    ErrorHandler
	Extractors      []logger.ContextExtractor
	Metrics         *prometheus.Registry
	ReadinessChecks health.Checks
}

// Option configures Init.
type Option func(*Options)

// WithName sets the application name. It names the database, the log file
// and the CLI command, and is required.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

// WithArgs sets the command-line arguments, without the program name.
// Defaults to os.Args[1:].
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = append([]string{}, args...)
	}
}

// WithLogDir sets the directory holding the log file. It is emptied at startup.
func WithLogDir(dir string) Option {
	return func(o *Options) {
		o.LogDir = dir
	}
}

func WithLogLevel(level slog.Level) Option {
	return func(o *Options) {
		o.LogLevel = level
	}
}

// WithOutput sets the console writer for logs, help and version text.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithHosts sets the MongoDB hosts. Defaults to localhost.
func WithHosts(hosts ...string) Option {
	return func(o *Options) {
		o.Hosts = hosts
	}
}

// WithDatabasePort sets the MongoDB port. Defaults to 27017.
func WithDatabasePort(port int) Option {
	return func(o *Options) {
		o.DatabasePort = port
	}
}

func WithCredentials(username, password string) Option {
	return func(o *Options) {
		o.Username = username
		o.Password = password
	}
}

// WithServerPort overrides PORT.
func WithServerPort(port int) Option {
	return func(o *Options) {
		o.ServerPort = port
	}
}

// WithWorkers sets the number of server workers. Defaults to 2.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithCache enables content caching with the given TTL, overriding CACHE_TTL.
func WithCache(ttl time.Duration, maxEntries int) Option {
	return func(o *Options) {
		o.CacheTTL = ttl
		o.CacheMaxEntries = maxEntries
	}
}

// WithControllers adds controllers built once the registry is ready.
func WithControllers(factories ...ControllerFactory) Option {
	return func(o *Options) {
		o.Controllers = append(o.Controllers, factories...)
	}
}

// WithHandlers adds handlers that need nothing from the registry.
func WithHandlers(h ...Handler) Option {
	return func(o *Options) {
		o.Handlers = append(o.Handlers, h...)
	}
}

// WithRequestScope adds middleware that runs before the request logger.
func WithRequestScope(mw ...Middleware) Option {
	return func(o *Options) {
		o.RequestScope = append(o.RequestScope, mw...)
	}
}

// WithMiddleware adds global middleware.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *Options) {
		o.Middlewares = append(o.Middlewares, mw...)
	}
}

// WithErrorHandlerFunc replaces the central error handler.
func WithErrorHandlerFunc(h ErrorHandler) Option {
	return func(o *Options) {
		o.ErrorHandler = h
	}
}

// WithExtractors adds context extractors to the logger.
func WithExtractors(ex ...logger.ContextExtractor) Option {
	return func(o *Options) {
		o.Extractors = append(o.Extractors, ex...)
	}
}

// WithMetrics exposes reg at /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(o *Options) {
		o.Metrics = reg
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during the readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(o *Options) {
		if o.ReadinessChecks == nil {
			o.ReadinessChecks = make(health.Checks)
		}
		o.ReadinessChecks[name] = fn
	}
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg Config) Option {
	return func(o *Options) {
		o.Config = &cfg
	}
}
