package internal

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/popapi/pkg/logger"
	"github.com/dmitrymomot/popapi/pkg/mongodb"
)

// LoggerArgs selects the console output of the logger.
type LoggerArgs struct {
	Pretty bool
	Quiet  bool
}

// Registry holds installed plugins and the state they share.
// State is written while plugins are installed and read afterwards.
type Registry struct {
	mu      sync.RWMutex
	plugins map[PluginToken]*slot
	order   []string

	config        Config
	loggerArgs    LoggerArgs
	logger        *slog.Logger
	httpLogger    *slog.Logger
	database      *mongodb.Database
	redis         redis.UniversalClient
	cache         *ContentCache
	mux           *Mux
	server        *Server
	values        map[string]any
	shutdownHooks []func(context.Context) error
}

// NewRegistry returns an empty registry over cfg. Loggers discard output
// until the Logger plugin is installed.
func NewRegistry(cfg Config) *Registry {
	nope := logger.NewNope()
	return &Registry{
		plugins:    make(map[PluginToken]*slot),
		config:     cfg,
		loggerArgs: LoggerArgs{Pretty: !cfg.Testing(), Quiet: cfg.Testing()},
		logger:     nope,
		httpLogger: nope,
		values:     make(map[string]any),
	}
}

// Installed reports whether p finished installing.
func (r *Registry) Installed(p PluginToken) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.plugins[p]
	return ok && s.installed()
}

// Plugins returns the names of installed plugins in install order.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

func (r *Registry) Config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

func (r *Registry) LoggerArgs() LoggerArgs {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggerArgs
}

func (r *Registry) SetLoggerArgs(args LoggerArgs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggerArgs = args
}

// Logger is the application logger.
func (r *Registry) Logger() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// HTTPLogger is the logger used for per-request lines.
func (r *Registry) HTTPLogger() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.httpLogger
}

// Database is nil until the Database plugin is installed.
func (r *Registry) Database() *mongodb.Database {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.database
}

// Redis is nil unless the Cache plugin connected to Redis.
func (r *Registry) Redis() redis.UniversalClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.redis
}

// Cache is nil when content caching is disabled.
func (r *Registry) Cache() *ContentCache {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache
}

// Mux is nil until the Routes plugin is installed.
func (r *Registry) Mux() *Mux {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mux
}

// Server is nil until the HTTPServer plugin is installed.
func (r *Registry) Server() *Server {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.server
}

// Set stores a named value for other plugins and controllers.
func (r *Registry) Set(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = v
}

func (r *Registry) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// OnShutdown registers a hook run after the server stopped, in registration order.
func (r *Registry) OnShutdown(hook func(context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdownHooks = append(r.shutdownHooks, hook)
}

func (r *Registry) hooks() []func(context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.shutdownHooks)
}

// Run serves traffic until ctx is cancelled or the process is signalled,
// then runs the shutdown hooks.
func (r *Registry) Run(ctx context.Context) error {
	srv := r.Server()
	if srv == nil {
		return ErrNoServer
	}
	return srv.Run(ctx)
}

// Shutdown runs the shutdown hooks without a server, for processes that
// initialized the registry but never served.
func (r *Registry) Shutdown(ctx context.Context) error {
	return runHooks(ctx, r.Logger(), r.hooks())
}

func (r *Registry) with(fn func(r *Registry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}
