package internal

import (
	"context"
	"errors"
	"fmt"
)

const (
	defaultLogDir       = "tmp"
	defaultDatabasePort = 27017
)

var defaultHosts = []string{"localhost"}

// Init builds a registry and installs the default plugins in order: CLI,
// Logger, Database, Cache, HTTPServer and Routes. It then waits for the
// database to answer. The log directory is emptied first.
//
// Any failure aborts the sequence. ErrExit means the command line asked for
// help or the version and the process should stop without error.
func Init(ctx context.Context, opts ...Option) (*Registry, error) {
	o := &Options{
		LogDir:       defaultLogDir,
		Hosts:        defaultHosts,
		DatabasePort: defaultDatabasePort,
		Workers:      defaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Name == "" {
		return nil, ErrMissingName
	}

	cfg := o.Config
	if cfg == nil {
		loaded, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = &loaded
	}

	if err := prepareDir(o.LogDir); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	r := NewRegistry(*cfg)
	steps := []func() error{
		func() error {
			_, err := Use(ctx, r, CLIPlugin, CLIConfig{
				Args:    o.Args,
				Name:    o.Name,
				Version: o.Version,
				Output:  o.Output,
			})
			return err
		},
		func() error {
			_, err := Use(ctx, r, LoggerPlugin, LoggerConfig{
				Name:       o.Name,
				LogDir:     o.LogDir,
				Level:      o.LogLevel,
				Output:     o.Output,
				Extractors: o.Extractors,
			})
			return err
		},
		func() error {
			_, err := Use(ctx, r, DatabasePlugin, DatabaseConfig{
				Name:     o.Name,
				Hosts:    o.Hosts,
				Port:     o.DatabasePort,
				Username: o.Username,
				Password: o.Password,
			})
			return err
		},
		func() error {
			_, err := Use(ctx, r, CachePlugin, CacheConfig{
				Name:       o.Name,
				TTL:        o.CacheTTL,
				MaxEntries: o.CacheMaxEntries,
			})
			return err
		},
		func() error {
			_, err := Use(ctx, r, HTTPServerPlugin, ServerConfig{
				Port:    o.ServerPort,
				Workers: o.Workers,
			})
			return err
		},
		func() error {
			_, err := Use(ctx, r, RoutesPlugin, RoutesConfig{
				Controllers:     o.Controllers,
				Handlers:        o.Handlers,
				RequestScope:    o.RequestScope,
				Middlewares:     o.Middlewares,
				ErrorHandler:    o.ErrorHandler,
				Metrics:         o.Metrics,
				ReadinessChecks: o.ReadinessChecks,
			})
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, abort(ctx, r, err)
		}
	}

	db := r.Database()
	if db == nil {
		return nil, abort(ctx, r, ErrNoDatabase)
	}
	if err := db.Connect(ctx); err != nil {
		return nil, abort(ctx, r, fmt.Errorf("connect database: %w", err))
	}
	r.Logger().InfoContext(ctx, "database connected", "database", db.Name())

	return r, nil
}

// abort releases whatever the installed plugins opened and returns err.
func abort(ctx context.Context, r *Registry, err error) error {
	if shutdownErr := r.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
		return errors.Join(err, shutdownErr)
	}
	return err
}
