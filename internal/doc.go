// Package internal provides the core types and implementation for PopApi.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/popapi" instead, which re-exports the public API.
//
// # Registry and plugins
//
// A [Registry] holds installed plugins and the state they share: the
// environment [Config], loggers, the MongoDB handle, the content cache, the
// router and the server. A plugin is declared once with [NewPlugin] and
// installed with [Use]. Installing the same plugin again is a no-op, so
// plugins can depend on each other by installing what they need:
//
//	var Search = internal.NewPlugin("search", func(ctx context.Context, r *internal.Registry, cfg SearchConfig) (*Index, error) {
//	    if _, err := internal.Use(ctx, r, internal.DatabasePlugin, internal.DatabaseConfig{Name: "api"}); err != nil {
//	        return nil, err
//	    }
//	    return NewIndex(r.Database(), cfg), nil
//	})
//
// [Init] installs the built-in plugins in order: CLI, Logger, Database,
// Cache, HTTPServer and Routes. It then waits for MongoDB.
//
// # Routing
//
// [Mux] adapts chi to [HandlerFunc] handlers that return errors. Errors are
// answered by a single [ErrorHandler]; the default one redacts
// messages of non-public errors and adds stacks in development.
//
// # Server
//
// [Server] runs a fixed number of workers over one listener. A worker whose
// serve loop fails is respawned with linear backoff.
package internal
