// Package logger builds the structured logger used by PopApi services.
//
// A logger created with [New] writes every record to up to three places:
//
//   - the console, rendered by tint in "pretty" mode or by slog's text
//     handler in "ugly" mode ("quiet" disables it);
//   - a JSON-lines file "{Dir}/{Name}.log", rotated by lumberjack once it
//     reaches MaxFileSize megabytes;
//   - Sentry, when a DSN is configured. Errors become issues, warnings are
//     stored as logs.
//
// Every record carries "name" and "pid" attributes:
//
//	log, err := logger.New(logger.Config{
//		Name:   "api",
//		Dir:    "./tmp",
//		Format: logger.FormatPretty,
//	})
//	if err != nil {
//		return err
//	}
//	defer log.Close(ctx)
//	log.Info("listening", slog.Int("port", 5000))
//
// # Context Extractors
//
// A [ContextExtractor] pulls an attribute out of the record's context on
// every call, which is how request IDs end up on request-scoped log lines:
//
//	log, _ := logger.New(cfg, middlewares.RequestIDExtractor())
//	log.InfoContext(r.Context(), "request handled")
//	// ... request_id=0f8c...
//
// [NewLogHandlerDecorator] applies extractors to any slog.Handler.
package logger
