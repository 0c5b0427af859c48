package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/popapi/pkg/logger"
)

// LoggerConfig configures the Logger plugin.
type LoggerConfig struct {
	Name   string
	LogDir string
	Level  slog.Level

	// Output is the console writer. Defaults to os.Stdout.
	Output io.Writer

	Extractors []logger.ContextExtractor
}

// LoggerPlugin builds the application and request loggers from the
// registry's LoggerArgs and closes them on shutdown.
var LoggerPlugin = NewPlugin("logger", installLogger)

func installLogger(_ context.Context, r *Registry, cfg LoggerConfig) (*logger.Logger, error) {
	args := r.LoggerArgs()
	format := logger.FormatPretty
	switch {
	case args.Quiet:
		format = logger.FormatQuiet
	case !args.Pretty:
		format = logger.FormatUgly
	}

	l, err := logger.New(logger.Config{
		Output: cfg.Output,
		Name:   cfg.Name,
		Dir:    cfg.LogDir,
		Format: format,
		Level:  cfg.Level,
		Sentry: r.Config().Sentry,
	}, cfg.Extractors...)
	if err != nil {
		return nil, err
	}

	r.with(func(r *Registry) {
		r.logger = l.Logger
		r.httpLogger = l.With(slog.String("component", "http"))
	})
	r.OnShutdown(l.Close)
	return l, nil
}

// RequestLogger logs one line per request once the response is done.
// Server errors log at error level, client errors at warn, the rest at info.
func RequestLogger(l *slog.Logger) Middleware {
	if l == nil {
		l = logger.NewNope()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			start := time.Now()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = statusOf(err)
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			req := c.Request()
			l.Log(c.Context(), level, "request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Int64("size", c.ResponseWriter().Size()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", req.RemoteAddr),
			)
			return err
		}
	}
}

// statusOf is the status an unwritten error will be answered with.
func statusOf(err error) int {
	if httpErr := AsHTTPError(err); httpErr != nil && httpErr.Code >= 400 && httpErr.Code < 600 {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
