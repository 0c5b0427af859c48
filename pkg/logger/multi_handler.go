package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout sends each record to every destination that accepts its level:
// the console, the rotated file and Sentry.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle keeps writing after a destination fails and joins the errors.
func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var err error
	for _, h := range f {
		if h.Enabled(ctx, rec.Level) {
			err = errors.Join(err, h.Handle(ctx, rec.Clone()))
		}
	}
	return err
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
