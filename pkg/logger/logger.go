package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultMaxFileSize is the size in megabytes after which the log file is rotated.
const DefaultMaxFileSize = 5

// Format selects how records are rendered on the console.
type Format string

const (
	// FormatPretty renders colored, human-friendly lines.
	FormatPretty Format = "pretty"
	// FormatUgly renders plain key=value lines without colors.
	FormatUgly Format = "ugly"
	// FormatQuiet disables console output. The log file is still written.
	FormatQuiet Format = "quiet"
)

// Config describes where log records go.
type Config struct {
	// Output is the console writer. Defaults to os.Stdout.
	Output io.Writer

	// Name is attached to every record and names the log file.
	Name string

	// Dir is the directory for the JSON-lines file "{Dir}/{Name}.log".
	// File logging is disabled when empty.
	Dir string

	Format Format
	Level  slog.Level

	// MaxFileSize is the rotation threshold in megabytes.
	MaxFileSize int

	Sentry SentryConfig
}

// Logger is a configured slog.Logger plus the resources that back it.
type Logger struct {
	*slog.Logger
	file   *lumberjack.Logger
	sentry bool
}

// New builds a logger that fans records out to the console, the rotating
// log file and Sentry, depending on cfg.
// All records carry the "name" and "pid" attributes.
func New(cfg Config, extractors ...ContextExtractor) (*Logger, error) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}

	l := &Logger{}
	var handlers []slog.Handler

	switch cfg.Format {
	case FormatQuiet:
	case FormatUgly:
		handlers = append(handlers, slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: cfg.Level}))
	default:
		handlers = append(handlers, tint.NewHandler(cfg.Output, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.RFC3339,
		}))
	}

	if cfg.Dir != "" {
		if cfg.Name == "" {
			return nil, ErrMissingName
		}
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, errors.Join(ErrLogDir, err)
		}
		l.file = &lumberjack.Logger{
			Filename: filepath.Join(cfg.Dir, cfg.Name+".log"),
			MaxSize:  cfg.MaxFileSize,
		}
		handlers = append(handlers, slog.NewJSONHandler(l.file, &slog.HandlerOptions{Level: cfg.Level}))
	}

	if h, ok := newSentryHandler(cfg.Sentry); ok {
		handlers = append(handlers, h)
		l.sentry = true
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewTextHandler(io.Discard, nil)
	case 1:
		h = handlers[0]
	default:
		h = fanout(handlers)
	}

	l.Logger = slog.New(NewLogHandlerDecorator(h, extractors...)).With(
		slog.String("name", cfg.Name),
		slog.Int("pid", os.Getpid()),
	)
	return l, nil
}

// Close flushes Sentry and releases the log file.
func (l *Logger) Close(ctx context.Context) error {
	if l.sentry {
		flushSentry(ctx)
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
