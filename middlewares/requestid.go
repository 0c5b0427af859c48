package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/pkg/logger"
)

type requestIDKey struct{}

// RequestIDHeader is the header that carries the request ID in responses.
const RequestIDHeader = "X-Request-ID"

// DefaultRequestIDHeaders are checked in order for an ID sent by the client.
var DefaultRequestIDHeaders = []string{RequestIDHeader, "X-Correlation-ID"}

type requestIDConfig struct {
	incoming []string
	generate func() string
	echo     string
}

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders replaces the headers checked for an incoming ID.
// No headers means every request gets a fresh ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.incoming = headers
	}
}

// WithRequestIDGenerator replaces uuid.NewString.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// WithRequestIDResponseHeader sets the header the ID is echoed in.
// An empty name disables the echo.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.echo = header
	}
}

// RequestID returns middleware that assigns an ID to each request. An ID
// sent by the client in one of the configured headers is kept, otherwise a
// UUID is generated. The ID is stored in the context and echoed in the
// response.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		incoming: DefaultRequestIDHeaders,
		generate: uuid.NewString,
		echo:     RequestIDHeader,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	lookups := make([]internal.Lookup, len(cfg.incoming))
	for i, h := range cfg.incoming {
		lookups[i] = internal.Header(h)
	}
	incoming := internal.FirstOf(lookups...)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id := incoming(c)
			if id == "" {
				id = cfg.generate()
			}

			c.Set(requestIDKey{}, id)
			if cfg.echo != "" {
				c.SetHeader(cfg.echo, id)
			}
			return next(c)
		}
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor adds "request_id" to records logged with a request
// context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, _ := ctx.Value(requestIDKey{}).(string)
		if id == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", id), true
	}
}
