package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/popapi/internal"
)

// DefaultStackSize caps the captured stack, in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures Recover.
type RecoverConfig struct {
	StackSize         int
	DisablePrintStack bool // no stack in the log record or the PanicError
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize caps the captured stack. Non-positive sizes keep
// DefaultStackSize.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack turns stack capture off.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

func (cfg RecoverConfig) stack() []byte {
	if cfg.DisablePrintStack {
		return nil
	}
	buf := make([]byte, cfg.StackSize)
	return buf[:runtime.Stack(buf, false)]
}

// Recover logs a panic raised below it and returns it as a *PanicError, so
// the error handler answers 500 and the server keeps serving. A response
// written before the panic is left as it is.
func Recover(opts ...RecoverOption) internal.Middleware {
	var cfg RecoverConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.StackSize <= 0 {
		cfg.StackSize = DefaultStackSize
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				pe := &PanicError{Value: v, Stack: cfg.stack()}

				req := c.Request()
				attrs := []any{
					slog.Any("panic", v),
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
				}
				if pe.Stack != nil {
					attrs = append(attrs, slog.String("stack", string(pe.Stack)))
				}
				c.LogError("panic recovered", attrs...)
				err = pe
			}()
			return next(c)
		}
	}
}
