package internal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/popapi/pkg/logger"
)

// Mux is the HTTP routing layer: a chi router whose handlers and middleware
// speak Context and report failures to a single ErrorHandler.
//
// Middleware must be added with Use before any route is registered.
type Mux struct {
	router       chi.Router
	logger       *slog.Logger
	errorHandler ErrorHandler
}

// MuxOption configures a Mux.
type MuxOption func(*Mux)

// WithMuxLogger sets the logger handed to every request Context.
func WithMuxLogger(l *slog.Logger) MuxOption {
	return func(m *Mux) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithErrorHandler sets the handler for errors returned by handlers and middleware.
func WithErrorHandler(h ErrorHandler) MuxOption {
	return func(m *Mux) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// NewMux creates an empty Mux.
func NewMux(opts ...MuxOption) *Mux {
	m := &Mux{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.errorHandler == nil {
		m.errorHandler = NewErrorHandler(false)
	}
	return m
}

// Use appends middleware to the global stack.
func (m *Mux) Use(mw ...Middleware) {
	for _, fn := range mw {
		m.router.Use(m.adaptMiddleware(fn))
	}
}

// UseHTTP appends net/http middleware to the global stack.
func (m *Mux) UseHTTP(mw ...func(http.Handler) http.Handler) {
	m.router.Use(mw...)
}

// Handle lets each handler declare its routes.
func (m *Mux) Handle(handlers ...Handler) {
	r := m.Router()
	for _, h := range handlers {
		h.Routes(r)
	}
}

// Router returns the route declaration interface over the root router.
func (m *Mux) Router() Router {
	return &chiRouter{chi: m.router, mux: m}
}

// Mount attaches an http.Handler at the given pattern.
func (m *Mux) Mount(pattern string, h http.Handler) {
	m.router.Mount(pattern, h)
}

// NotFound sets the handler for unmatched routes.
func (m *Mux) NotFound(h HandlerFunc) {
	m.router.NotFound(m.wrapHandler(h))
}

// MethodNotAllowed sets the handler for known routes requested with another method.
func (m *Mux) MethodNotAllowed(h HandlerFunc) {
	m.router.MethodNotAllowed(m.wrapHandler(h))
}

func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the mux's error handler.
func (m *Mux) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, m.logger)
		if err := h(c); err != nil {
			m.handleError(c, err)
		}
	}
}

// handleError hands err to the error handler unless a response was already written.
func (m *Mux) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if herr := m.errorHandler(c, err); herr != nil {
		c.LogError("error handler failed", slog.Any("error", herr))
	}
}

// HandleFunc registers a net/http handler for method and pattern.
func (m *Mux) HandleFunc(method, pattern string, h http.HandlerFunc) {
	m.router.Method(method, pattern, h)
}
