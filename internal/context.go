package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ErrUnsupportedContentType is returned by Bind for bodies that are neither
// JSON nor URL-encoded forms.
var ErrUnsupportedContentType = errors.New("internal: unsupported content type")

// Context is the per-request handle passed to handlers. It is also the
// request's context.Context, so it can be handed to the store and the logger
// directly.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	// ResponseWriter exposes status, size and pre-write hooks.
	ResponseWriter() *ResponseWriter
	Context() context.Context

	// Param returns a chi URL parameter, or "" when the route has none.
	Param(name string) string
	Query(name string) string
	QueryDefault(name, fallback string) string
	Header(name string) string

	SetHeader(name, value string)
	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	// Written reports whether the status line has gone out.
	Written() bool

	// Error builds an *HTTPError to return from the handler. Nothing is
	// written until the error handler sees it.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Bind decodes a JSON or URL-encoded form body into v. An empty body
	// leaves v untouched; any other content type is ErrUnsupportedContentType.
	Bind(v any) error

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set derives the request context with key bound to value. Later layers
	// see it through Get or c.Context().Value(key).
	Set(key any, value any)
	Get(key any) any
}

type requestContext struct {
	w   *ResponseWriter
	r   *http.Request
	log *slog.Logger
}

// newContext wraps w unless an outer layer already did, so status and size
// are tracked once per request.
func newContext(w http.ResponseWriter, r *http.Request, l *slog.Logger) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{w: rw, r: r, log: l}
}

func (c *requestContext) Request() *http.Request { return c.r }
func (c *requestContext) Response() http.ResponseWriter { return c.w }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.w }
func (c *requestContext) Context() context.Context { return c.r.Context() }
func (c *requestContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{} { return c.r.Context().Done() }
func (c *requestContext) Err() error { return c.r.Context().Err() }
func (c *requestContext) Value(key any) any { return c.r.Context().Value(key) }
func (c *requestContext) Get(key any) any { return c.r.Context().Value(key) }
func (c *requestContext) Param(name string) string { return chi.URLParam(c.r, name) }
func (c *requestContext) Query(name string) string { return c.r.URL.Query().Get(name) }
func (c *requestContext) Header(name string) string { return c.r.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string) { c.w.Header().Set(name, value) }
func (c *requestContext) Written() bool { return c.w.Written() }
func (c *requestContext) Logger() *slog.Logger { return c.log }

func (c *requestContext) QueryDefault(name, fallback string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return fallback
}

func (c *requestContext) Set(key, value any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, value))
}

func (c *requestContext) JSON(code int, v any) error {
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(code)
	return json.NewEncoder(c.w).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := io.WriteString(c.w, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.w.WriteHeader(code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Bind(v any) error {
	switch render.GetRequestContentType(c.r) {
	case render.ContentTypeForm:
		return c.bindForm(v)
	case render.ContentTypeJSON, render.ContentTypePlainText:
		return c.bindJSON(v)
	}
	if c.r.Body == nil || c.r.ContentLength == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedContentType, c.r.Header.Get("Content-Type"))
}

func (c *requestContext) bindJSON(v any) error {
	if c.r.Body == nil {
		return nil
	}
	switch err := render.DecodeJSON(c.r.Body, v); {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		return fmt.Errorf("decode json body: %w", err)
	}
}

// bindForm maps single-valued fields to strings and repeated fields to
// string slices, then decodes the result like a JSON body.
func (c *requestContext) bindForm(v any) error {
	if err := c.r.ParseForm(); err != nil {
		return fmt.Errorf("parse form body: %w", err)
	}
	if len(c.r.PostForm) == 0 {
		return nil
	}

	fields := make(map[string]any, len(c.r.PostForm))
	for k, vals := range c.r.PostForm {
		if len(vals) == 1 {
			fields[k] = vals[0]
		} else {
			fields[k] = vals
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode form body: %w", err)
	}
	if err := render.DecodeJSON(bytes.NewReader(data), v); err != nil {
		return fmt.Errorf("decode form body: %w", err)
	}
	return nil
}

func (c *requestContext) LogDebug(msg string, attrs ...any) { c.logAt(slog.LevelDebug, msg, attrs) }
func (c *requestContext) LogInfo(msg string, attrs ...any) { c.logAt(slog.LevelInfo, msg, attrs) }
func (c *requestContext) LogWarn(msg string, attrs ...any) { c.logAt(slog.LevelWarn, msg, attrs) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.logAt(slog.LevelError, msg, attrs) }

func (c *requestContext) logAt(level slog.Level, msg string, attrs []any) {
	c.log.Log(c.r.Context(), level, msg, attrs...)
}
