package middlewares_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/popapi/internal"
)

// serve registers h behind mw as route middleware for req's method and path,
// serves req, and returns the response and the error that left the
// outermost middleware.
func serve(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) (*httptest.ResponseRecorder, error) {
	t.Helper()
	return serveLogged(t, io.Discard, req, h, mw...)
}

// serveLogged is serve with request logs written to logs as JSON lines.
func serveLogged(t *testing.T, logs io.Writer, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) (*httptest.ResponseRecorder, error) {
	t.Helper()

	var err error
	capture := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			err = next(c)
			return err
		}
	}

	mux := internal.NewMux(internal.WithMuxLogger(slog.New(slog.NewJSONHandler(logs, nil))))
	mux.Router().Method(req.Method, req.URL.Path, h, append([]internal.Middleware{capture}, mw...)...)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec, err
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
