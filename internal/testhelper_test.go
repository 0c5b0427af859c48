package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/popapi/internal"
)

// captureHandler runs fn inside a real request Context.
type captureHandler struct {
	pattern string
	fn      func(c internal.Context)
}

func (h *captureHandler) Routes(r internal.Router) {
	r.GET(h.pattern, func(c internal.Context) error {
		h.fn(c)
		return nil
	})
}

// requestVia serves req through a Mux with fn registered at GET /.
func requestVia(t *testing.T, req *http.Request, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, "/", req, fn)
}

// requestViaParam serves req through a Mux with fn registered at GET /{id}.
func requestViaParam(t *testing.T, req *http.Request, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, "/{id}", req, fn)
}

func serve(t *testing.T, pattern string, req *http.Request, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	mux := internal.NewMux()
	mux.Handle(&captureHandler{pattern: pattern, fn: fn})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

// handlerFunc adapts a function to internal.Handler for tests that need
// more than one route.
type handlerFunc func(r internal.Router)

func (f handlerFunc) Routes(r internal.Router) { f(r) }
