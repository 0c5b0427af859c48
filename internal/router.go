package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router is the interface handlers use to declare routes. Patterns use chi
// syntax, e.g. "/post/{id}". Route middleware runs inside the global stack,
// the first one outermost.
type Router interface {
	GET(pattern string, h HandlerFunc, mw ...Middleware)
	POST(pattern string, h HandlerFunc, mw ...Middleware)
	PUT(pattern string, h HandlerFunc, mw ...Middleware)
	PATCH(pattern string, h HandlerFunc, mw ...Middleware)
	DELETE(pattern string, h HandlerFunc, mw ...Middleware)

	// Method registers h for any HTTP method.
	Method(method, pattern string, h HandlerFunc, mw ...Middleware)

	// Group declares routes that share middleware added with Use inside fn.
	Group(fn func(r Router))

	// Route declares routes under a pattern prefix.
	Route(prefix string, fn func(r Router))

	// Use adds middleware to every route declared afterwards on this router.
	Use(mw ...Middleware)

	// Mount attaches a plain http.Handler, e.g. a third-party router.
	Mount(pattern string, h http.Handler)
}

type chiRouter struct {
	chi chi.Router
	mux *Mux
}

func (r *chiRouter) GET(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Method(http.MethodGet, pattern, h, mw...)
}

func (r *chiRouter) POST(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Method(http.MethodPost, pattern, h, mw...)
}

func (r *chiRouter) PUT(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Method(http.MethodPut, pattern, h, mw...)
}

func (r *chiRouter) PATCH(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Method(http.MethodPatch, pattern, h, mw...)
}

func (r *chiRouter) DELETE(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Method(http.MethodDelete, pattern, h, mw...)
}

func (r *chiRouter) Method(method, pattern string, h HandlerFunc, mw ...Middleware) {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	r.chi.Method(method, pattern, r.mux.wrapHandler(h))
}

func (r *chiRouter) Group(fn func(Router)) {
	r.chi.Group(func(sub chi.Router) { fn(&chiRouter{chi: sub, mux: r.mux}) })
}

func (r *chiRouter) Route(prefix string, fn func(Router)) {
	r.chi.Route(prefix, func(sub chi.Router) { fn(&chiRouter{chi: sub, mux: r.mux}) })
}

func (r *chiRouter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.chi.Use(r.mux.adaptMiddleware(m))
	}
}

func (r *chiRouter) Mount(pattern string, h http.Handler) {
	r.chi.Mount(pattern, h)
}

// adaptMiddleware turns mw into a chi middleware. Each layer builds its own
// Context over the shared *ResponseWriter and answers the errors returned
// below it, so an outer layer sees the final status.
func (m *Mux) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		inner := func(c Context) error {
			next.ServeHTTP(c.Response(), c.Request())
			return nil
		}
		h := mw(inner)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := newContext(w, r, m.logger)
			if err := h(c); err != nil {
				m.handleError(c, err)
			}
		})
	}
}
