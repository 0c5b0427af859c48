package internal

// Handler declares routes on a router. Content controllers and plain
// handlers passed to WithHandlers both implement it:
//
//	type statusHandler struct{ version string }
//
//	func (h statusHandler) Routes(r popapi.Router) {
//	    r.GET("/status", func(c popapi.Context) error {
//	        return c.JSON(http.StatusOK, map[string]string{"version": h.version})
//	    })
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc serves one route. A returned error goes to the ErrorHandler
// unless the response has already been written.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
//
//	func APIKey(next popapi.HandlerFunc) popapi.HandlerFunc {
//	    return func(c popapi.Context) error {
//	        if c.Header("X-API-Key") == "" {
//	            return popapi.ErrUnauthorized("missing api key", popapi.WithPublic())
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler writes the response for an error returned by a handler.
type ErrorHandler func(Context, error) error
