package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// StackTracer is implemented by errors that carry the stack they were
// raised with, such as recovered panics.
type StackTracer interface {
	StackTrace() []byte
}

type errorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewErrorHandler returns the central error handler.
//
// HTTPErrors are answered with their code; anything else is a 500. Messages
// of non-public errors are replaced with the status line, e.g.
// "500 Internal Server Error". In development the body also carries the
// stack of the error, or its chain of messages when it has none.
// Server errors are logged.
func NewErrorHandler(development bool) ErrorHandler {
	return func(c Context, err error) error {
		code := statusOf(err)
		message := ""
		if httpErr := AsHTTPError(err); httpErr != nil && httpErr.Public {
			message = httpErr.Message
		}
		if message == "" {
			message = fmt.Sprintf("%d %s", code, http.StatusText(code))
		}

		if code >= http.StatusInternalServerError {
			c.LogError("request failed",
				slog.Int("status", code),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Any("error", err),
			)
		}

		resp := errorResponse{Message: message}
		if development {
			resp.Stack = stackOf(err)
		}
		return c.JSON(code, resp)
	}
}

func stackOf(err error) string {
	var st StackTracer
	if errors.As(err, &st) {
		if stack := st.StackTrace(); len(stack) > 0 {
			return string(stack)
		}
	}

	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	return strings.Join(chain, "\n")
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler(Context) error {
	return ErrNotFound("Api not found")
}
