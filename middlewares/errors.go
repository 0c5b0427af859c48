package middlewares

import (
	"errors"
	"fmt"
)

// PanicError is returned by Recover in place of a panic. The error handler
// answers it with a 500.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StackTrace returns the stack captured when the panic was recovered.
// The development error handler puts it in the response body.
func (e *PanicError) StackTrace() []byte {
	return e.Stack
}

// AsPanicError finds the first *PanicError in err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if !errors.As(err, &pe) {
		return nil, false
	}
	return pe, true
}

// IsPanicError reports whether err's chain holds a *PanicError.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}
