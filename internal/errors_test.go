package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/internal"
)

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	notFound := internal.ErrNotFound("post not found", internal.WithPublic())

	testCases := []struct {
		name string
		err  error
		want *internal.HTTPError
	}{
		{name: "direct", err: notFound, want: notFound},
		{name: "wrapped", err: fmt.Errorf("get post: %w", notFound), want: notFound},
		{name: "joined", err: errors.Join(errors.New("other"), notFound), want: notFound},
		{name: "plain error", err: errors.New("socket closed")},
		{name: "nil", err: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Same(t, tc.want, internal.AsHTTPError(tc.err))
			assert.Equal(t, tc.want != nil, internal.IsHTTPError(tc.err))
		})
	}
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("duplicate key")
	err := internal.ErrConflict("", internal.WithError(cause))

	assert.Equal(t, "duplicate key", err.Error(), "falls back to the cause")
	require.ErrorIs(t, err, cause)
	assert.False(t, err.Public)
	assert.Equal(t, http.StatusConflict, err.StatusCode())
	assert.Equal(t, "Conflict", err.StatusText())

	constructors := map[int]func(string, ...internal.HTTPErrorOption) *internal.HTTPError{
		http.StatusBadRequest:          internal.ErrBadRequest,
		http.StatusUnauthorized:        internal.ErrUnauthorized,
		http.StatusForbidden:           internal.ErrForbidden,
		http.StatusNotFound:            internal.ErrNotFound,
		http.StatusMethodNotAllowed:    internal.ErrMethodNotAllowed,
		http.StatusConflict:            internal.ErrConflict,
		http.StatusUnprocessableEntity: internal.ErrUnprocessable,
		http.StatusInternalServerError: internal.ErrInternal,
		http.StatusServiceUnavailable:  internal.ErrServiceUnavailable,
	}
	for code, fn := range constructors {
		e := fn("msg", internal.WithPublic())
		assert.Equal(t, code, e.Code)
		assert.Equal(t, "msg", e.Error())
		assert.True(t, e.Public)
	}
}
