package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/internal"
)

func TestContext_Request(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/post-1?sort=title&order=", nil)
	req.Header.Set("X-Api-Key", "k")

	w := requestViaParam(t, req, func(c internal.Context) {
		assert.Equal(t, "post-1", c.Param("id"))
		assert.Empty(t, c.Param("missing"))
		assert.Equal(t, "title", c.Query("sort"))
		assert.Equal(t, "-1", c.QueryDefault("order", "-1"))
		assert.Equal(t, "k", c.Header("X-Api-Key"))
		assert.Equal(t, c.Request().Context(), c.Context())

		c.SetHeader("X-Item-Type", "post")
		require.NoError(t, c.NoContent(http.StatusNoContent))
		assert.True(t, c.Written())
		assert.Equal(t, http.StatusNoContent, c.ResponseWriter().Status())
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "post", w.Header().Get("X-Item-Type"))
}

func TestContext_Responses(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		write       func(c internal.Context) error
		wantCode    int
		wantType    string
		wantBody    string
		compareJSON bool
	}{
		{
			name:        "json",
			write:       func(c internal.Context) error { return c.JSON(http.StatusOK, map[string]int{"pages": 3}) },
			wantCode:    http.StatusOK,
			wantType:    "application/json",
			wantBody:    `{"pages":3}`,
			compareJSON: true,
		},
		{
			name:     "string",
			write:    func(c internal.Context) error { return c.String(http.StatusAccepted, "queued") },
			wantCode: http.StatusAccepted,
			wantType: "text/plain",
			wantBody: "queued",
		},
		{
			name:     "no content",
			write:    func(c internal.Context) error { return c.NoContent(http.StatusNoContent) },
			wantCode: http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) {
				require.NoError(t, tc.write(c))
			})

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantType != "" {
				assert.Contains(t, w.Header().Get("Content-Type"), tc.wantType)
			}
			if tc.compareJSON {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			} else {
				assert.Equal(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

func TestContext_Values(t *testing.T) {
	t.Parallel()

	type key struct{}
	requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) {
		assert.Nil(t, c.Get(key{}))

		c.Set(key{}, "req-1")
		assert.Equal(t, "req-1", c.Get(key{}))
		assert.Equal(t, "req-1", c.Value(key{}))
		assert.Equal(t, "req-1", c.Request().Context().Value(key{}), "stored in the request context for log extractors")
	})
}

func TestContext_IsAContext(t *testing.T) {
	t.Parallel()

	t.Run("with a deadline", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		want, _ := ctx.Deadline()

		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx), func(c internal.Context) {
			got, ok := c.Deadline()
			assert.True(t, ok)
			assert.Equal(t, want, got)
			assert.NoError(t, c.Err())
		})
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx), func(c internal.Context) {
			select {
			case <-c.Done():
			default:
				t.Error("Done is not closed")
			}
			assert.ErrorIs(t, c.Err(), context.Canceled)
		})
	})
}
