package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/middlewares"
	"github.com/dmitrymomot/popapi/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		opts       []middlewares.RequestIDOption
		headers    map[string]string
		wantID     string
		wantUUID   bool
		wantHeader string
	}{
		{
			name:       "generates a uuid",
			wantUUID:   true,
			wantHeader: "X-Request-ID",
		},
		{
			name:       "keeps the client id",
			headers:    map[string]string{"X-Request-ID": "client-1"},
			wantID:     "client-1",
			wantHeader: "X-Request-ID",
		},
		{
			name:       "falls back to the correlation id",
			headers:    map[string]string{"X-Correlation-ID": "corr-1"},
			wantID:     "corr-1",
			wantHeader: "X-Request-ID",
		},
		{
			name:       "request id wins over correlation id",
			headers:    map[string]string{"X-Request-ID": "req-1", "X-Correlation-ID": "corr-1"},
			wantID:     "req-1",
			wantHeader: "X-Request-ID",
		},
		{
			name:       "custom incoming header",
			opts:       []middlewares.RequestIDOption{middlewares.WithRequestIDHeaders("X-Trace")},
			headers:    map[string]string{"X-Trace": "t-9", "X-Request-ID": "ignored"},
			wantID:     "t-9",
			wantHeader: "X-Request-ID",
		},
		{
			name:       "no incoming headers always generates",
			opts:       []middlewares.RequestIDOption{middlewares.WithRequestIDHeaders()},
			headers:    map[string]string{"X-Request-ID": "ignored"},
			wantUUID:   true,
			wantHeader: "X-Request-ID",
		},
		{
			name:       "custom generator",
			opts:       []middlewares.RequestIDOption{middlewares.WithRequestIDGenerator(func() string { return "fixed" })},
			wantID:     "fixed",
			wantHeader: "X-Request-ID",
		},
		{
			name:       "custom response header",
			opts:       []middlewares.RequestIDOption{middlewares.WithRequestIDResponseHeader("X-Trace-ID")},
			headers:    map[string]string{"X-Request-ID": "req-2"},
			wantID:     "req-2",
			wantHeader: "X-Trace-ID",
		},
		{
			name:    "no echo",
			opts:    []middlewares.RequestIDOption{middlewares.WithRequestIDResponseHeader("")},
			headers: map[string]string{"X-Request-ID": "req-3"},
			wantID:  "req-3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			var seen string
			rec, err := serve(t, req, func(c internal.Context) error {
				seen = middlewares.GetRequestID(c)
				return c.NoContent(http.StatusNoContent)
			}, middlewares.RequestID(tc.opts...))
			require.NoError(t, err)

			if tc.wantUUID {
				_, perr := uuid.Parse(seen)
				require.NoError(t, perr, "id %q", seen)
				assert.NotEqual(t, "ignored", seen)
			} else {
				assert.Equal(t, tc.wantID, seen)
			}

			if tc.wantHeader == "" {
				assert.Empty(t, rec.Header().Get("X-Request-ID"))
				return
			}
			assert.Equal(t, seen, rec.Header().Get(tc.wantHeader))
		})
	}
}

func TestRequestID_Unique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 20 {
		rec, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, middlewares.RequestID())
		require.NoError(t, err)
		id := rec.Header().Get(middlewares.RequestIDHeader)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGetRequestID_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	_, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
		seen = middlewares.GetRequestID(c)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	t.Run("adds request_id to request logs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := slog.New(logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), middlewares.RequestIDExtractor()))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		_, err := serve(t, req, func(c internal.Context) error {
			l.InfoContext(c.Context(), "list pages")
			return nil
		}, middlewares.RequestID())
		require.NoError(t, err)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "req-42", line["request_id"])
	})

	t.Run("skips contexts without an id", func(t *testing.T) {
		t.Parallel()

		_, ok := middlewares.RequestIDExtractor()(context.Background())
		assert.False(t, ok)
	})
}
