package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/middlewares"
)

var responseTimePattern = regexp.MustCompile(`^\d+\.\d{3}ms$`)

func TestResponseTime(t *testing.T) {
	t.Parallel()

	t.Run("sets the header", func(t *testing.T) {
		t.Parallel()

		rec, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			time.Sleep(2 * time.Millisecond)
			return c.String(http.StatusOK, "ok")
		}, middlewares.ResponseTime())
		require.NoError(t, err)

		got := rec.Header().Get(middlewares.ResponseTimeHeader)
		require.Regexp(t, responseTimePattern, got)
		require.False(t, strings.HasPrefix(got, "0.000"))
	})

	t.Run("custom header", func(t *testing.T) {
		t.Parallel()

		rec, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			return c.NoContent(http.StatusNoContent)
		}, middlewares.ResponseTime(middlewares.WithResponseTimeHeader("X-Took")))
		require.NoError(t, err)

		require.Regexp(t, responseTimePattern, rec.Header().Get("X-Took"))
		require.Empty(t, rec.Header().Get(middlewares.ResponseTimeHeader))
	})

	t.Run("records route metrics", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		mux := internal.NewMux()
		mux.Use(middlewares.ResponseTime(middlewares.WithResponseTimeRegisterer(reg)))
		mux.Router().GET("/post/{id}", func(c internal.Context) error {
			return c.String(http.StatusOK, c.Param("id"))
		})

		for _, id := range []string{"a", "b", "c"} {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post/"+id, nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}

		count, err := testutil.GatherAndCount(reg, "http_request_duration_seconds")
		require.NoError(t, err)
		require.Equal(t, 1, count, "one series per route, not per path")
	})

	t.Run("registering twice reuses the histogram", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		require.NotPanics(t, func() {
			middlewares.ResponseTime(middlewares.WithResponseTimeRegisterer(reg))
			middlewares.ResponseTime(middlewares.WithResponseTimeRegisterer(reg))
		})
	})
}
