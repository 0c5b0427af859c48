package middlewares_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/middlewares"
)

func TestRecover_PassesThrough(t *testing.T) {
	t.Parallel()

	rec, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, middlewares.Recover())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	errGone := errors.New("post was removed")
	_, err = serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(internal.Context) error {
		return errGone
	}, middlewares.Recover())
	require.ErrorIs(t, err, errGone)
	assert.False(t, middlewares.IsPanicError(err))
}

func TestRecover_PanicValues(t *testing.T) {
	t.Parallel()

	type custom struct{ ID int }
	testCases := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string", value: "boom", want: "panic: boom"},
		{name: "error", value: errors.New("nil pointer"), want: "panic: nil pointer"},
		{name: "int", value: 7, want: "panic: 7"},
		{name: "struct", value: custom{ID: 3}, want: "panic: {3}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(internal.Context) error {
				panic(tc.value)
			}, middlewares.Recover())

			pe, ok := middlewares.AsPanicError(err)
			require.True(t, ok)
			assert.Equal(t, tc.value, pe.Value)
			assert.Equal(t, tc.want, pe.Error())
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}
}

func TestRecover_Stack(t *testing.T) {
	t.Parallel()

	panics := func(internal.Context) error { panic("boom") }

	testCases := []struct {
		name    string
		opts    []middlewares.RecoverOption
		wantMax int
		wantNil bool
	}{
		{name: "default size", wantMax: middlewares.DefaultStackSize},
		{name: "limited", opts: []middlewares.RecoverOption{middlewares.WithRecoverStackSize(128)}, wantMax: 128},
		{name: "non-positive size uses the default", opts: []middlewares.RecoverOption{middlewares.WithRecoverStackSize(0)}, wantMax: middlewares.DefaultStackSize},
		{name: "disabled", opts: []middlewares.RecoverOption{middlewares.WithRecoverDisablePrintStack()}, wantNil: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), panics, middlewares.Recover(tc.opts...))
			pe, ok := middlewares.AsPanicError(err)
			require.True(t, ok)

			if tc.wantNil {
				assert.Nil(t, pe.Stack)
				return
			}
			assert.NotEmpty(t, pe.Stack)
			assert.LessOrEqual(t, len(pe.Stack), tc.wantMax)
			assert.Contains(t, string(pe.Stack), "goroutine")
		})
	}
}

func TestRecover_Logs(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	_, err := serveLogged(t, &logs, httptest.NewRequest(http.MethodDelete, "/post/1", nil), func(internal.Context) error {
		panic("boom")
	}, middlewares.Recover(middlewares.WithRecoverDisablePrintStack()))
	require.Error(t, err)

	var line map[string]any
	require.NoError(t, json.NewDecoder(&logs).Decode(&line), "the first line is the recover record")
	assert.Equal(t, "panic recovered", line["msg"])
	assert.Equal(t, "boom", line["panic"])
	assert.Equal(t, "DELETE", line["method"])
	assert.Equal(t, "/post/1", line["path"])
	assert.NotContains(t, line, "stack")
}

func TestRecover_AfterWrite(t *testing.T) {
	t.Parallel()

	rec, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
		_ = c.String(http.StatusAccepted, "partial")
		panic("late")
	}, middlewares.Recover())

	require.True(t, middlewares.IsPanicError(err))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRecover_ThroughErrorHandler(t *testing.T) {
	t.Parallel()

	mux := internal.NewMux(internal.WithErrorHandler(internal.NewErrorHandler(true)))
	mux.Use(middlewares.Recover())
	mux.Router().GET("/", func(internal.Context) error {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"500 Internal Server Error"`)
	assert.Contains(t, rec.Body.String(), "goroutine")
}
