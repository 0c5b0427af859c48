package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsURLs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		url  string
		want error
	}{
		{url: "", want: ErrNoURL},
		{url: "http://localhost:6379", want: ErrInvalidURL},
		{url: "localhost:6379", want: ErrInvalidURL},
		{url: "mongodb://localhost:6379", want: ErrInvalidURL},
		{url: "redis://localhost:notaport", want: ErrInvalidURL},
		{url: "redis://localhost:6379/db", want: ErrInvalidURL},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()

			client, err := Open(t.Context(), tc.url)
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, client)
		})
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	WithPoolSize(0)(o)
	WithTimeouts(0, 5*time.Second, 0)(o)
	WithRetry(5, time.Millisecond)(o)

	assert.Equal(t, 10, o.poolSize, "non-positive pool size is ignored")
	assert.Equal(t, time.Second, o.readTimeout)
	assert.Equal(t, 5*time.Second, o.writeTimeout)
	assert.Equal(t, 3*time.Second, o.dialTimeout)
	assert.Equal(t, 5, o.retryAttempts)
	assert.Equal(t, time.Millisecond, o.retryInterval)
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) *redis.StatusCmd {
	p.calls++
	if p.calls <= p.failures {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	return redis.NewStatusResult("PONG", nil)
}

func TestPing(t *testing.T) {
	t.Parallel()

	t.Run("retries until the server answers", func(t *testing.T) {
		t.Parallel()

		p := &flakyPinger{failures: 2}
		require.NoError(t, ping(t.Context(), p, 3, time.Millisecond))
		assert.Equal(t, 3, p.calls)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		t.Parallel()

		p := &flakyPinger{failures: 5}
		err := ping(t.Context(), p, 2, time.Millisecond)
		require.ErrorIs(t, err, ErrUnreachable)
		assert.Equal(t, 2, p.calls)
	})

	t.Run("zero attempts still pings once", func(t *testing.T) {
		t.Parallel()

		p := &flakyPinger{}
		require.NoError(t, ping(t.Context(), p, 0, time.Hour))
		assert.Equal(t, 1, p.calls)
	})

	t.Run("cancelled context stops the backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		start := time.Now()
		err := ping(ctx, &flakyPinger{failures: 5}, 3, time.Hour)
		require.ErrorIs(t, err, ErrUnreachable)
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Healthcheck(nil)(t.Context()), ErrUnhealthy)
}

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	errClose := errors.New("close")
	c := &closer{err: errClose}
	require.ErrorIs(t, Shutdown(c)(t.Context()), errClose)
	assert.True(t, c.closed)
}
