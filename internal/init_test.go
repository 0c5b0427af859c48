package internal_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/popapi/internal"
)

func TestInit_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opts []internal.Option
		want error
	}{
		{
			name: "missing name",
			opts: []internal.Option{internal.WithArgs()},
			want: internal.ErrMissingName,
		},
		{
			name: "version exits",
			opts: []internal.Option{internal.WithName("api"), internal.WithArgs("--version")},
			want: internal.ErrExit,
		},
		{
			name: "help exits",
			opts: []internal.Option{internal.WithName("api"), internal.WithArgs("-h")},
			want: internal.ErrExit,
		},
		{
			name: "invalid mode",
			opts: []internal.Option{internal.WithName("api"), internal.WithArgs("--mode", "loud")},
			want: internal.ErrInvalidMode,
		},
		{
			name: "invalid port",
			opts: []internal.Option{internal.WithName("api"), internal.WithArgs(), internal.WithServerPort(1 << 20)},
			want: internal.ErrInvalidConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]internal.Option{
				internal.WithConfig(internal.Config{Env: internal.EnvTest}),
				internal.WithLogDir(t.TempDir()),
				internal.WithOutput(&bytes.Buffer{}),
			}, tc.opts...)

			r, err := internal.Init(t.Context(), opts...)
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, r)
		})
	}
}

func TestInit_EmptiesTheLogDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.log")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := internal.Init(t.Context(),
		internal.WithName("api"),
		internal.WithArgs("--version"),
		internal.WithLogDir(dir),
		internal.WithConfig(internal.Config{Env: internal.EnvTest}),
		internal.WithOutput(&bytes.Buffer{}),
	)
	require.ErrorIs(t, err, internal.ErrExit)
	assert.NoFileExists(t, stale)
	assert.DirExists(t, dir)
}

// TestInit_Integration needs a reachable MongoDB, located through the same
// variables a linked container sets.
func TestInit_Integration(t *testing.T) {
	host := os.Getenv("MONGO_PORT_27017_TCP_ADDR")
	if host == "" {
		t.Skip("MONGO_PORT_27017_TCP_ADDR is not set")
	}

	cfg, err := internal.LoadConfig()
	require.NoError(t, err)
	cfg.Env = internal.EnvTest

	r, err := internal.Init(t.Context(),
		internal.WithName("popapi"),
		internal.WithArgs("-m", "quiet"),
		internal.WithLogDir(t.TempDir()),
		internal.WithConfig(cfg),
		internal.WithWorkers(1),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })

	assert.Equal(t, []string{"cli", "logger", "database", "cache", "http-server", "routes"}, r.Plugins())
	assert.Equal(t, "popapi-test", r.Database().Name())
	assert.NotNil(t, r.Mux())
	assert.Equal(t, internal.LoggerArgs{Quiet: true}, r.LoggerArgs())
}
