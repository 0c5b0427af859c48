package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIPlugin(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		env  string
		args []string
		want LoggerArgs
	}{
		{name: "default mode is pretty", args: []string{}, want: LoggerArgs{Pretty: true}},
		{name: "short flag", args: []string{"-m", "ugly"}, want: LoggerArgs{}},
		{name: "long flag", args: []string{"--mode", "quiet"}, want: LoggerArgs{Quiet: true}},
		{name: "case insensitive", args: []string{"--mode=PRETTY"}, want: LoggerArgs{Pretty: true}},
		{name: "pretty under test", env: EnvTest, args: []string{}, want: LoggerArgs{Quiet: true}},
		{name: "ugly under test", env: EnvTest, args: []string{"-m", "ugly"}, want: LoggerArgs{Quiet: true}},
		{name: "positional arguments are ignored", args: []string{"serve"}, want: LoggerArgs{Pretty: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewRegistry(Config{Env: tc.env})
			_, err := Use(t.Context(), r, CLIPlugin, CLIConfig{
				Args:   tc.args,
				Name:   "api",
				Output: &bytes.Buffer{},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.LoggerArgs())
			assert.True(t, r.Installed(CLIPlugin))
		})
	}
}

func TestCLIPlugin_Exit(t *testing.T) {
	t.Parallel()

	t.Run("version", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		r := NewRegistry(Config{})
		_, err := Use(t.Context(), r, CLIPlugin, CLIConfig{
			Args:    []string{"--version"},
			Name:    "api",
			Version: "1.2.3",
			Output:  &out,
		})
		require.ErrorIs(t, err, ErrExit)
		assert.Equal(t, "api v1.2.3\n", out.String())
		assert.False(t, r.Installed(CLIPlugin))
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		r := NewRegistry(Config{})
		_, err := Use(t.Context(), r, CLIPlugin, CLIConfig{
			Args:   []string{"--help"},
			Name:   "api",
			Output: &out,
		})
		require.ErrorIs(t, err, ErrExit)
		assert.Contains(t, out.String(), "--mode")
		assert.Contains(t, out.String(), "api -m <pretty|quiet|ugly>")
	})
}

func TestCLIPlugin_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid mode", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(Config{})
		_, err := Use(t.Context(), r, CLIPlugin, CLIConfig{
			Args:   []string{"-m", "loud"},
			Name:   "api",
			Output: &bytes.Buffer{},
		})
		require.ErrorIs(t, err, ErrInvalidMode)
		assert.Contains(t, err.Error(), `"loud"`)
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(Config{})
		_, err := Use(t.Context(), r, CLIPlugin, CLIConfig{Args: []string{}})
		require.ErrorIs(t, err, ErrMissingName)
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(Config{})
		_, err := Use(t.Context(), r, CLIPlugin, CLIConfig{
			Args:   []string{"--nope"},
			Name:   "api",
			Output: &bytes.Buffer{},
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrExit)
	})
}

func TestModeArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		mode    string
		testing bool
		want    LoggerArgs
	}{
		{mode: ModePretty, want: LoggerArgs{Pretty: true}},
		{mode: ModePretty, testing: true, want: LoggerArgs{Quiet: true}},
		{mode: ModeUgly, want: LoggerArgs{}},
		{mode: ModeUgly, testing: true, want: LoggerArgs{Quiet: true}},
		{mode: ModeQuiet, want: LoggerArgs{Quiet: true}},
		{mode: ModeQuiet, testing: true, want: LoggerArgs{Quiet: true}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, modeArgs(tc.mode, tc.testing), "%s testing=%v", tc.mode, tc.testing)
	}
}
