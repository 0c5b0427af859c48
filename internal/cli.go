package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// Modes accepted by the --mode flag.
const (
	ModePretty = "pretty"
	ModeQuiet  = "quiet"
	ModeUgly   = "ugly"
)

var modePattern = regexp.MustCompile(`(?i)^(pretty|quiet|ugly)$`)

// CLIConfig configures the CLI plugin.
type CLIConfig struct {
	// Args excludes the program name. Nil means os.Args[1:].
	Args    []string
	Name    string
	Version string

	// Output receives help and version text. Defaults to os.Stdout.
	Output io.Writer
}

// CLIPlugin parses the command line and sets the registry's LoggerArgs.
// Help and version requests print and fail with ErrExit.
var CLIPlugin = NewPlugin("cli", installCLI)

func installCLI(_ context.Context, r *Registry, cfg CLIConfig) (*cobra.Command, error) {
	if cfg.Name == "" {
		return nil, ErrMissingName
	}
	args := cfg.Args
	if args == nil {
		args = os.Args[1:]
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var (
		mode string
		ran  bool
	)
	cmd := &cobra.Command{
		Use:     cfg.Name,
		Version: cfg.Version,
		Short:   fmt.Sprintf("Run the %s API.", cfg.Name),
		Example: fmt.Sprintf("  %[1]s -m <pretty|quiet|ugly>\n  %[1]s --mode <pretty|quiet|ugly>", cfg.Name),
		Args:    cobra.ArbitraryArgs,

		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			ran = true
			if !modePattern.MatchString(mode) {
				return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.Flags().StringVarP(&mode, "mode", "m", ModePretty, "Run the API in a particular mode.")

	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	if !ran {
		return nil, ErrExit
	}

	r.SetLoggerArgs(modeArgs(strings.ToLower(mode), r.Config().Testing()))
	return cmd, nil
}

// modeArgs maps a mode to console settings. Test runs keep the console
// quiet in every mode.
func modeArgs(mode string, testing bool) LoggerArgs {
	switch mode {
	case ModeQuiet:
		return LoggerArgs{Pretty: false, Quiet: true}
	case ModeUgly:
		return LoggerArgs{Pretty: false, Quiet: testing}
	default:
		return LoggerArgs{Pretty: !testing, Quiet: testing}
	}
}
