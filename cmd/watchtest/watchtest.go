package watchtest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/yaklabco/watchtest/cmd/watchtest/version"
	"github.com/yaklabco/watchtest/config"
	"github.com/yaklabco/watchtest/internal/log"
	"github.com/yaklabco/watchtest/pkg/exitcode"
	"github.com/yaklabco/watchtest/pkg/launcher"
	"github.com/yaklabco/watchtest/pkg/ui"
)

const (
	shortDescription = "Re-run the test suite whenever a file tracked by git changes."
)

type rootCmdOptions struct {
	runFunc     func(ctx context.Context, params launcher.Params) error
	argv0       string
	loadOptions *config.LoadOptions
}

type Option func(*rootCmdOptions)

// This is intentionally designed to be unusable from outside this package,
// as it exists purely for testing purposes.
func withRunFunc(fn func(ctx context.Context, params launcher.Params) error) Option {
	return func(opts *rootCmdOptions) {
		opts.runFunc = fn
	}
}

func withArgv0(argv0 string) Option {
	return func(opts *rootCmdOptions) {
		opts.argv0 = argv0
	}
}

func withLoadOptions(loadOptions *config.LoadOptions) Option {
	return func(opts *rootCmdOptions) {
		opts.loadOptions = loadOptions
	}
}

func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{
		runFunc: launcher.Run,
		argv0:   os.Args[0],
	}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	rootCmd := &cobra.Command{
		Use:     "watchtest <ignored> [args...]",
		Short:   shortDescription,
		Version: version.OverallVersionStringColorized(ctx),
		// Every argument belongs to the test command. The one exception,
		// --help in second position, is handled by the launcher.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootCmdOpts.loadOptions)
			if err != nil {
				if !launcher.WantsHelp(args) {
					return err
				}
				cfg = config.DefaultConfig()
			}

			log.SetupPrettyLogger(cmd.ErrOrStderr(), cfg.Debug)
			slog.Debug("watchtest starting",
				slog.String(log.Version, version.OverallVersionString(ctx)),
				slog.String(log.Path, cfg.ConfigFile()),
			)

			return rootCmdOpts.runFunc(cmd.Context(), launcher.Params{
				CommandName: launcher.CommandName(rootCmdOpts.argv0, cfg.StripPrefix),
				Args:        args,
				Config:      cfg,
				Stdout:      cmd.OutOrStdout(),
				Stderr:      cmd.ErrOrStderr(),
			})
		},
	}

	return rootCmd
}

// ExecuteWithFang runs the root Cobra command with Fang-specific options.
// Interrupts and terminations cancel the command's context, which in turn
// interrupts the watch tool.
func ExecuteWithFang(ctx context.Context, rootCmd *cobra.Command) error {
	//nolint:wrapcheck // top-level error from cobra, wrapping not needed
	return fang.Execute(
		ctx, rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
		fang.WithErrorHandler(errorHandler),
	)
}

// errorHandler prints launcher errors as a single "error: ..." line. The
// watch tool has already spoken for itself when it fails, so its status is
// passed on silently.
func errorHandler(w io.Writer, _ fang.Styles, err error) {
	if exitcode.IsDelegated(err) {
		return
	}
	_, _ = lipgloss.Fprintln(w, ui.ErrorPrefix()+" "+err.Error())
}
