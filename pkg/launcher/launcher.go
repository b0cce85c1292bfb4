// Package launcher checks that the version-control client and the watch tool
// are installed, then wires them together so that the test command re-runs
// whenever a tracked file changes.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/samber/lo"
	"github.com/yaklabco/watchtest/config"
	"github.com/yaklabco/watchtest/internal/dryrun"
	"github.com/yaklabco/watchtest/internal/log"
	"github.com/yaklabco/watchtest/pkg/filter"
	"github.com/yaklabco/watchtest/pkg/ui"
	"github.com/yaklabco/watchtest/pkg/vcs"
)

// HelpArg is the only argument the launcher interprets itself, and only in
// second position.
const HelpArg = "--help"

// Params holds everything Run needs. Nothing is read from package globals.
type Params struct {
	// CommandName is the display name used in help and error text.
	CommandName string

	// Args are the invocation arguments, excluding the program name.
	Args []string

	// Config supplies the collaborators and their arguments. Nil means
	// config.DefaultConfig().
	Config *config.Config

	// Dir is the working directory for the collaborators. Empty means the
	// current directory.
	Dir string

	Stdout io.Writer
	Stderr io.Writer

	// LookPath resolves a program name to an executable. Nil means
	// exec.LookPath.
	LookPath func(file string) (string, error)
}

func (p *Params) applyDefaults() {
	if p.Config == nil {
		p.Config = config.DefaultConfig()
	}
	if p.Stdout == nil {
		p.Stdout = os.Stdout
	}
	if p.Stderr == nil {
		p.Stderr = os.Stderr
	}
	if p.LookPath == nil {
		p.LookPath = exec.LookPath
	}
}

// Run executes the launcher. It returns nil after printing help, a
// *MissingDependencyError when a collaborator is absent, and a
// *exitcode.Delegated carrying the watch tool's status when that is non-zero.
func Run(ctx context.Context, params Params) error {
	params.applyDefaults()
	cfg := params.Config

	if WantsHelp(params.Args) {
		return PrintUsage(params.Stdout, params.CommandName, cfg.TestCmd)
	}

	if err := CheckDependencies(params.CommandName, params.LookPath, cfg.VCSCmd, cfg.WatchCmd); err != nil {
		return err
	}

	matcher, err := filter.Compile(cfg.Exclude)
	if err != nil {
		return fmt.Errorf("compiling exclude patterns: %w", err)
	}

	pipeline := &Pipeline{
		Git:       vcs.Git{Cmd: cfg.VCSCmd, Dir: params.Dir},
		WatchCmd:  cfg.WatchCmd,
		WatchArgs: WatcherArgs(cfg, PassThrough(params.Args)),
		Matcher:   matcher,
		Env:       cfg.Env,
		Dir:       params.Dir,
		Stdout:    params.Stdout,
		Stderr:    params.Stderr,
	}

	slog.Debug("starting pipeline",
		slog.String(log.Name, params.CommandName),
		slog.String(log.Cmd, pipeline.String()),
	)

	if dryrun.IsDryRun() {
		tracked, err := pipeline.Tracked(ctx)
		if err != nil {
			return err
		}
		return dryrun.Report(params.Stdout, pipeline.String(), len(tracked))
	}

	if cfg.RestartOnIndexChange {
		return RunWithRestarts(ctx, pipeline, cfg.IndexDebounce)
	}

	return pipeline.Run(ctx)
}

// CommandName derives the display name from the invoking program's path:
// the directory and any executable extension are dropped, then prefix.
func CommandName(argv0, prefix string) string {
	name := filepath.Base(argv0)
	name = strings.TrimSuffix(name, ".exe")
	if prefix != "" && name != prefix {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}

// WantsHelp reports whether the second argument is exactly --help. The first
// argument is never inspected.
func WantsHelp(args []string) bool {
	return len(args) > 1 && args[1] == HelpArg
}

// PassThrough drops the first argument, which the host tool always supplies,
// and returns the rest unchanged.
func PassThrough(args []string) []string {
	return lo.Drop(args, 1)
}

// WatcherArgs assembles the watch tool's argument list: its own flags, the
// test command, then the pass-through arguments.
func WatcherArgs(cfg *config.Config, passThrough []string) []string {
	args := make([]string, 0, len(cfg.WatchArgs)+len(cfg.TestCmd)+len(passThrough))
	args = append(args, cfg.WatchArgs...)
	args = append(args, cfg.TestCmd...)
	args = append(args, passThrough...)
	return args
}

// PrintUsage writes the single usage line.
func PrintUsage(w io.Writer, commandName string, testCmd []string) error {
	programStyle, commandStyle := ui.GetUsageStyles()
	quoted := strings.Join(append(append([]string{}, testCmd...), "[args...]"), " ")

	_, err := lipgloss.Fprintln(w, fmt.Sprintf("Usage: %s <ignored> [args...]  re-runs %s whenever a tracked file changes",
		programStyle.Render(commandName), commandStyle.Render(`"`+quoted+`"`)))
	if err != nil {
		return fmt.Errorf("writing usage: %w", err)
	}
	return nil
}
