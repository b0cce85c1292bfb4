// Package vcs drives the version-control client that tells watchtest which
// files belong to the working tree.
package vcs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yaklabco/watchtest/internal/ish"
)

// DefaultCmd is the version-control client used when none is configured.
const DefaultCmd = "git"

// ErrNotGitRepo is returned when the directory is not inside a Git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// Git runs git subcommands in Dir (or the current directory when empty).
type Git struct {
	// Cmd is the git executable, resolved through PATH when not absolute.
	Cmd string

	// Dir is the working directory for every git invocation.
	Dir string
}

func (g Git) cmd() string {
	if g.Cmd == "" {
		return DefaultCmd
	}
	return g.Cmd
}

func (g Git) options(extra ...ish.Option) []ish.Option {
	if g.Dir == "" {
		return extra
	}
	return append([]ish.Option{ish.WithWorkingDir(g.Dir)}, extra...)
}

// ListArgs are the arguments that make git print every tracked file, one
// repository-relative path per line.
func (g Git) ListArgs() []string {
	return []string{"ls-files"}
}

// String renders the listing command as it would be typed in a shell.
func (g Git) String() string {
	return strings.Join(append([]string{g.cmd()}, g.ListArgs()...), " ")
}

// Listing is a running `git ls-files`. Read from it to consume paths as git
// produces them, then call Wait.
type Listing struct {
	io.Reader
	cmd *exec.Cmd
}

// Wait waits for git to exit. It must only be called once everything has
// been read from the listing.
func (l *Listing) Wait() error {
	if err := l.cmd.Wait(); err != nil {
		return fmt.Errorf("listing tracked files: %w", err)
	}
	return nil
}

// ListTracked starts `git ls-files`. Git's stderr goes to stderr untouched;
// its stdout is exposed as the returned Listing.
func (g Git) ListTracked(ctx context.Context, stderr io.Writer) (*Listing, error) {
	theCmd := ish.Command(ctx, g.cmd(), g.ListArgs(), g.options(ish.WithStderr(stderr))...)
	stdout, err := theCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating pipe for %s: %w", g, err)
	}
	if err := theCmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", g, err)
	}

	return &Listing{Reader: stdout, cmd: theCmd}, nil
}

// Tracked lists every tracked file eagerly.
func (g Git) Tracked(ctx context.Context, stderr io.Writer) ([]string, error) {
	listing, err := g.ListTracked(ctx, stderr)
	if err != nil {
		return nil, err
	}

	var paths []string
	scanner := bufio.NewScanner(listing)
	for scanner.Scan() {
		paths = append(paths, scanner.Text())
	}
	scanErr := scanner.Err()
	if _, err := io.Copy(io.Discard, listing); err != nil && scanErr == nil {
		scanErr = err
	}
	if err := listing.Wait(); err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, fmt.Errorf("reading tracked files: %w", scanErr)
	}

	return paths, nil
}

// GitDir returns the absolute path of the repository's git directory (the
// .git directory, or the per-worktree gitdir for linked worktrees).
func (g Git) GitDir(ctx context.Context) (string, error) {
	gitDir, err := g.output(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotGitRepo, err)
	}

	if !filepath.IsAbs(gitDir) {
		base := g.Dir
		if base == "" {
			base = "."
		}
		gitDir, err = filepath.Abs(filepath.Join(base, gitDir))
		if err != nil {
			return "", fmt.Errorf("resolving git dir: %w", err)
		}
	}

	// Resolve symlinks to get canonical paths (important on macOS where
	// /var is a symlink to /private/var)
	resolved, err := filepath.EvalSymlinks(gitDir)
	if err != nil {
		return "", fmt.Errorf("resolving git dir symlinks: %w", err)
	}

	return filepath.Clean(resolved), nil
}

func (g Git) output(ctx context.Context, args ...string) (string, error) {
	return ish.Output(ctx, g.cmd(), args, g.options()...)
}
