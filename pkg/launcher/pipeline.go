package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yaklabco/watchtest/internal/ish"
	"github.com/yaklabco/watchtest/internal/log"
	"github.com/yaklabco/watchtest/pkg/exitcode"
	"github.com/yaklabco/watchtest/pkg/filter"
	"github.com/yaklabco/watchtest/pkg/vcs"
)

// Pipeline is `git ls-files | <watcher> <args...>`.
type Pipeline struct {
	Git       vcs.Git
	WatchCmd  string
	WatchArgs []string
	Matcher   *filter.Matcher
	Env       map[string]string
	Dir       string
	Stdout    io.Writer
	Stderr    io.Writer
}

// String renders the pipeline as a shell would show it.
func (p *Pipeline) String() string {
	watcher := strings.Join(append([]string{p.WatchCmd}, p.WatchArgs...), " ")
	return p.Git.String() + " | " + watcher
}

// Tracked lists the tracked files the watch tool would be given.
func (p *Pipeline) Tracked(ctx context.Context) ([]string, error) {
	paths, err := p.Git.Tracked(ctx, p.Stderr)
	if err != nil {
		return nil, err
	}
	return p.Matcher.Filter(paths), nil
}

// Run starts the listing and the watch tool and blocks until the watch tool
// exits. A non-zero status is returned as *exitcode.Delegated. Listing
// failures are left to git's own stderr and do not change the result.
func (p *Pipeline) Run(ctx context.Context) error {
	pipeReader, pipeWriter, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("creating pipe: %w", err)
	}

	listing, err := p.Git.ListTracked(ctx, p.Stderr)
	if err != nil {
		_ = pipeReader.Close()
		_ = pipeWriter.Close()
		return err
	}

	options := []ish.Option{
		ish.WithStdin(pipeReader),
		ish.WithStdout(p.Stdout),
		ish.WithStderr(p.Stderr),
		ish.WithEnv(p.Env),
	}
	if p.Dir != "" {
		options = append(options, ish.WithWorkingDir(p.Dir))
	}
	watcher := ish.Command(ctx, p.WatchCmd, p.WatchArgs, options...)

	startErr := watcher.Start()
	// The child holds its own copy of the read end.
	_ = pipeReader.Close()

	copied := make(chan error, 1)
	go func() {
		copied <- feed(pipeWriter, listing, p.Matcher)
	}()

	if startErr != nil {
		_ = pipeWriter.Close()
		<-copied
		return fmt.Errorf("starting %s: %w", p.WatchCmd, startErr)
	}

	waitErr := watcher.Wait()
	if err := <-copied; err != nil {
		slog.Debug("tracked-file listing ended with error", slog.Any(log.Error, err))
	}

	if waitErr == nil {
		return nil
	}
	if watcher.ProcessState == nil {
		return fmt.Errorf("waiting for %s: %w", p.WatchCmd, waitErr)
	}
	code := exitcode.FromProcessState(watcher.ProcessState)
	slog.Debug("watch tool exited", slog.String(log.Cmd, p.WatchCmd), slog.Int(log.ExitCode, code))
	if code == 0 {
		return nil
	}
	return &exitcode.Delegated{Cmd: p.WatchCmd, Code: code}
}

// feed copies the listing into the watch tool's stdin and reaps git. When the
// watch tool stops reading early the rest of the listing is discarded so git
// can exit.
func feed(pipeWriter *os.File, listing *vcs.Listing, matcher *filter.Matcher) error {
	copyErr := filter.Copy(pipeWriter, listing, matcher)
	closeErr := pipeWriter.Close()
	if copyErr != nil {
		_, _ = io.Copy(io.Discard, listing)
	}
	return errors.Join(copyErr, closeErr, listing.Wait())
}
