package ish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yaklabco/watchtest/internal/env"
	"github.com/yaklabco/watchtest/internal/log"
	"github.com/yaklabco/watchtest/pkg/exitcode"
)

// InterruptGrace is how long a cancelled child gets to exit after SIGINT
// before it is killed outright.
const InterruptGrace = 5 * time.Second

type cmdOptions struct {
	workingDir *string
	env        map[string]string
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

type Option func(*cmdOptions)

func WithWorkingDir(dir string) Option {
	return func(o *cmdOptions) {
		o.workingDir = &dir
	}
}

func WithEnv(theEnv map[string]string) Option {
	return func(o *cmdOptions) {
		o.env = theEnv
	}
}

func WithStdin(r io.Reader) Option {
	return func(o *cmdOptions) {
		o.stdin = r
	}
}

func WithStdout(w io.Writer) Option {
	return func(o *cmdOptions) {
		o.stdout = w
	}
}

func WithStderr(w io.Writer) Option {
	return func(o *cmdOptions) {
		o.stderr = w
	}
}

// Command builds an *exec.Cmd bound to ctx. Unlike a bare
// exec.CommandContext, cancelling ctx interrupts the child instead of killing
// it, so a watch tool can stop its own in-flight test run.
func Command(ctx context.Context, cmd string, args []string, options ...Option) *exec.Cmd {
	opts := cmdOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	theCmd := exec.CommandContext(ctx, cmd, args...)
	theCmd.Env = env.Environ(opts.env)
	if !lo.IsNil(opts.workingDir) {
		theCmd.Dir = *opts.workingDir
	}
	theCmd.Stdin = opts.stdin
	theCmd.Stdout = opts.stdout
	theCmd.Stderr = opts.stderr
	theCmd.Cancel = func() error {
		return theCmd.Process.Signal(os.Interrupt)
	}
	theCmd.WaitDelay = InterruptGrace

	quoted := make([]string, 0, len(args))
	for i := range args {
		quoted = append(quoted, fmt.Sprintf("%q", args[i]))
	}
	slog.Debug("exec", slog.String(log.Cmd, cmd), slog.String(log.Args, strings.Join(quoted, " ")))

	return theCmd
}

// Exec runs the command to completion. Ran reports if the command ran (rather
// than was not found or not executable). A command that ran and failed yields
// an error carrying its exit status.
func Exec(ctx context.Context, cmd string, args []string, options ...Option) (bool, error) {
	err := Command(ctx, cmd, args, options...).Run()
	if err == nil {
		return true, nil
	}
	if CmdRan(err) {
		code := exitcode.ExitStatus(err)
		return true, exitcode.Fatalf(code, `running "%s %s" failed with exit code %d`, cmd, strings.Join(args, " "), code)
	}
	return false, fmt.Errorf(`failed to run "%s %s": %w`, cmd, strings.Join(args, " "), err)
}

// Output runs the command and returns the text from stdout, trimmed of
// surrounding whitespace. The command's stderr is captured into the error.
func Output(ctx context.Context, cmd string, args []string, options ...Option) (string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	options = append(options, WithStdout(stdout), WithStderr(stderr))
	_, err := Exec(ctx, cmd, args, options...)
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CmdRan examines the error to determine if it was generated as a result of a
// command running via os/exec.Command.
func CmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	return errors.As(err, &ee)
}
