// Package exitcode carries process exit statuses through error values so that
// main can exit with the status of whatever actually failed.
package exitcode

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// signalExitBase mirrors the shell convention of reporting a child killed by
// signal N as 128+N.
const signalExitBase = 128

// ExitStatuser is an interface for errors that carry an exit status code.
type ExitStatuser interface {
	ExitStatus() int
}

type fatalError struct {
	code int
	error
}

func (f fatalError) ExitStatus() int {
	return f.code
}

func (f fatalError) Unwrap() error {
	return f.error
}

// Fatal returns an error that will cause watchtest to print out the
// given args and exit with the given exit code.
func Fatal(code int, args ...any) error {
	return fatalError{
		code:  code,
		error: errors.New(fmt.Sprint(args...)),
	}
}

// Fatalf returns an error that will cause watchtest to print out the
// given message and exit with the given exit code.
func Fatalf(code int, format string, args ...any) error {
	return fatalError{
		code:  code,
		error: fmt.Errorf(format, args...),
	}
}

// Delegated reports a non-zero exit status from a child process that has
// already explained itself on the terminal. It is never printed again.
type Delegated struct {
	Cmd  string
	Code int
}

func (d *Delegated) Error() string {
	return fmt.Sprintf("%s exited with status %d", d.Cmd, d.Code)
}

func (d *Delegated) ExitStatus() int {
	return d.Code
}

// IsDelegated reports whether err wraps a *Delegated.
func IsDelegated(err error) bool {
	var d *Delegated
	return errors.As(err, &d)
}

type signaledStatus interface {
	Signaled() bool
	Signal() syscall.Signal
}

// ExitStatus queries the error for an exit status. If the error is nil, it
// returns 0. If the error is an *exec.ExitError for a child killed by a
// signal, it returns 128+signal. If the error does not carry a status at all,
// it returns 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit ExitStatuser
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return FromProcessState(ee.ProcessState)
	}
	return 1
}

// FromProcessState returns the exit status recorded in ps, using the same
// 128+signal convention as ExitStatus. A nil state yields 1.
func FromProcessState(ps *os.ProcessState) int {
	if ps == nil {
		return 1
	}
	if ws, ok := ps.Sys().(signaledStatus); ok && ws.Signaled() {
		return signalExitBase + int(ws.Signal())
	}
	if code := ps.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
