// Package dryrun implements watchtest's dry-run mode.
//
// Dry-run is requested through the WATCHTEST_DRYRUN environment variable (read
// once, at the first call to IsRequested) or through SetRequested. In dry-run
// mode the launcher still checks its dependencies and lists tracked files, but
// prints the pipeline it would start instead of starting it.
package dryrun

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/muesli/reflow/wordwrap"
)

// RequestedEnv is the environment variable that requests dry-run mode.
const RequestedEnv = "WATCHTEST_DRYRUN"

// defaultWidth is used when the output is not a terminal.
const defaultWidth = 80

// SetRequested sets the dryrun requested state to the specified boolean value.
func SetRequested(value bool) {
	dryRunRequestedValue = value
}

// IsRequested checks if dry-run mode was requested, either explicitly or via an environment variable.
func IsRequested() bool {
	dryRunRequestedEnvOnce.Do(func() {
		if os.Getenv(RequestedEnv) != "" {
			dryRunRequestedEnvValue = true
		}
	})

	return dryRunRequestedEnvValue || dryRunRequestedValue
}

// IsDryRun reports whether commands should be printed rather than run.
func IsDryRun() bool {
	return IsRequested()
}

// Report writes the pipeline that would have been started, wrapped to the
// width of the output terminal, followed by the number of tracked files it
// would have been fed.
func Report(output io.Writer, pipeline string, fileCount int) error {
	wrapped := wordwrap.String("DRYRUN: "+pipeline, Width(output))
	if _, err := fmt.Fprintln(output, wrapped); err != nil {
		return fmt.Errorf("writing dry-run report: %w", err)
	}
	if _, err := fmt.Fprintf(output, "DRYRUN: %d tracked files\n", fileCount); err != nil {
		return fmt.Errorf("writing dry-run report: %w", err)
	}

	return nil
}

// Width returns the column width of output if it is a terminal, and a
// conventional 80 columns otherwise.
func Width(output io.Writer) int {
	f, ok := output.(term.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return defaultWidth
	}
	if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
		return w
	}

	return defaultWidth
}
