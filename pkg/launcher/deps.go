package launcher

import (
	"fmt"
	"log/slog"

	"github.com/yaklabco/watchtest/internal/log"
)

// MissingDependencyError reports a collaborator that is not installed.
type MissingDependencyError struct {
	Program     string
	CommandName string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("'%s' is required for %s to run", e.Program, e.CommandName)
}

// CheckDependencies resolves each program in order and stops at the first
// one lookPath cannot find.
func CheckDependencies(commandName string, lookPath func(string) (string, error), programs ...string) error {
	for _, program := range programs {
		resolved, err := lookPath(program)
		if err != nil {
			slog.Debug("dependency missing", slog.String(log.Cmd, program), slog.Any(log.Error, err))
			return &MissingDependencyError{Program: program, CommandName: commandName}
		}
		slog.Debug("dependency found", slog.String(log.Cmd, program), slog.String(log.Path, resolved))
	}
	return nil
}
