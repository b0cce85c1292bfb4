package log

import (
	"log"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/watchtest/pkg/ui"
)

// SimpleConsoleLogger is an unstructured logger for the few status lines
// watchtest itself prints between runs of the watch tool.
//
//nolint:gochecknoglobals // This is unchanged in the course of the process lifecycle.
var SimpleConsoleLogger = log.New(os.Stderr, lipgloss.NewStyle().Foreground(ui.GetFangScheme().Flag).Render("[WATCHTEST] "), 0)
