package log

import (
	"io"
	"log/slog"

	cblog "github.com/charmbracelet/log"
)

// SetupPrettyLogger installs a charmbracelet/log handler as the default slog
// logger. The launcher is quiet by default; debug lowers the level so every
// exec and restart decision is visible.
func SetupPrettyLogger(writerForLogger io.Writer, debug bool) *cblog.Logger {
	level := cblog.WarnLevel
	if debug {
		level = cblog.DebugLevel
	}

	logHandler := cblog.NewWithOptions(
		writerForLogger,
		cblog.Options{
			Level:           level,
			Prefix:          "watchtest",
			ReportTimestamp: true,
			ReportCaller:    debug,
		},
	)
	slog.SetDefault(slog.New(logHandler))

	return logHandler
}
