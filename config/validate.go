package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/watchtest/pkg/filter"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("config warning: %s: %s", w.Field, w.Message)
}

// ValidationResults holds the results of configuration validation.
type ValidationResults struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are validation errors.
func (r ValidationResults) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (r ValidationResults) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ErrorMessage returns a combined error message for all validation errors.
func (r ValidationResults) ErrorMessage() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// WriteWarnings writes all warnings to the given writer.
func (r ValidationResults) WriteWarnings(w io.Writer) {
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintln(w, warn.String())
	}
}

// Validate checks the configuration for errors and warnings.
// It returns errors for values that would stop the launcher from starting
// its collaborators, and warnings for settings that have no effect.
func (c *Config) Validate() ValidationResults {
	var result ValidationResults

	for field, value := range map[string]string{
		"vcs_cmd":   c.VCSCmd,
		"watch_cmd": c.WatchCmd,
	} {
		if strings.TrimSpace(value) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: "must not be empty",
			})
		}
	}

	if len(c.TestCmd) == 0 || strings.TrimSpace(c.TestCmd[0]) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "test_cmd",
			Message: "must name a command",
		})
	}

	if _, err := filter.Compile(c.Exclude); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "exclude",
			Message: err.Error(),
		})
	}

	if c.IndexDebounce <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "index_debounce",
			Message: fmt.Sprintf("must be positive, got %s", c.IndexDebounce),
		})
	}

	if !c.RestartOnIndexChange && c.IndexDebounce > 0 && c.IndexDebounce != DefaultIndexDebounce {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "index_debounce",
			Message: "has no effect unless restart_on_index_change is enabled",
		})
	}

	return result
}
