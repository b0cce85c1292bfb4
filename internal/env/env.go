package env

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const keyValueParts = 2 // Number of parts in a key=value pair.

func ToMap(assignments []string) map[string]string {
	return lo.FromPairs(lo.FilterMap(assignments, func(item string, _ int) (lo.Entry[string, string], bool) {
		parts := strings.SplitN(item, "=", keyValueParts)
		if len(parts) != keyValueParts {
			return lo.Entry[string, string]{}, false
		}

		return lo.Entry[string, string]{Key: parts[0], Value: parts[1]}, true
	}))
}

// ToAssignments renders envMap as sorted KEY=value pairs.
func ToAssignments(envMap map[string]string) []string {
	assignments := lo.MapToSlice(envMap, func(k, v string) string {
		return k + "=" + v
	})
	sort.Strings(assignments)

	return assignments
}

// Environ returns the current process environment with extra layered on top.
// Later entries win in os/exec, so the overrides are simply appended.
func Environ(extra map[string]string) []string {
	return append(os.Environ(), ToAssignments(extra)...)
}

// ErrInvalidBool is returned when a string cannot be parsed as a boolean.
var ErrInvalidBool = errors.New("invalid boolean value")

// ParseBool interprets a string as a boolean.
// It trims leading and trailing whitespace, then lowercases the value
// before matching.
//
// Accepted values (case-insensitive, after trimming):
//   - "true", "yes", "1"  -> true
//   - "false", "no", "0"  -> false
//   - "" (empty)          -> false, nil error
//   - any other non-empty -> false, ErrInvalidBool
func ParseBool(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	switch strings.ToLower(value) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBool, value)
	}
}

// SplitList splits a comma-separated environment value, trimming blanks and
// dropping empty items.
func SplitList(value string) []string {
	return lo.Compact(lo.Map(strings.Split(value, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}
