// Package filter drops excluded paths from the tracked-file stream before it
// reaches the watch tool.
package filter

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/lo"
)

// separator is the path separator git uses in ls-files output on every
// platform.
const separator = '/'

// maxLineLength bounds a single path line.
const maxLineLength = 1 << 20

type pattern struct {
	source string
	glob   glob.Glob
	// baseOnly patterns have no separator and are matched against the final
	// path element, the way .gitignore treats them.
	baseOnly bool
}

// Matcher decides which paths are excluded. The zero value and a nil
// *Matcher exclude nothing.
type Matcher struct {
	patterns []pattern
}

// Compile builds a Matcher from glob patterns. `*` does not cross `/`, `**`
// does. A pattern without any `/` matches the file name in any directory.
func Compile(patterns []string) (*Matcher, error) {
	matcher := &Matcher{}
	for _, p := range lo.Compact(patterns) {
		g, err := glob.Compile(p, separator)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		matcher.patterns = append(matcher.patterns, pattern{
			source:   p,
			glob:     g,
			baseOnly: !strings.ContainsRune(p, separator),
		})
	}

	return matcher, nil
}

// Empty reports whether the matcher excludes nothing.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Patterns returns the source patterns in the order given to Compile.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return lo.Map(m.patterns, func(p pattern, _ int) string { return p.source })
}

// Excluded reports whether filePath matches any pattern.
func (m *Matcher) Excluded(filePath string) bool {
	if m.Empty() {
		return false
	}
	base := path.Base(filePath)
	return lo.SomeBy(m.patterns, func(p pattern) bool {
		if p.baseOnly {
			return p.glob.Match(base)
		}
		return p.glob.Match(filePath)
	})
}

// Filter returns the paths that are not excluded, preserving order.
func (m *Matcher) Filter(paths []string) []string {
	if m.Empty() {
		return paths
	}
	return lo.Reject(paths, func(p string, _ int) bool {
		return m.Excluded(p)
	})
}

// Copy streams newline-delimited paths from src to dst, dropping excluded
// lines. With an empty matcher the bytes are copied unchanged.
func Copy(dst io.Writer, src io.Reader, m *Matcher) error {
	if m.Empty() {
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("copying tracked files: %w", err)
		}
		return nil
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineLength)
	out := bufio.NewWriter(dst)
	for scanner.Scan() {
		line := scanner.Text()
		if m.Excluded(line) {
			continue
		}
		if _, err := out.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("writing tracked files: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading tracked files: %w", err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("writing tracked files: %w", err)
	}

	return nil
}
