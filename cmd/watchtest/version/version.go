package version

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/watchtest/pkg/ui"
)

// Version is the CLI version. It can be overridden at build time via:
//
//	-ldflags "-X github.com/yaklabco/watchtest/cmd/watchtest/version.Version=v0.0.0"
//
// If left as "dev", the version is taken from Go build info when available.
var Version = "dev" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

// Commit is the git commit hash. It can be overridden at build time via:
//
//	-ldflags "-X github.com/yaklabco/watchtest/cmd/watchtest/version.Commit=<commit>"
var Commit = "" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

// BuildDate is the RFC3339 timestamp of the build. It can be overridden via:
//
//	-ldflags "-X github.com/yaklabco/watchtest/cmd/watchtest/version.BuildDate=<RFC3339>"
var BuildDate = "" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

func buildSetting(key string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// EffectiveVersion returns the best-effort version string for the binary:
// the ldflags value, then the module version recorded by `go install`, then
// the VCS revision, then "dev".
func EffectiveVersion(_ context.Context) string {
	v := strings.TrimSpace(Version)
	if v != "" && v != "dev" {
		return v
	}

	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
			return mv
		}
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if buildSetting("vcs.modified") == "true" {
			return rev + "-dirty"
		}
		return rev
	}

	return "dev"
}

// EffectiveCommit returns the commit from ldflags, falling back to build info.
func EffectiveCommit(_ context.Context) string {
	if c := strings.TrimSpace(Commit); c != "" {
		return c
	}
	return buildSetting("vcs.revision")
}

// EffectiveBuildTime returns the build time from ldflags or build info.
func EffectiveBuildTime() (time.Time, bool) {
	for _, raw := range []string{strings.TrimSpace(BuildDate), buildSetting("vcs.time")} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parts(ctx context.Context) (string, string, string) {
	var built string
	if t, ok := EffectiveBuildTime(); ok {
		built = t.In(time.Local).Format(time.RFC3339)
	}
	return EffectiveVersion(ctx), EffectiveCommit(ctx), built
}

// OverallVersionString renders version, commit and build time joined by "-".
func OverallVersionString(ctx context.Context) string {
	v, c, b := parts(ctx)
	var out []string
	for _, p := range []string{v, c, b} {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "-")
}

// OverallVersionStringColorized renders a version line with fang-consistent colors.
func OverallVersionStringColorized(ctx context.Context) string {
	cs := ui.GetFangScheme()

	versionStyle := lipgloss.NewStyle().Foreground(cs.QuotedString)
	commitStyle := lipgloss.NewStyle().Foreground(cs.Program)
	timeStyle := lipgloss.NewStyle().Foreground(cs.Flag)
	sepStyle := lipgloss.NewStyle().Foreground(cs.Base)

	v, c, b := parts(ctx)
	out := []string{versionStyle.Render(v)}
	if c != "" {
		out = append(out, commitStyle.Render(c))
	}
	if b != "" {
		out = append(out, timeStyle.Render(b))
	}

	return strings.Join(out, sepStyle.Render("-"))
}
