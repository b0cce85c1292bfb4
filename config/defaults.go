package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	// DefaultVCSCmd is the version-control client that lists tracked files.
	DefaultVCSCmd = "git"

	// DefaultWatchCmd is the file-watching tool that runs the tests.
	DefaultWatchCmd = "entr"

	// DefaultStripPrefix is removed from the program name when it is shown in
	// messages, so `cargo-watchtest` reads as `watchtest`.
	DefaultStripPrefix = "cargo-"

	// DefaultRestartOnIndexChange controls whether the watch tool is restarted
	// when the set of tracked files changes.
	DefaultRestartOnIndexChange = false

	// DefaultDebug is the default debug setting.
	DefaultDebug = false

	// DefaultIndexDebounce is the quiet period after an index rewrite before
	// tracked files are listed again.
	DefaultIndexDebounce = 250 * time.Millisecond
)

// DefaultWatchArgs runs entr non-interactively and clears the screen before
// each run.
func DefaultWatchArgs() []string {
	return []string{"-n", "-c"}
}

// DefaultTestCmd is the test-suite entry point re-run on every change.
func DefaultTestCmd() []string {
	return []string{"cargo", "test"}
}

// setDefaults configures default values in the viper instance.
func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("vcs_cmd", DefaultVCSCmd)
	viperInstance.SetDefault("watch_cmd", DefaultWatchCmd)
	viperInstance.SetDefault("watch_args", DefaultWatchArgs())
	viperInstance.SetDefault("test_cmd", DefaultTestCmd())
	viperInstance.SetDefault("strip_prefix", DefaultStripPrefix)
	viperInstance.SetDefault("exclude", []string{})
	viperInstance.SetDefault("restart_on_index_change", DefaultRestartOnIndexChange)
	viperInstance.SetDefault("index_debounce", DefaultIndexDebounce)
	viperInstance.SetDefault("debug", DefaultDebug)
	viperInstance.SetDefault("env", map[string]string{})
	viperInstance.SetDefault("env_file", "")
}
