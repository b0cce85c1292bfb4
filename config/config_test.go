package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func isolateUserConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{
		EnvVCS, EnvWatcher, EnvWatchArgs, EnvTestCmd,
		EnvStripPrefix, EnvExclude, EnvRestart, EnvDebug, EnvEnvFile,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Load with all sources disabled to get pure defaults
	cfg, err := Load(&LoadOptions{
		SkipUserConfig:    true,
		SkipProjectConfig: true,
		SkipEnv:           true,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.VCSCmd != DefaultVCSCmd {
		t.Errorf("VCSCmd = %q, want %q", cfg.VCSCmd, DefaultVCSCmd)
	}
	if cfg.WatchCmd != DefaultWatchCmd {
		t.Errorf("WatchCmd = %q, want %q", cfg.WatchCmd, DefaultWatchCmd)
	}
	if !reflect.DeepEqual(cfg.WatchArgs, DefaultWatchArgs()) {
		t.Errorf("WatchArgs = %v, want %v", cfg.WatchArgs, DefaultWatchArgs())
	}
	if !reflect.DeepEqual(cfg.TestCmd, DefaultTestCmd()) {
		t.Errorf("TestCmd = %v, want %v", cfg.TestCmd, DefaultTestCmd())
	}
	if cfg.StripPrefix != DefaultStripPrefix {
		t.Errorf("StripPrefix = %q, want %q", cfg.StripPrefix, DefaultStripPrefix)
	}
	if cfg.IndexDebounce != DefaultIndexDebounce {
		t.Errorf("IndexDebounce = %v, want %v", cfg.IndexDebounce, DefaultIndexDebounce)
	}
	if cfg.RestartOnIndexChange {
		t.Error("RestartOnIndexChange should default to false")
	}
	if cfg.Debug != DefaultDebug {
		t.Errorf("Debug = %v, want %v", cfg.Debug, DefaultDebug)
	}
	if cfg.ConfigFile() != "" {
		t.Errorf("ConfigFile() = %q, want empty", cfg.ConfigFile())
	}
}

func TestDefaultConfigMatchesLoad(t *testing.T) {
	cfg, err := Load(&LoadOptions{
		SkipUserConfig:    true,
		SkipProjectConfig: true,
		SkipEnv:           true,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	if cfg.VCSCmd != want.VCSCmd || cfg.WatchCmd != want.WatchCmd || cfg.StripPrefix != want.StripPrefix {
		t.Errorf("Load() = %+v, DefaultConfig() = %+v", cfg, want)
	}
	if !reflect.DeepEqual(cfg.TestCmd, want.TestCmd) {
		t.Errorf("TestCmd = %v, want %v", cfg.TestCmd, want.TestCmd)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	isolateUserConfig(t)

	projectDir := t.TempDir()
	content := `
watch_cmd: /opt/bin/entr
watch_args: ["-n", "-c", "-r"]
test_cmd: ["go", "test", "./..."]
exclude:
  - "docs/**"
  - "*.md"
env:
  rust_backtrace: "1"
`
	configPath := filepath.Join(projectDir, ProjectConfigFileName+".yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}

	cfg, err := Load(&LoadOptions{ProjectDir: projectDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WatchCmd != "/opt/bin/entr" {
		t.Errorf("WatchCmd = %q, want %q", cfg.WatchCmd, "/opt/bin/entr")
	}
	if !reflect.DeepEqual(cfg.WatchArgs, []string{"-n", "-c", "-r"}) {
		t.Errorf("WatchArgs = %v", cfg.WatchArgs)
	}
	if !reflect.DeepEqual(cfg.TestCmd, []string{"go", "test", "./..."}) {
		t.Errorf("TestCmd = %v", cfg.TestCmd)
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{"docs/**", "*.md"}) {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Env["RUST_BACKTRACE"] != "1" {
		t.Errorf("Env = %v, want RUST_BACKTRACE=1", cfg.Env)
	}
	if cfg.VCSCmd != DefaultVCSCmd {
		t.Errorf("VCSCmd = %q, want default %q", cfg.VCSCmd, DefaultVCSCmd)
	}
	if cfg.ConfigFile() != configPath {
		t.Errorf("ConfigFile() = %q, want %q", cfg.ConfigFile(), configPath)
	}
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	isolateUserConfig(t)

	userDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), AppName)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	userConfig := "watch_cmd: user-entr\nstrip_prefix: \"\"\n"
	if err := os.WriteFile(filepath.Join(userDir, ConfigFileName+".yaml"), []byte(userConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	projectDir := t.TempDir()
	projectConfig := "watch_cmd: project-entr\n"
	if err := os.WriteFile(filepath.Join(projectDir, ProjectConfigFileName+".yaml"), []byte(projectConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(&LoadOptions{ProjectDir: projectDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WatchCmd != "project-entr" {
		t.Errorf("WatchCmd = %q, want %q", cfg.WatchCmd, "project-entr")
	}
	if cfg.StripPrefix != "" {
		t.Errorf("StripPrefix = %q, want empty from user config", cfg.StripPrefix)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolateUserConfig(t)

	t.Setenv(EnvVCS, "/usr/local/bin/git")
	t.Setenv(EnvWatcher, "my-entr")
	t.Setenv(EnvWatchArgs, "-n -d")
	t.Setenv(EnvTestCmd, "make check")
	t.Setenv(EnvStripPrefix, "")
	t.Setenv(EnvExclude, "vendor/**, *.lock")
	t.Setenv(EnvRestart, "yes")
	t.Setenv(EnvDebug, "1")

	cfg, err := Load(&LoadOptions{SkipProjectConfig: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.VCSCmd != "/usr/local/bin/git" {
		t.Errorf("VCSCmd = %q", cfg.VCSCmd)
	}
	if cfg.WatchCmd != "my-entr" {
		t.Errorf("WatchCmd = %q", cfg.WatchCmd)
	}
	if !reflect.DeepEqual(cfg.WatchArgs, []string{"-n", "-d"}) {
		t.Errorf("WatchArgs = %v", cfg.WatchArgs)
	}
	if !reflect.DeepEqual(cfg.TestCmd, []string{"make", "check"}) {
		t.Errorf("TestCmd = %v", cfg.TestCmd)
	}
	if cfg.StripPrefix != "" {
		t.Errorf("StripPrefix = %q, want empty", cfg.StripPrefix)
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{"vendor/**", "*.lock"}) {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if !cfg.RestartOnIndexChange {
		t.Error("RestartOnIndexChange should be true")
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	isolateUserConfig(t)

	projectDir := t.TempDir()
	dotenv := "RUST_LOG=debug\nDATABASE_URL=postgres://localhost/test\n"
	if err := os.WriteFile(filepath.Join(projectDir, ".env.test"), []byte(dotenv), 0o600); err != nil {
		t.Fatal(err)
	}
	content := "env_file: .env.test\nenv:\n  rust_log: trace\n"
	if err := os.WriteFile(filepath.Join(projectDir, ProjectConfigFileName+".yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(&LoadOptions{ProjectDir: projectDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]string{
		"RUST_LOG":     "trace",
		"DATABASE_URL": "postgres://localhost/test",
	}
	if !reflect.DeepEqual(cfg.Env, want) {
		t.Errorf("Env = %v, want %v", cfg.Env, want)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv(EnvEnvFile, "does-not-exist.env")

	_, err := Load(&LoadOptions{ProjectDir: t.TempDir(), SkipProjectConfig: true})
	if err == nil {
		t.Fatal("Load() should fail when env_file is missing")
	}
	if !strings.Contains(err.Error(), "env_file") {
		t.Errorf("error %q should mention env_file", err)
	}
}

func TestLoad_InvalidBoolEnvironment(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv(EnvDebug, "sometimes")

	_, err := Load(&LoadOptions{SkipProjectConfig: true})
	if err == nil {
		t.Fatal("Load() should fail for an unparseable boolean")
	}
	if !strings.Contains(err.Error(), EnvDebug) {
		t.Errorf("error %q should name %s", err, EnvDebug)
	}
}

func TestLoad_InvalidProjectConfig(t *testing.T) {
	isolateUserConfig(t)

	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, ProjectConfigFileName+".yaml"), []byte("test_cmd: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(&LoadOptions{ProjectDir: projectDir})
	if err == nil {
		t.Fatal("Load() should fail for an empty test_cmd")
	}
	if !strings.Contains(err.Error(), "test_cmd") {
		t.Errorf("error %q should name test_cmd", err)
	}
}

func TestLoad_WarningsGoToStderr(t *testing.T) {
	isolateUserConfig(t)

	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, ProjectConfigFileName+".yaml"), []byte("index_debounce: 2s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	cfg, err := Load(&LoadOptions{ProjectDir: projectDir, Stderr: &stderr})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IndexDebounce != 2*time.Second {
		t.Errorf("IndexDebounce = %v, want 2s", cfg.IndexDebounce)
	}
	if !strings.Contains(stderr.String(), "index_debounce") {
		t.Errorf("stderr = %q, want a warning about index_debounce", stderr.String())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
		wantWarn  bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:      "empty vcs",
			mutate:    func(c *Config) { c.VCSCmd = " " },
			wantError: "vcs_cmd",
		},
		{
			name:      "empty watcher",
			mutate:    func(c *Config) { c.WatchCmd = "" },
			wantError: "watch_cmd",
		},
		{
			name:      "empty test command",
			mutate:    func(c *Config) { c.TestCmd = nil },
			wantError: "test_cmd",
		},
		{
			name:      "bad exclude glob",
			mutate:    func(c *Config) { c.Exclude = []string{"[unterminated"} },
			wantError: "exclude",
		},
		{
			name: "zero debounce",
			mutate: func(c *Config) {
				c.RestartOnIndexChange = true
				c.IndexDebounce = 0
			},
			wantError: "index_debounce",
		},
		{
			name:     "debounce without restart",
			mutate:   func(c *Config) { c.IndexDebounce = time.Second },
			wantWarn: true,
		},
		{
			name: "debounce with restart",
			mutate: func(c *Config) {
				c.RestartOnIndexChange = true
				c.IndexDebounce = time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			result := cfg.Validate()

			if tt.wantError == "" && result.HasErrors() {
				t.Errorf("unexpected errors: %s", result.ErrorMessage())
			}
			if tt.wantError != "" && !strings.Contains(result.ErrorMessage(), tt.wantError) {
				t.Errorf("ErrorMessage() = %q, want it to mention %q", result.ErrorMessage(), tt.wantError)
			}
			if result.HasWarnings() != tt.wantWarn {
				t.Errorf("HasWarnings() = %v, want %v", result.HasWarnings(), tt.wantWarn)
			}
		})
	}
}
