package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/yaklabco/watchtest/internal/env"
)

// Config holds all watchtest configuration values.
type Config struct {
	// VCSCmd is the version-control client used to list tracked files.
	VCSCmd string `mapstructure:"vcs_cmd"`

	// WatchCmd is the file-watching tool fed the tracked-file list on stdin.
	WatchCmd string `mapstructure:"watch_cmd"`

	// WatchArgs are passed to WatchCmd ahead of the test command.
	WatchArgs []string `mapstructure:"watch_args"`

	// TestCmd is the test command (and its fixed arguments) run on each change.
	TestCmd []string `mapstructure:"test_cmd"`

	// StripPrefix is removed from the program's file name for display.
	StripPrefix string `mapstructure:"strip_prefix"`

	// Exclude lists glob patterns of tracked files the watch tool never sees.
	Exclude []string `mapstructure:"exclude"`

	// RestartOnIndexChange restarts the watch tool when files are added to
	// or removed from the repository.
	RestartOnIndexChange bool `mapstructure:"restart_on_index_change"`

	// IndexDebounce is the quiet period after an index rewrite.
	IndexDebounce time.Duration `mapstructure:"index_debounce"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`

	// Env holds extra environment variables for the watch tool and, through
	// it, the test command. Names are upper-cased.
	Env map[string]string `mapstructure:"env"`

	// EnvFile is a dotenv file whose variables are added to Env. Entries in
	// Env win. Relative paths are resolved against the project directory.
	EnvFile string `mapstructure:"env_file"`

	// configFile is the path to the config file that was loaded (if any).
	configFile string
}

// ConfigFile returns the path to the configuration file that was loaded,
// or an empty string if no file was loaded.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectDir is the directory to search for project-level config.
	// If empty, the current working directory is used.
	ProjectDir string

	// Stderr is where warnings are written.
	// If nil, os.Stderr is used.
	Stderr io.Writer

	// SkipProjectConfig skips loading project-level configuration.
	SkipProjectConfig bool

	// SkipUserConfig skips loading user-level configuration.
	SkipUserConfig bool

	// SkipEnv skips reading environment variables.
	SkipEnv bool
}

// Load reads configuration from all sources and returns a Config struct.
// Configuration is loaded in the following order (later sources override earlier):
//  1. Defaults
//  2. User config file (~/.config/watchtest/config.yaml)
//  3. Project config file (./watchtest.yaml)
//  4. Environment variables (WATCHTEST_*)
//
// If opts is nil, default options are used.
func Load(opts *LoadOptions) (*Config, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	viperInstance := viper.New()

	setDefaults(viperInstance)
	viperInstance.SetConfigType("yaml")

	var configFileUsed string

	projectDir := opts.ProjectDir
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	if !opts.SkipUserConfig {
		paths := ResolveXDGPaths()
		viperInstance.SetConfigName(ConfigFileName)
		viperInstance.AddConfigPath(paths.ConfigDir())

		if err := viperInstance.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, fmt.Errorf("failed to read user config file: %w", err)
			}
		} else {
			configFileUsed = viperInstance.ConfigFileUsed()
		}
	}

	// Load project config (./watchtest.yaml) - merges with/overrides user config
	if !opts.SkipProjectConfig {
		projectConfigPath := filepath.Join(projectDir, ProjectConfigFileName+".yaml")
		if _, err := os.Stat(projectConfigPath); err == nil {
			viperInstance.SetConfigFile(projectConfigPath)
			if err := viperInstance.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read project config file: %w", err)
			}
			configFileUsed = projectConfigPath
		}
	}

	var cfg Config
	if err := viperInstance.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !opts.SkipEnv {
		if err := applyEnvironmentOverrides(&cfg); err != nil {
			return nil, err
		}
	}

	cfg.configFile = configFileUsed

	// Viper folds map keys to lower case; environment names are conventionally upper case.
	cfg.Env = lo.MapKeys(cfg.Env, func(_ string, k string) string {
		return strings.ToUpper(k)
	})

	if err := cfg.loadEnvFile(projectDir); err != nil {
		return nil, err
	}

	result := cfg.Validate()
	if result.HasWarnings() {
		result.WriteWarnings(opts.Stderr)
	}
	if result.HasErrors() {
		return nil, errors.New(result.ErrorMessage())
	}

	return &cfg, nil
}

// Environment variables recognised by applyEnvironmentOverrides.
const (
	EnvVCS         = "WATCHTEST_VCS"
	EnvWatcher     = "WATCHTEST_WATCHER"
	EnvWatchArgs   = "WATCHTEST_WATCH_ARGS"
	EnvTestCmd     = "WATCHTEST_TEST_CMD"
	EnvStripPrefix = "WATCHTEST_STRIP_PREFIX"
	EnvExclude     = "WATCHTEST_EXCLUDE"
	EnvRestart     = "WATCHTEST_RESTART"
	EnvDebug       = "WATCHTEST_DEBUG"
	EnvEnvFile     = "WATCHTEST_ENV_FILE"
)

// applyEnvironmentOverrides applies environment variable overrides to the config.
// Environment variables take precedence over config file values.
func applyEnvironmentOverrides(cfg *Config) error {
	if v := os.Getenv(EnvVCS); v != "" {
		cfg.VCSCmd = v
	}
	if v := os.Getenv(EnvWatcher); v != "" {
		cfg.WatchCmd = v
	}
	if v, ok := os.LookupEnv(EnvWatchArgs); ok {
		cfg.WatchArgs = strings.Fields(v)
	}
	if v := os.Getenv(EnvTestCmd); v != "" {
		cfg.TestCmd = strings.Fields(v)
	}
	// An empty WATCHTEST_STRIP_PREFIX deliberately disables stripping.
	if v, ok := os.LookupEnv(EnvStripPrefix); ok {
		cfg.StripPrefix = v
	}
	if v := os.Getenv(EnvEnvFile); v != "" {
		cfg.EnvFile = v
	}
	if v := os.Getenv(EnvExclude); v != "" {
		cfg.Exclude = env.SplitList(v)
	}

	for name, target := range map[string]*bool{
		EnvRestart: &cfg.RestartOnIndexChange,
		EnvDebug:   &cfg.Debug,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := env.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = b
	}

	return nil
}

// loadEnvFile merges the dotenv file's variables under Env.
func (c *Config) loadEnvFile(projectDir string) error {
	if c.EnvFile == "" {
		return nil
	}

	path := c.EnvFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, path)
	}

	fromFile, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env_file: %w", err)
	}

	c.Env = lo.Assign(fromFile, c.Env)
	return nil
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		VCSCmd:               DefaultVCSCmd,
		WatchCmd:             DefaultWatchCmd,
		WatchArgs:            DefaultWatchArgs(),
		TestCmd:              DefaultTestCmd(),
		StripPrefix:          DefaultStripPrefix,
		Exclude:              []string{},
		RestartOnIndexChange: DefaultRestartOnIndexChange,
		IndexDebounce:        DefaultIndexDebounce,
		Debug:                DefaultDebug,
		Env:                  map[string]string{},
	}
}
