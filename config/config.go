// Package config loads quickdiff's process-wide settings: the active
// theme, diff context line count, the metrics opt-in flag, the editor
// override, and the --pr mode gh CLI timeout/fetch limit. Load layers
// defaults < file < environment, the way viper's own precedence works; it
// binds no command-line flags (cmd/quickdiff applies -t itself). quickdiff
// never writes a config file itself, only reads one if present.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings spec.md §6/§9 names as process-wide, read-once
// state: a theme name, the diff context line count, the metrics opt-in
// flag, an editor override, and the --pr mode gh CLI timeout/fetch limit.
type Config struct {
	Theme        string        `mapstructure:"theme"`
	ContextLines int           `mapstructure:"context_lines"`
	Metrics      bool          `mapstructure:"metrics"`
	Editor       string        `mapstructure:"editor"`
	PRFetchLimit int           `mapstructure:"pr_fetch_limit"`
	GhTimeout    time.Duration `mapstructure:"gh_timeout"`
}

// Defaults returns the built-in settings used when no config file exists
// and no override is supplied.
func Defaults() Config {
	return Config{
		Theme:        "dark",
		ContextLines: 3,
		Metrics:      false,
		Editor:       "",
		PRFetchLimit: 300,
		GhTimeout:    30 * time.Second,
	}
}

// DefaultConfigDir returns the platform-appropriate directory quickdiff
// looks for config.yaml in, honoring XDG_CONFIG_HOME on Linux.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "quickdiff")
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "quickdiff")
		}
		return filepath.Join(home, ".config", "quickdiff")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "quickdiff")
		}
		return filepath.Join(home, ".config", "quickdiff")
	}
}

// Load reads config.yaml from dir (DefaultConfigDir when empty), falling
// back silently to Defaults() when no file is present. A malformed file
// is a hard error: quickdiff never starts against config it can't parse.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	defaults := Defaults()
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("context_lines", defaults.ContextLines)
	v.SetDefault("metrics", defaults.Metrics)
	v.SetDefault("editor", defaults.Editor)
	v.SetDefault("pr_fetch_limit", defaults.PRFetchLimit)
	v.SetDefault("gh_timeout", defaults.GhTimeout)

	v.SetEnvPrefix("quickdiff")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
