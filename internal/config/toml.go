// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults shared by the config template and CLI flags.
const (
	DefaultLevel       = 1
	DefaultWeakTop     = 8
	DefaultWeakFactor  = 2.0
	DefaultWeakWindow  = 20
	DefaultStatsWindow = 10
	DefaultLogLevel    = "info"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Name       *string  `toml:"name"`
	Level      *int     `toml:"level"`
	Sentences  *string  `toml:"sentences"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// DefaultTemplate returns the commented config written by `typerush config`.
func DefaultTemplate() string {
	return fmt.Sprintf(`# typerush configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# name = "Ada"            # Pre-filled name on the home screen
# level = %d               # Starting level (1-20)
# sentences = ""          # Sentence file, one sentence per line
# focus-weak = false      # Prefer sentences with weak characters
# weak-top = %d            # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent results to compute weak chars

[log]
# level = %q          # debug, info, warn, error
# file = ""               # Log file used while the TUI runs
`,
		DefaultLevel,
		DefaultWeakTop,
		DefaultWeakFactor,
		DefaultWeakWindow,
		DefaultLogLevel,
	)
}
