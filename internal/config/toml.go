// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Daemon  DaemonConfig  `toml:"daemon"`
	Logging LoggingConfig `toml:"logging"`
	Browser BrowserConfig `toml:"browser"`
}

// DaemonConfig maps collector settings.
type DaemonConfig struct {
	DB           *string `toml:"db"`
	IdleTimeout  *string `toml:"idle-timeout"`
	ContextPoll  *string `toml:"context-poll"`
	PollInterval *string `toml:"poll-interval"`
}

// LoggingConfig maps log output settings.
type LoggingConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// BrowserConfig maps browser context settings.
type BrowserConfig struct {
	ContextDir *string `toml:"context-dir"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ParseDuration parses a positive duration such as "5s" or "250ms".
func ParseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

// Template is written by `fingerpain config` when no file exists yet.
const Template = `# fingerpain configuration

[daemon]
# db = "~/.local/share/fingerpain/fingerpain.db"
# idle-timeout = "5s"
# context-poll = "2s"
# poll-interval = "100ms"

[logging]
# level = "info"   # debug, info, warn, error
# format = "text"  # text, json

[browser]
# context-dir = "~/.local/share/fingerpain/browser"
`
