// Package config provides configuration management for the extension.
// Configuration is loaded from a YAML file in the data directory; a missing
// file yields the defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/defaultxr/multiplicative/internal/core"
)

// Config holds all extension configuration.
type Config struct {
	// SocketPath is the mpv IPC socket to connect to.
	SocketPath string `yaml:"socket_path"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// OSDDuration is how long transient OSD messages stay visible, in seconds.
	OSDDuration float64 `yaml:"osd_duration"`

	// Keybindings maps mpv key names to extension action names.
	Keybindings map[string]string `yaml:"keybindings"`

	Screenshot  ScreenshotConfig  `yaml:"screenshot"`
	Clipboard   ClipboardConfig   `yaml:"clipboard"`
	Screensaver ScreensaverConfig `yaml:"screensaver"`
	History     HistoryConfig     `yaml:"history"`

	// Hooks maps player event names to shell snippets run when the event
	// fires. Event fields are exported as environment variables.
	Hooks map[string]string `yaml:"hooks"`
}

// ScreenshotConfig controls screenshot naming.
type ScreenshotConfig struct {
	// Directory receives the screenshot files. Empty means the working
	// directory of the player.
	Directory string `yaml:"directory"`
	// Template names the file; see screenshot.Expand for the placeholders.
	Template string `yaml:"template"`
}

// ClipboardConfig controls clipboard access.
type ClipboardConfig struct {
	// Command is a fallback program reading the text from stdin, used when
	// no native clipboard is available (e.g. "wl-copy" or "xclip -i").
	Command string `yaml:"command"`
}

// ScreensaverConfig controls idle inhibition during playback.
type ScreensaverConfig struct {
	Enabled bool `yaml:"enabled"`
	// Command is run periodically while playback is active and unpaused.
	Command string `yaml:"command"`
	// IntervalSeconds is the period between command runs.
	IntervalSeconds int `yaml:"interval_seconds"`
}

// HistoryConfig controls playback history logging.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Limit bounds how many entries the history listing shows.
	Limit int `yaml:"limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		SocketPath:  core.SocketPath(),
		LogLevel:    "info",
		OSDDuration: 3,
		Keybindings: map[string]string{
			"`": "console-open",
		},
		Screenshot: ScreenshotConfig{
			Template: "%f-%p-%d.png",
		},
		Screensaver: ScreensaverConfig{
			Enabled:         true,
			Command:         "xdg-screensaver reset",
			IntervalSeconds: 30,
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   10,
		},
		Hooks: map[string]string{},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist, the
// defaults are returned with no error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
