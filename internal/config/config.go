/*
Package config handles loading and saving strapd configuration.

Configuration is stored in ~/.strapd.json. A path ending in .yaml or .yml is
read and written as YAML instead; the field names are the same.

Schema:

	{
	  "storage": {
	    "backend": "sqlite",
	    "path": "~/.strapd/usage.db",
	    "key": "usage.state"
	  },
	  "usage": {
	    "enabled": true,
	    "topLimit": 5
	  },
	  "logging": {
	    "level": "warn",
	    "development": false
	  }
	}
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvUsage disables usage tracking when set to a false value.
	EnvUsage = "STRAPD_USAGE"

	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "STRAPD_LOG_LEVEL"
)

// Config represents the root configuration structure.
type Config struct {
	Storage *StorageConfig `json:"storage" yaml:"storage"`
	Usage   *UsageConfig   `json:"usage" yaml:"usage"`
	Logging *LoggingConfig `json:"logging" yaml:"logging"`
}

// StorageConfig selects where usage state is persisted.
type StorageConfig struct {
	// Backend is one of "sqlite", "bolt" or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// Path is the database file. Empty means ~/.strapd/usage.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Key is the storage key holding the serialized usage state.
	Key string `json:"key" yaml:"key"`
}

// UsageConfig controls usage tracking and ranking.
type UsageConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// TopLimit is how many tools `strapd top` shows by default.
	TopLimit int `json:"topLimit" yaml:"topLimit"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty"`
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Storage: &StorageConfig{
			Backend: "sqlite",
			Key:     "usage.state",
		},
		Usage: &UsageConfig{
			Enabled:  true,
			TopLimit: 5,
		},
		Logging: &LoggingConfig{
			Level: "warn",
		},
	}
}

// fillDefaults replaces missing sections with their defaults.
func (c *Config) fillDefaults() {
	defaults := NewConfig()
	if c.Storage == nil {
		c.Storage = defaults.Storage
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Key == "" {
		c.Storage.Key = defaults.Storage.Key
	}
	if c.Usage == nil {
		c.Usage = defaults.Usage
	}
	if c.Logging == nil {
		c.Logging = defaults.Logging
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// ApplyEnv applies environment overrides on top of the file values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	switch strings.ToLower(strings.TrimSpace(getenv(EnvUsage))) {
	case "0", "false", "off", "no":
		c.Usage.Enabled = false
	case "1", "true", "on", "yes":
		c.Usage.Enabled = true
	}
	if level := strings.TrimSpace(getenv(EnvLogLevel)); level != "" {
		c.Logging.Level = level
	}
}

// GetDefaultConfigPath returns the path to ~/.strapd.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".strapd.json"), nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// isYAML reports whether path should be read and written as YAML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
