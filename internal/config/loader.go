package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration from the default path, falling back to
// defaults when the file does not exist.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadOrDefault(configPath)
}

// LoadOrDefault reads path, or returns NewConfig() if it does not exist.
// Environment overrides are applied in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		var notFound *ConfigNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		cfg = NewConfig()
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// LoadFrom reads and validates the config at path. Failures are returned as
// *ConfigNotFoundError, *PermissionError or *InvalidConfigError.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'strapd config init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
				Err:     err,
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := decode(path, data)
	if err != nil {
		return nil, &InvalidConfigError{
			Path: path,
			Err:  err,
			Hint: "Restore from .bak file if available",
		}
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path: path,
			Err:  err,
			Hint: "Run 'strapd config show' to see the expected values",
		}
	}

	return cfg, nil
}

// decode parses data over NewConfig(), so fields a section leaves out keep
// their defaults.
func decode(path string, data []byte) (*Config, error) {
	cfg := NewConfig()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("YAML parse error: %v", err)
		}
		return cfg, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("JSON parse error: %v", err)
	}
	return cfg, nil
}

// getReadPermissionFix suggests a command that restores read access.
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Grant read access to %s in its Security properties", path)
	default:
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails describes the file's current mode on unix.
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
