package config

import (
	"fmt"
	"strings"
)

// PermissionError is returned when the config file or its directory cannot
// be read or written.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string
	Details string
	Err     error
}

func (e *PermissionError) Error() string {
	lines := []string{fmt.Sprintf("cannot %s config %s: permission denied", e.Op, e.Path)}
	if e.Details != "" {
		lines = append(lines, e.Details)
	}
	if e.Fix != "" {
		lines = append(lines, "Fix: "+e.Fix)
	}
	return strings.Join(lines, "\n")
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ConfigNotFoundError is returned by LoadFrom for a missing file.
// LoadOrDefault treats it as "use defaults".
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n%s", e.Path, e.Hint)
}

// InvalidConfigError is returned when the file cannot be decoded or holds
// values that fail Validate.
type InvalidConfigError struct {
	Path string
	Hint string
	Err  error
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }
