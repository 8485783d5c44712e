package config

import (
	"fmt"
	"strings"

	"github.com/khanglvm/strapd/internal/logging"
	"github.com/khanglvm/strapd/internal/storage"
)

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.Storage == nil || c.Usage == nil || c.Logging == nil {
		return fmt.Errorf("missing storage, usage or logging section")
	}

	switch c.Storage.Backend {
	case storage.BackendSQLite, storage.BackendBolt, storage.BackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (want %s, %s or %s)",
			c.Storage.Backend, storage.BackendSQLite, storage.BackendBolt, storage.BackendMemory)
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key: must not be empty")
	}

	if c.Usage.TopLimit < 0 {
		return fmt.Errorf("usage.topLimit: must not be negative, got %d", c.Usage.TopLimit)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// StoragePath returns the configured database path with ~ expanded, or the
// default location when unset.
func (c *Config) StoragePath() (string, error) {
	if c.Storage == nil || c.Storage.Path == "" {
		return storage.DefaultPath()
	}
	return ExpandPath(c.Storage.Path)
}
