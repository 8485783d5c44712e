/*
Package storage implements a persistent string key/value store.

The usage tracker persists its serialized state through this interface. Three
backends are provided: SQLite (modernc.org/sqlite, pure Go, the default),
bbolt, and an in-memory map for tests and ephemeral sessions.

Stores degrade gracefully: if the database cannot be opened, the store is
disabled and every operation becomes a no-op that reports no error, so a broken
history file never stops a tool from running.
*/
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Storage defines a minimal persistent key/value store.
type Storage interface {
	// Init opens the underlying database and runs migrations.
	Init() error

	// Get returns the value stored under key. ok is false if the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases the database.
	Close() error
}

// DefaultPath returns ~/.strapd/usage.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".strapd", "usage.db"), nil
}

// Open creates and initializes the store for backend at path.
// An empty path selects DefaultPath. A nil logger discards log output.
//
// If Init fails the store is still returned alongside the error; it is
// disabled and safe to use.
func Open(backend, path string, logger *zap.Logger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path == "" && backend != BackendMemory {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var s Storage
	switch backend {
	case BackendSQLite, "":
		s = NewSQLiteStorage(path, logger)
	case BackendBolt:
		s = NewBoltStorage(path, logger)
	case BackendMemory:
		s = NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", backend)
	}

	if err := s.Init(); err != nil {
		return s, err
	}
	return s, nil
}
