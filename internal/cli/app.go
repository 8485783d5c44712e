package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/config"
	"github.com/khanglvm/strapd/internal/learning"
	"github.com/khanglvm/strapd/internal/logging"
	"github.com/khanglvm/strapd/internal/storage"
	"github.com/khanglvm/strapd/internal/toolkit"
)

// App holds state shared by commands during one invocation.
type App struct {
	// ConfigPath and LogLevel are bound to the global flags.
	ConfigPath string
	LogLevel   string

	cfg     *config.Config
	logger  *zap.Logger
	catalog *toolkit.Catalog

	store   storage.Storage
	tracker *learning.Tracker
}

// init loads configuration and builds the logger.
func (a *App) init() error {
	if a.ConfigPath == "" {
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			return err
		}
		a.ConfigPath = path
	}

	cfg, err := config.LoadOrDefault(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.LogLevel != "" {
		cfg.Logging.Level = a.LogLevel
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.catalog = toolkit.Default()
	return nil
}

// Tracker opens usage storage and returns the tracker, creating both on
// first use. Storage that cannot be opened is logged and tracking carries
// on in memory.
func (a *App) Tracker() (*learning.Tracker, error) {
	if a.tracker != nil {
		return a.tracker, nil
	}
	if a.cfg == nil {
		return nil, fmt.Errorf("cli: app not initialized")
	}

	path, err := a.cfg.StoragePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(a.cfg.Storage.Backend, path, a.logger)
	if err != nil {
		if store == nil {
			return nil, err
		}
		a.logger.Warn("usage storage unavailable, tracking in memory only",
			zap.String("backend", a.cfg.Storage.Backend),
			zap.String("path", path),
			zap.Error(err))
	}

	tracker := learning.NewTracker(store,
		learning.WithLogger(a.logger),
		learning.WithStorageKey(a.cfg.Storage.Key))
	if !a.cfg.Usage.Enabled {
		tracker.Disable()
	}

	a.store = store
	a.tracker = tracker
	return tracker, nil
}

// Close flushes pending usage and releases storage.
func (a *App) Close() {
	if a.tracker != nil {
		a.tracker.Stop()
		a.tracker = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("failed to close usage storage", zap.Error(err))
		}
		a.store = nil
	}
}

func (a *App) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
