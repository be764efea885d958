package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/userstore/internal/infrastructure/config"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/logging"
)

// Initialize prepares the storage root at start-up. It is a no-op outside
// server mode. A *ConfigurationError means the server must not start.
func Initialize(cfg config.StorageConfig, logger *logging.Logger) error {
	if !cfg.ServerMode || cfg.Dir == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	dir := cfg.Dir
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return notDirectoryError(dir)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return fmt.Errorf("create storage directory %s: %w", dir, err)
		}
		logger.Info("Created storage directory", zap.String("dir", dir))
	case err != nil:
		return fmt.Errorf("stat storage directory %s: %w", dir, err)
	}

	if err := checkAccess(dir); err != nil {
		return accessDeniedError(dir, err)
	}

	logger.Info("Storage directory ready",
		zap.String("dir", dir),
		zap.Int("shared_storage", len(cfg.Shared)),
	)
	return nil
}
