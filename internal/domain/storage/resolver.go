package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/userstore/internal/domain/user"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/config"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/userstore/internal/shared/paths"
)

// DirMode is the permission set of every directory created for a user.
const DirMode fs.FileMode = 0o700

// Resolution outcomes reported to the Recorder.
const (
	ResultResolved = "resolved"
	ResultInactive = "inactive"
	ResultUnknown  = "unknown"
	ResultError    = "error"
)

// Recorder receives storage events. *monitoring.Metrics implements it.
type Recorder interface {
	RecordStorageResolution(kind, result string)
	IncStorageMigrations()
	IncStorageDirectoriesCreated()
}

// Resolver maps users to their storage directories, creating and migrating
// them on demand. Nothing is cached; every call inspects the filesystem.
type Resolver struct {
	cfg     config.StorageConfig
	logger  *logging.Logger
	metrics Recorder
}

// NewResolver creates a resolver for the given storage configuration.
func NewResolver(cfg config.StorageConfig, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// WithMetrics attaches a metrics recorder.
func (r *Resolver) WithMetrics(m Recorder) *Resolver {
	r.metrics = m
	return r
}

// Resolve returns the storage directory of u. sharedName selects a shared
// storage entry; "" and paths.MyStorage select the private directory.
//
// ok is false when storage does not apply: server mode is off, or the
// shared name is not configured. Nothing is created in that case.
func (r *Resolver) Resolve(u user.User, sharedName string) (dir string, ok bool, err error) {
	shared := paths.IsShared(sharedName)
	kind := "private"
	if shared {
		kind = "shared"
	}

	if !r.cfg.ServerMode {
		r.record(kind, ResultInactive)
		return "", false, nil
	}

	base := r.cfg.Dir
	if shared {
		entry, found := r.cfg.Shared.Lookup(sharedName)
		if !found {
			r.record(kind, ResultUnknown)
			return "", false, nil
		}
		base = entry.Path
	}
	if base == "" {
		r.record(kind, ResultInactive)
		return "", false, nil
	}

	dir = base
	if !shared {
		dir = paths.UserDir(base, u.Username)
		if err := r.migrateLegacy(paths.LegacyUserDir(base, u.Username), dir); err != nil {
			r.record(kind, ResultError)
			return "", false, err
		}
	}

	if err := r.ensureDir(dir); err != nil {
		r.record(kind, ResultError)
		return "", false, err
	}

	r.record(kind, ResultResolved)
	return dir, true, nil
}

// Writable reports whether the storage selected by sharedName accepts writes.
func (r *Resolver) Writable(sharedName string) bool {
	if !paths.IsShared(sharedName) {
		return true
	}
	entry, found := r.cfg.Shared.Lookup(sharedName)
	return found && !entry.RestrictedAccess
}

// SharedNames returns the configured shared storage names in order.
func (r *Resolver) SharedNames() []string {
	names := make([]string, 0, len(r.cfg.Shared))
	for _, entry := range r.cfg.Shared {
		names = append(names, entry.Name)
	}
	return names
}

// migrateLegacy renames a directory named after the username's local part
// to the current layout when only the legacy one exists.
func (r *Resolver) migrateLegacy(legacy, dir string) error {
	if legacy == dir || !exists(legacy) || exists(dir) {
		return nil
	}

	r.logger.Warn("Renaming storage directory",
		zap.String("from", legacy),
		zap.String("to", dir),
	)

	if err := os.Rename(legacy, dir); err != nil {
		// A concurrent request already moved it or created the target.
		if errors.Is(err, fs.ErrExist) || errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("Storage directory rename lost race", zap.String("to", dir), zap.Error(err))
			return nil
		}
		return fmt.Errorf("rename storage directory %s to %s: %w", legacy, dir, err)
	}

	if r.metrics != nil {
		r.metrics.IncStorageMigrations()
	}
	return nil
}

func (r *Resolver) ensureDir(dir string) error {
	if exists(dir) {
		return nil
	}

	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("create storage directory %s: %w", dir, err)
	}

	r.logger.Debug("Created storage directory", zap.String("dir", dir))
	if r.metrics != nil {
		r.metrics.IncStorageDirectoriesCreated()
	}
	return nil
}

func (r *Resolver) record(kind, result string) {
	if r.metrics != nil {
		r.metrics.RecordStorageResolution(kind, result)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
