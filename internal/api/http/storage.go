package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/userstore/internal/api/middleware"
	"github.com/GriffinCanCode/userstore/internal/domain/storage"
	"github.com/GriffinCanCode/userstore/internal/shared/paths"
)

// storageName returns the requested storage, defaulting to the caller's own.
func storageName(c *gin.Context) string {
	if name := c.Query("storage"); name != "" {
		return name
	}
	return paths.MyStorage
}

// storageDir resolves the requested storage directory of the current user
// and writes the error response itself when there is none.
func (h *Handlers) storageDir(c *gin.Context) (string, bool) {
	u, _ := middleware.CurrentUser(c)
	name := storageName(c)

	dir, ok, err := h.resolver.Resolve(u, name)
	if err != nil {
		h.logger.Error("Failed to resolve storage directory",
			zap.String("username", u.Username),
			zap.String("storage", name),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare storage directory"})
		return "", false
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "storage not available", "storage": name})
		return "", false
	}
	return dir, true
}

// StorageDirectory returns the resolved directory of the requested storage.
func (h *Handlers) StorageDirectory(c *gin.Context) {
	dir, ok := h.storageDir(c)
	if !ok {
		return
	}

	name := storageName(c)
	c.JSON(http.StatusOK, gin.H{
		"storage":  name,
		"shared":   paths.IsShared(name),
		"path":     dir,
		"writable": h.resolver.Writable(name),
	})
}

// StorageFiles lists the requested storage, optionally filtered by pattern.
func (h *Handlers) StorageFiles(c *gin.Context) {
	dir, ok := h.storageDir(c)
	if !ok {
		return
	}

	pattern := c.Query("pattern")
	entries, err := storage.List(c.Request.Context(), dir, pattern)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPattern) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to list storage", zap.String("dir", dir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list storage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"storage": storageName(c),
		"pattern": pattern,
		"count":   len(entries),
		"entries": entries,
	})
}

// StorageUsage reports how much the requested storage holds.
func (h *Handlers) StorageUsage(c *gin.Context) {
	dir, ok := h.storageDir(c)
	if !ok {
		return
	}

	usage, err := storage.DiskUsage(c.Request.Context(), dir)
	if err != nil {
		h.logger.Error("Failed to measure storage", zap.String("dir", dir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to measure storage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"storage": storageName(c),
		"usage":   usage,
	})
}

// StorageArchive streams the requested storage as a compressed tarball.
func (h *Handlers) StorageArchive(c *gin.Context) {
	format, err := storage.ParseArchiveFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dir, ok := h.storageDir(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	snap, err := storage.PrepareArchive(ctx, dir, format)
	if err != nil {
		h.logger.Error("Failed to read storage for archive", zap.String("dir", dir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive storage"})
		return
	}

	u, _ := middleware.CurrentUser(c)
	filename := paths.SanitizeUsername(u.Username)
	if name := storageName(c); paths.IsShared(name) {
		filename = paths.SanitizeUsername(name)
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="`+filename+format.Extension()+`"`)
	c.Status(http.StatusOK)

	cw := &countingWriter{w: c.Writer}
	if err := snap.Write(ctx, cw); err != nil {
		// Headers are gone; all that is left is to log and cut the stream.
		h.logger.Error("Failed to archive storage", zap.String("dir", dir), zap.Error(err))
		c.Error(err)
		c.Abort()
	}

	if h.metrics != nil {
		h.metrics.AddArchiveBytes(string(format), cw.n)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
