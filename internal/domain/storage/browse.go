package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
)

// Entry describes one file or directory below a storage directory.
type Entry struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	IsDir    bool      `json:"is_dir"`
	MimeType string    `json:"mime_type,omitempty"`
}

// Usage summarises the contents of a storage directory.
type Usage struct {
	Files       int64 `json:"files"`
	Directories int64 `json:"directories"`
	Bytes       int64 `json:"bytes"`
}

// List walks dir and returns its entries sorted by slash-separated relative
// path. A non-empty pattern filters paths with doublestar syntax ("**/*.sql").
func List(ctx context.Context, dir, pattern string) ([]Entry, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	var (
		mu      sync.Mutex
		entries = []Entry{}
	)

	err := walk(ctx, dir, func(rel, p string, d fs.DirEntry) {
		if pattern != "" {
			if matched, _ := doublestar.Match(pattern, rel); !matched {
				return
			}
		}

		info, err := d.Info()
		if err != nil {
			return
		}

		entry := Entry{
			Path:     rel,
			Modified: info.ModTime().UTC(),
			IsDir:    d.IsDir(),
		}
		if d.Type().IsRegular() {
			entry.Size = info.Size()
			if mtype, err := mimetype.DetectFile(p); err == nil {
				entry.MimeType = mtype.String()
			}
		}

		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// DiskUsage counts the files, directories and bytes below dir.
func DiskUsage(ctx context.Context, dir string) (Usage, error) {
	var files, dirs, bytes atomic.Int64

	err := walk(ctx, dir, func(_, _ string, d fs.DirEntry) {
		if d.IsDir() {
			dirs.Add(1)
			return
		}
		if !d.Type().IsRegular() {
			return
		}
		info, err := d.Info()
		if err != nil {
			return
		}
		files.Add(1)
		bytes.Add(info.Size())
	})
	if err != nil {
		return Usage{}, err
	}

	return Usage{Files: files.Load(), Directories: dirs.Load(), Bytes: bytes.Load()}, nil
}

// walk visits every entry below dir except dir itself. fn may be called
// concurrently. Unreadable entries are skipped.
func walk(ctx context.Context, dir string, fn func(rel, path string, d fs.DirEntry)) error {
	root := filepath.Clean(dir)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if p == root {
				return err
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return nil
		}

		fn(filepath.ToSlash(rel), p, d)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk storage directory %s: %w", root, err)
	}
	return nil
}
