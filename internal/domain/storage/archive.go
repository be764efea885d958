package storage

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ArchiveFormat selects the compression of a storage archive.
type ArchiveFormat string

const (
	FormatGzip ArchiveFormat = "gzip"
	FormatZstd ArchiveFormat = "zstd"
)

// ParseArchiveFormat maps a query value to a format. Empty means gzip.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch ArchiveFormat(s) {
	case "", FormatGzip:
		return FormatGzip, nil
	case FormatZstd:
		return FormatZstd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Extension returns the file name suffix of the archive.
func (f ArchiveFormat) Extension() string {
	if f == FormatZstd {
		return ".tar.zst"
	}
	return ".tar.gz"
}

// ContentType returns the MIME type of the archive.
func (f ArchiveFormat) ContentType() string {
	if f == FormatZstd {
		return "application/zstd"
	}
	return "application/gzip"
}

type archiveItem struct {
	rel  string
	path string
	info fs.FileInfo
}

// Archive writes a compressed tar of dir to w. Only directories and regular
// files are included; entries are ordered by path.
func Archive(ctx context.Context, dir string, w io.Writer, format ArchiveFormat) error {
	snap, err := PrepareArchive(ctx, dir, format)
	if err != nil {
		return err
	}
	return snap.Write(ctx, w)
}

// ArchiveSnapshot is the walked content of a directory, ready to be written.
// File contents are read only when the archive is written.
type ArchiveSnapshot struct {
	format ArchiveFormat
	items  []archiveItem
}

// PrepareArchive validates format and walks dir. Nothing has been written
// when it fails.
func PrepareArchive(ctx context.Context, dir string, format ArchiveFormat) (*ArchiveSnapshot, error) {
	if _, err := ParseArchiveFormat(string(format)); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		items []archiveItem
	)

	err := walk(ctx, dir, func(rel, p string, d fs.DirEntry) {
		if !d.IsDir() && !d.Type().IsRegular() {
			return
		}
		info, err := d.Info()
		if err != nil {
			return
		}
		mu.Lock()
		items = append(items, archiveItem{rel: rel, path: p, info: info})
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].rel < items[j].rel })

	return &ArchiveSnapshot{format: format, items: items}, nil
}

// Len returns the number of entries in the archive.
func (s *ArchiveSnapshot) Len() int {
	return len(s.items)
}

// Write streams the compressed tar to w.
func (s *ArchiveSnapshot) Write(ctx context.Context, w io.Writer) error {
	var compressor io.WriteCloser
	switch s.format {
	case FormatGzip:
		compressor = gzip.NewWriter(w)
	case FormatZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("create zstd writer: %w", err)
		}
		compressor = zw
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, s.format)
	}

	if err := writeTar(ctx, compressor, s.items); err != nil {
		compressor.Close()
		return err
	}
	return compressor.Close()
}

func writeTar(ctx context.Context, w io.Writer, items []archiveItem) error {
	tw := tar.NewWriter(w)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeTarEntry(tw, item); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}
	return nil
}

func writeTarEntry(tw *tar.Writer, item archiveItem) error {
	hdr, err := tar.FileInfoHeader(item.info, "")
	if err != nil {
		return fmt.Errorf("tar header %s: %w", item.rel, err)
	}
	hdr.Name = item.rel
	if item.info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header %s: %w", item.rel, err)
	}
	if item.info.IsDir() {
		return nil
	}

	f, err := os.Open(filepath.Clean(item.path))
	if err != nil {
		return fmt.Errorf("open %s: %w", item.rel, err)
	}
	defer f.Close()

	if _, err := io.CopyN(tw, f, item.info.Size()); err != nil {
		return fmt.Errorf("archive %s: %w", item.rel, err)
	}
	return nil
}
