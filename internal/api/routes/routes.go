// Package routes keeps a table of named routes so handlers can build URLs
// that honour the application's mount prefix.
package routes

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
)

// Route names
const (
	Health           = "health"
	BrowserIndex     = "browser.index"
	StorageDirectory = "storage.directory"
	StorageFiles     = "storage.files"
	StorageUsage     = "storage.usage"
	StorageArchive   = "storage.archive"
	Metrics          = "metrics"
)

// Table maps route names to paths below a mount prefix.
type Table struct {
	prefix string

	mu     sync.RWMutex
	routes map[string]string
}

// New creates a table for an application mounted at prefix ("" for root).
func New(prefix string) *Table {
	return &Table{
		prefix: prefix,
		routes: make(map[string]string),
	}
}

// Prefix returns the mount prefix.
func (t *Table) Prefix() string {
	return t.prefix
}

// Add names a path relative to the mount prefix.
func (t *Table) Add(name, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[name] = path
}

// URLFor returns the absolute path of a named route.
func (t *Table) URLFor(name string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	path, ok := t.routes[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}
	return t.prefix + path, nil
}

// GET registers a GET handler on r, which must be rooted at the mount
// prefix, and records it under name.
func (t *Table) GET(r gin.IRoutes, name, path string, handlers ...gin.HandlerFunc) {
	r.GET(path, handlers...)
	t.Add(name, path)
}
