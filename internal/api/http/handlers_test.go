package http

import (
	"archive/tar"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/userstore/internal/api/middleware"
	"github.com/GriffinCanCode/userstore/internal/api/routes"
	"github.com/GriffinCanCode/userstore/internal/domain/storage"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/config"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/monitoring"
)

const userHeader = "X-Remote-User"

type fixture struct {
	router  *gin.Engine
	root    string
	shared  string
	metrics *monitoring.Metrics
}

func setupRouter(t *testing.T, prefix string, serverMode bool, opts ...func(*config.StorageConfig)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	shared := t.TempDir()
	cfg := config.StorageConfig{
		ServerMode: serverMode,
		Dir:        root,
		Shared: config.SharedStorageList{
			{Name: "team", Path: shared, RestrictedAccess: true},
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	metrics := monitoring.NewMetrics()
	resolver := storage.NewResolver(cfg, nil).WithMetrics(metrics)
	table := routes.New(prefix)
	h := NewHandlers(resolver, table, metrics, nil, serverMode)

	router := gin.New()
	router.Use(middleware.RemoteUser(userHeader))
	base := router.Group(prefix)
	table.GET(base, routes.Health, "/health", h.Health)
	table.GET(base, routes.BrowserIndex, "/browser/", h.BrowserIndex)

	api := base.Group("/storage", middleware.RequireUser())
	table.GET(api, routes.StorageDirectory, "/directory", h.StorageDirectory)
	table.GET(api, routes.StorageFiles, "/files", h.StorageFiles)
	table.GET(api, routes.StorageUsage, "/usage", h.StorageUsage)
	table.GET(api, routes.StorageArchive, "/archive", h.StorageArchive)

	return &fixture{router: router, root: root, shared: shared, metrics: metrics}
}

func (f *fixture) do(t *testing.T, target, username string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if username != "" {
		req.Header.Set(userHeader, username)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := setupRouter(t, "", true)
	w := f.do(t, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestBrowserIndexCookiePath(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"root", "", "/"},
		{"prefixed", "/pgadmin4", "/pgadmin4"},
		{"nested", "/tools/pgadmin4", "/tools/pgadmin4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRouter(t, tt.prefix, true)
			w := f.do(t, tt.prefix+"/browser/", "alice@example.com")
			require.Equal(t, http.StatusOK, w.Code)

			body := decode(t, w)
			assert.Equal(t, tt.want, body["cookie_path"])
			assert.Equal(t, "alice@example.com", body["username"])
			assert.Equal(t, []any{"team"}, body["shared_storage"])

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, SessionCookie, cookies[0].Name)
			assert.Equal(t, tt.want, cookies[0].Path)
			assert.True(t, cookies[0].HttpOnly)
			assert.NotEmpty(t, cookies[0].Value)
		})
	}
}

func TestBrowserIndexKeepsExistingCookie(t *testing.T) {
	f := setupRouter(t, "", true)
	req := httptest.NewRequest(http.MethodGet, "/browser/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "existing"})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestStorageRequiresUser(t *testing.T) {
	f := setupRouter(t, "", true)
	w := f.do(t, "/storage/directory", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStorageDirectory(t *testing.T) {
	f := setupRouter(t, "", true)

	t.Run("private", func(t *testing.T) {
		w := f.do(t, "/storage/directory", "alice@example.com")
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		want := filepath.Join(f.root, "alice_example.com")
		assert.Equal(t, want, body["path"])
		assert.Equal(t, "my_storage", body["storage"])
		assert.Equal(t, false, body["shared"])
		assert.Equal(t, true, body["writable"])
		assert.DirExists(t, want)
	})

	t.Run("shared", func(t *testing.T) {
		w := f.do(t, "/storage/directory?storage=team", "alice@example.com")
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, f.shared, body["path"])
		assert.Equal(t, true, body["shared"])
		assert.Equal(t, false, body["writable"])
	})

	t.Run("unknown shared", func(t *testing.T) {
		w := f.do(t, "/storage/directory?storage=nope", "alice@example.com")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "nope", decode(t, w)["storage"])
	})
}

func TestStorageDirectoryDesktopMode(t *testing.T) {
	f := setupRouter(t, "", false)
	w := f.do(t, "/storage/directory", "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorageDirectoryCreateFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "storage")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	f := setupRouter(t, "", true, func(cfg *config.StorageConfig) {
		cfg.Dir = file
	})

	w := f.do(t, "/storage/directory", "alice")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStorageFiles(t *testing.T) {
	f := setupRouter(t, "", true)
	dir := filepath.Join(f.root, "bob")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "a.sql"), []byte("select 1;"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))

	w := f.do(t, "/storage/files?pattern=**/*.sql", "bob")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "scripts/a.sql", entries[0].(map[string]any)["path"])

	w = f.do(t, "/storage/files?pattern=%5B", "bob")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageUsage(t *testing.T) {
	f := setupRouter(t, "", true)
	dir := filepath.Join(f.root, "bob")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), []byte("select 1;"), 0o600))

	w := f.do(t, "/storage/usage", "bob")
	require.Equal(t, http.StatusOK, w.Code)

	usage := decode(t, w)["usage"].(map[string]any)
	assert.EqualValues(t, 1, usage["files"])
	assert.EqualValues(t, len("select 1;"), usage["bytes"])
}

func TestStorageArchive(t *testing.T) {
	f := setupRouter(t, "", true)
	dir := filepath.Join(f.root, "bob")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), []byte("select 1;"), 0o600))

	w := f.do(t, "/storage/archive", "bob")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gzip", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bob.tar.gz"`, w.Header().Get("Content-Disposition"))

	size := w.Body.Len()
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	tr := tar.NewReader(zr)
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.sql", hdr.Name)
	data, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "select 1;", string(data))

	got := testutil.ToFloat64(f.metrics.ArchiveBytes.WithLabelValues("gzip"))
	assert.Equal(t, float64(size), got)
}

func TestStorageArchiveBadFormat(t *testing.T) {
	f := setupRouter(t, "", true)
	w := f.do(t, "/storage/archive?format=rar", "bob")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageArchiveWalkFailureIsJSON(t *testing.T) {
	f := setupRouter(t, "", true)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "bob"), 0o700))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/storage/archive", nil).WithContext(ctx)
	req.Header.Set(userHeader, "bob")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "failed to archive storage", decode(t, w)["error"])
}
