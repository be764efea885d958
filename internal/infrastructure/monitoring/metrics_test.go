package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestStorageCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordStorageResolution("private", "resolved")
	m.RecordStorageResolution("private", "resolved")
	m.RecordStorageResolution("shared", "unknown")
	m.IncStorageMigrations()
	m.IncStorageDirectoriesCreated()
	m.AddArchiveBytes("gzip", 512)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StorageResolutions.WithLabelValues("private", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageResolutions.WithLabelValues("shared", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageMigrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageCreated))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.ArchiveBytes.WithLabelValues("gzip")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "userstore_http_requests_total")
	assert.Contains(t, w.Body.String(), "userstore_uptime_seconds")
}
