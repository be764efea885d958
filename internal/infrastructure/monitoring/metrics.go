package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Storage metrics
	StorageResolutions *prometheus.CounterVec
	StorageMigrations  prometheus.Counter
	StorageCreated     prometheus.Counter
	ArchiveBytes       *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several instances can coexist (one per server, one per test).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userstore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "userstore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "userstore_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "route"},
		),

		// Storage metrics
		StorageResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userstore_storage_resolutions_total",
				Help: "Storage directory resolutions by storage kind and outcome",
			},
			[]string{"kind", "result"},
		),
		StorageMigrations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "userstore_storage_migrations_total",
				Help: "Legacy storage directories renamed to the current layout",
			},
		),
		StorageCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "userstore_storage_directories_created_total",
				Help: "Storage directories created on first use",
			},
		),
		ArchiveBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userstore_storage_archive_bytes_total",
				Help: "Bytes streamed in storage archives",
			},
			[]string{"format"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "userstore_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))
}

// RecordStorageResolution records the outcome of a storage lookup.
func (m *Metrics) RecordStorageResolution(kind, result string) {
	m.StorageResolutions.WithLabelValues(kind, result).Inc()
}

// IncStorageMigrations increments the legacy migration counter
func (m *Metrics) IncStorageMigrations() {
	m.StorageMigrations.Inc()
}

// IncStorageDirectoriesCreated increments the created directories counter
func (m *Metrics) IncStorageDirectoriesCreated() {
	m.StorageCreated.Inc()
}

// AddArchiveBytes adds to the archive byte counter
func (m *Metrics) AddArchiveBytes(format string, n int64) {
	m.ArchiveBytes.WithLabelValues(format).Add(float64(n))
}
