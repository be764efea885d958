/*
Package monitoring provides Prometheus metrics for the storage server.

# Overview

Each Metrics value owns a private registry carrying HTTP request metrics,
storage resolution outcomes, legacy migrations, directory creation and
archive throughput, plus the Go and process collectors.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Feed storage events
	resolver := storage.NewResolver(cfg.Storage, logger).WithMetrics(metrics)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
