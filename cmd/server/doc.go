// Package main is the entry point of the per-user storage server.
//
// The server runs behind a web server that authenticates users and passes
// the username in a request header. Each user gets a private storage
// directory below the storage root, created on first use; administrators
// may also configure shared storage locations.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - SHARED_STORAGE_FILE for shared storage in YAML, TOML or JSON
//
// Usage:
//
//	# Mounted at the root, storage in ~/.pgadmin/storage
//	./server -port 8000
//
//	# Mounted below a prefix with an explicit storage root
//	./server -prefix /pgadmin4 -storage /var/lib/pgadmin/storage
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
