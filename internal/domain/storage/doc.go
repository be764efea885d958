// Package storage provisions the per-user storage directories of a
// server-mode deployment.
//
// Every user gets a private directory below the configured storage root,
// named after the sanitized username. Administrators may also configure
// named shared locations which are used as-is. Directories are created on
// first use with mode 0700, and directories left behind by older releases
// (named after the username's local part only) are renamed into place.
//
// Usage:
//
//	if err := storage.Initialize(cfg.Storage, logger); err != nil {
//	    return err // *storage.ConfigurationError
//	}
//
//	resolver := storage.NewResolver(cfg.Storage, logger).WithMetrics(metrics)
//	dir, ok, err := resolver.Resolve(user.New("alice@example.com"), "")
package storage
