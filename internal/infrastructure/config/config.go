package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      string `envconfig:"PORT" default:"8000"`
	Host      string `envconfig:"HOST" default:"0.0.0.0"`
	URLPrefix string `envconfig:"URL_PREFIX" default:""`
}

// StorageConfig holds the per-user storage configuration.
type StorageConfig struct {
	ServerMode bool              `envconfig:"SERVER_MODE" default:"true"`
	Dir        string            `envconfig:"STORAGE_DIR"`
	Shared     SharedStorageList `envconfig:"SHARED_STORAGE"`
	SharedFile string            `envconfig:"SHARED_STORAGE_FILE"`
}

// AuthConfig holds the reverse-proxy authentication settings.
type AuthConfig struct {
	UserHeader string `envconfig:"AUTH_USER_HEADER" default:"X-Remote-User"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = DefaultStorageDir()
	}

	if cfg.Storage.SharedFile != "" {
		entries, err := LoadSharedStorageFile(cfg.Storage.SharedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Storage.Shared = append(cfg.Storage.Shared, entries...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			ServerMode: true,
			Dir:        DefaultStorageDir(),
		},
		Auth: AuthConfig{
			UserHeader: "X-Remote-User",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}

// DefaultStorageDir returns <home>/.pgadmin/storage with the .pgadmin
// component resolved through symlinks when it exists.
func DefaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}

	base := filepath.Join(home, ".pgadmin")
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	} else if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}
	return filepath.Join(base, "storage")
}

// Validate checks the values that envconfig cannot.
func (c *Config) Validate() error {
	prefix := c.Server.URLPrefix
	if prefix != "" && (!strings.HasPrefix(prefix, "/") || strings.HasSuffix(prefix, "/")) {
		return fmt.Errorf("invalid URL_PREFIX %q: must start with '/' and not end with '/'", prefix)
	}

	for i, entry := range c.Storage.Shared {
		if entry.Name == "" {
			return fmt.Errorf("shared storage entry %d: name cannot be empty", i)
		}
		if !filepath.IsAbs(entry.Path) {
			return fmt.Errorf("shared storage %q: path %q must be absolute", entry.Name, entry.Path)
		}
	}
	return nil
}
