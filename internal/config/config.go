// Package config provides centralized configuration management for the
// dashboard server and the popreport CLI. It loads configuration from
// environment variables with sensible defaults and validates all settings
// on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatasetConfig controls where population records come from.
type DatasetConfig struct {
	// Source is csv or postgres (default: csv)
	Source string `env:"DATASET_SOURCE" default:"csv"`

	// Path is the CSV file read when Source is csv
	Path string `env:"DATASET_PATH" default:"us-population-2010-2019-reshaped.csv"`

	// Strict fails the load on the first malformed or duplicate row
	// instead of skipping it (default: false)
	Strict bool `env:"DATASET_STRICT" default:"false"`

	// MigrationThreshold is the year-over-year change, in people, that counts
	// as significant migration (default: 50000)
	MigrationThreshold int64 `env:"MIGRATION_THRESHOLD" default:"50000"`
}

// DatabaseConfig holds database connection settings. Only used when the
// dataset source is postgres or by `popreport import`.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table holds the population rows (default: us_population)
	Table string `env:"DB_TABLE" default:"us_population"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// ConnectTimeout bounds connecting and loading at startup (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// SessionConfig holds per-visitor selection state settings.
type SessionConfig struct {
	// CookieName is the session cookie (default: popdash_session)
	CookieName string `env:"SESSION_COOKIE" default:"popdash_session"`

	// TTL is how long an idle session is kept (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// CleanupInterval is how often expired sessions are purged (default: 1m)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" default:"1m"`

	// SecureCookie sets the Secure flag on the cookie (default: false)
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ExportLimit is requests per minute for export endpoints (default: 10)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the /api routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
