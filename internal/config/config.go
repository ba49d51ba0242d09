// Package config provides centralized configuration management for healthjoin.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/healthjoin/internal/core"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Join     JoinConfig
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// JoinConfig selects the target year and locates the files of a run.
type JoinConfig struct {
	// Year is the single year kept in the output (default: 2022)
	Year string `env:"JOIN_YEAR" default:"2022"`

	// DataDir is the base directory holding data/ and the output (default: .)
	DataDir string `env:"DATA_DIR" default:"."`

	// LifePath overrides the located life expectancy table
	LifePath string `env:"JOIN_LIFE_PATH"`

	// HealthPath overrides the located healthcare expenditure table
	HealthPath string `env:"JOIN_HEALTH_PATH"`

	// OutputPath overrides <DataDir>/combined_<Year>.csv
	OutputPath string `env:"JOIN_OUTPUT_PATH"`
}

// Paths resolves the run's files under DataDir and applies any overrides.
func (c *JoinConfig) Paths() core.Paths {
	return core.ResolvePaths(c.DataDir, c.Year).WithOverrides(core.Paths{
		Life:   c.LifePath,
		Health: c.HealthPath,
		Output: c.OutputPath,
	})
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxConcurrentRuns is how many requests may rebuild the table at once (default: 4)
	MaxConcurrentRuns int `env:"SERVER_MAX_CONCURRENT_RUNS" default:"4"`

	// RunWait is how long a request waits for a run slot (default: 10s)
	RunWait time.Duration `env:"SERVER_RUN_WAIT" default:"10s"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Only the postgres load target needs it.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// SQLitePath is the database file used by the sqlite load target (default: healthjoin.db)
	SQLitePath string `env:"SQLITE_PATH" default:"healthjoin.db"`
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
	return c.Host + ":" + strconv.Itoa(c.Port)
}
