// Package config provides configuration management for the radio directory server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultServerPort      = 3001
	DefaultLogLevel        = "info"
	DefaultLogMaxSizeMB    = 100
	DefaultLogMaxBackups   = 3
	DefaultLogMaxAgeDays   = 28
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultDatabaseURL     = "sqlite://database.sqlite"
	DefaultDBMaxOpenConns  = 10
	DefaultCORSOrigins     = "*"
	DefaultRateLimitRPS    = 0
	DefaultRateLimitBurst  = 20
	DefaultEnvFile         = ".env"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvPort            = "PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvLogFile         = "APP_LOG_FILE"
	EnvLogMaxSizeMB    = "APP_LOG_MAX_SIZE_MB"
	EnvLogMaxBackups   = "APP_LOG_MAX_BACKUPS"
	EnvLogMaxAgeDays   = "APP_LOG_MAX_AGE_DAYS"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvDatabaseURL     = "APP_DATABASE_URL"
	EnvDBMaxOpenConns  = "APP_DB_MAX_OPEN_CONNS"
	EnvCORSOrigins     = "APP_CORS_ALLOWED_ORIGINS"
	EnvRateLimitRPS    = "APP_RATE_LIMIT_RPS"
	EnvRateLimitBurst  = "APP_RATE_LIMIT_BURST"
	EnvEnvFile         = "APP_ENV_FILE"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Logging. An empty LogFile logs to stdout only.
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Storage.
	DatabaseURL    string
	DBMaxOpenConns int

	// HTTP policy.
	CORSAllowedOrigins []string
	RateLimitRPS       float64 // 0 disables rate limiting.
	RateLimitBurst     int
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidLogRotation     = errors.New("log rotation limits must not be negative")
	ErrEmptyDatabaseURL       = errors.New("database URL must be set")
	ErrInvalidDBMaxOpenConns  = errors.New("database max open connections must be positive")
	ErrEmptyCORSOrigins       = errors.New("at least one CORS origin must be allowed")
	ErrInvalidRateLimit       = errors.New("rate limit must not be negative and burst must be positive")
)

// Load reads configuration from environment variables with defaults.
// Variables found in the optional env file fill in whatever the real
// environment leaves unset.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:         DefaultServerPort,
		LogLevel:           DefaultLogLevel,
		LogMaxSizeMB:       DefaultLogMaxSizeMB,
		LogMaxBackups:      DefaultLogMaxBackups,
		LogMaxAgeDays:      DefaultLogMaxAgeDays,
		ShutdownTimeout:    DefaultShutdownTimeout,
		MetricsEnabled:     DefaultMetricsEnabled,
		DatabaseURL:        DefaultDatabaseURL,
		DBMaxOpenConns:     DefaultDBMaxOpenConns,
		CORSAllowedOrigins: splitList(DefaultCORSOrigins),
		RateLimitRPS:       DefaultRateLimitRPS,
		RateLimitBurst:     DefaultRateLimitBurst,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadEnvFile populates the environment from the env file. A missing file is
// not an error.
func loadEnvFile() error {
	path := os.Getenv(EnvEnvFile)
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	if err := c.loadLogEnv(); err != nil {
		return err
	}

	if err := c.loadStorageEnv(); err != nil {
		return err
	}

	return c.loadPolicyEnv()
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	// PORT is what most hosting platforms inject; the prefixed name wins.
	for _, name := range []string{EnvPort, EnvServerPort} {
		if err := parseInt(name, &c.ServerPort); err != nil {
			return err
		}
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	return nil
}

// loadLogEnv loads logging environment variables.
func (c *Config) loadLogEnv() error {
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = strings.ToLower(val)
	}

	if val := os.Getenv(EnvLogFile); val != "" {
		c.LogFile = val
	}

	if err := parseInt(EnvLogMaxSizeMB, &c.LogMaxSizeMB); err != nil {
		return err
	}
	if err := parseInt(EnvLogMaxBackups, &c.LogMaxBackups); err != nil {
		return err
	}
	return parseInt(EnvLogMaxAgeDays, &c.LogMaxAgeDays)
}

// loadStorageEnv loads database environment variables.
func (c *Config) loadStorageEnv() error {
	if val := os.Getenv(EnvDatabaseURL); val != "" {
		c.DatabaseURL = val
	}

	return parseInt(EnvDBMaxOpenConns, &c.DBMaxOpenConns)
}

// loadPolicyEnv loads CORS and rate limiting environment variables.
func (c *Config) loadPolicyEnv() error {
	if val, ok := os.LookupEnv(EnvCORSOrigins); ok {
		c.CORSAllowedOrigins = splitList(val)
	}

	if val := os.Getenv(EnvRateLimitRPS); val != "" {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRateLimitRPS, err)
		}
		c.RateLimitRPS = rps
	}

	return parseInt(EnvRateLimitBurst, &c.RateLimitBurst)
}

// parseInt overwrites dst with the integer value of the named variable, if set.
func parseInt(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = n
	return nil
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if c.DatabaseURL == "" {
		return ErrEmptyDatabaseURL
	}
	if c.DBMaxOpenConns < 1 {
		return ErrInvalidDBMaxOpenConns
	}

	if len(c.CORSAllowedOrigins) == 0 {
		return ErrEmptyCORSOrigins
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 1 {
		return ErrInvalidRateLimit
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateLogging validates the log level and rotation limits.
func (c *Config) validateLogging() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return ErrInvalidLogRotation
	}

	return nil
}

// RateLimitEnabled reports whether per-client rate limiting is on.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
