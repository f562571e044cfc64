// Package config loads application configuration from environment variables.
// Every field has a default except where marked required, and the loaded
// configuration is validated as a whole so misconfiguration fails at startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Collaborator CollaboratorConfig
	Upload       UploadConfig
	Session      SessionConfig
	Rate         RateLimitConfig
	Security     SecurityConfig
	Logging      LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 5m, scripts can be slow)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// CollaboratorConfig holds settings for the external processing server.
type CollaboratorConfig struct {
	// URL is the processing server's base URL (required)
	// Supports both PROCESSING_SERVER_URL and COLLABORATOR_URL
	URL string `env:"PROCESSING_SERVER_URL" envAlt:"COLLABORATOR_URL" required:"true"`

	// Timeout bounds a single call (default: 2m)
	Timeout time.Duration `env:"PROCESSING_SERVER_TIMEOUT" default:"2m"`

	// MaxConcurrent is the maximum number of calls in flight (default: 2)
	MaxConcurrent int `env:"PROCESSING_SERVER_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long a call waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"PROCESSING_SERVER_MAX_WAIT_TIME" default:"30s"`
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum CSV upload size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxDrawingSize is the maximum drawing upload size in bytes (default: 200MB)
	MaxDrawingSize int64 `env:"UPLOAD_MAX_DRAWING_SIZE" default:"209715200"`

	// DefaultEncoding is assumed when an upload names no encoding (default: utf-8)
	DefaultEncoding string `env:"UPLOAD_DEFAULT_ENCODING" default:"utf-8"`
}

// SessionConfig holds editor session settings.
type SessionConfig struct {
	// IdleTimeout is how long an unused editor session is kept (default: 30m)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	// SweepInterval is how often idle sessions are removed (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 300, editing is chatty)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
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
