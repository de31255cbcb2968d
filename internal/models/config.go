// Package models - Service configuration and response payloads.
// This file defines the configuration structures for every service component.
//
// Configuration is hierarchical (server, database, logging, metrics,
// observability) with defaults that run out of the box against a local
// SQLite file.
package models

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDatabaseURL points at a file-backed SQLite database in the working directory.
const DefaultDatabaseURL = "sqlite:./database.db"

// Config is the root configuration structure containing all service settings.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`               // HTTP server configuration
	Database      DatabaseConfig      `yaml:"database" json:"database"`           // Connection pool settings
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`             // Logging and output configuration
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`             // Prometheus metrics endpoint
	Observability ObservabilityConfig `yaml:"observability" json:"observability"` // Tracing
}

type ServerConfig struct {
	Port            int             `yaml:"port" json:"port"`
	Host            string          `yaml:"host" json:"host"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	CORS            CORSConfig      `yaml:"cors" json:"cors"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// Addr returns the host:port the HTTP listener binds to.
func (sc ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"` // seconds
}

// RateLimitConfig throttles requests per client IP with a token bucket.
// Proxy headers are only trusted for the client address when TrustProxy is set.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
	TrustProxy        bool          `yaml:"trust_proxy" json:"trust_proxy"`
}

// DatabaseConfig describes the relational database and its connection pool.
// URL is not parsed here; the storage package rejects malformed values when
// the pool is created.
type DatabaseConfig struct {
	URL             string        `yaml:"url" json:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"` // stdout | otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with working defaults.
//
// The server listens on 0.0.0.0:8080, CORS allows any origin, method and
// header with a one hour preflight cache, and the database is a local SQLite
// file. Metrics and tracing are off until explicitly enabled.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "CONNECT", "TRACE"},
				AllowedHeaders: []string{"*"},
				MaxAge:         3600,
			},
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 120,
				Burst:             20,
				CleanupInterval:   5 * time.Minute,
			},
		},
		Database: DatabaseConfig{
			URL:             DefaultDatabaseURL,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "grocerynana-backend",
			Tracing: TracingConfig{
				Enabled:      false,
				Exporter:     "stdout",
				OTLPEndpoint: "localhost:4317",
				SampleRate:   1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("invalid database config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port < 0 || sc.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if sc.ReadTimeout < 0 {
		return errors.New("read timeout cannot be negative")
	}

	if sc.WriteTimeout < 0 {
		return errors.New("write timeout cannot be negative")
	}

	if sc.IdleTimeout < 0 {
		return errors.New("idle timeout cannot be negative")
	}

	if sc.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout cannot be negative")
	}

	if sc.CORS.MaxAge < 0 {
		return errors.New("CORS max age cannot be negative")
	}

	if err := sc.RateLimit.Validate(); err != nil {
		return fmt.Errorf("invalid rate limit: %w", err)
	}

	return nil
}

func (rc *RateLimitConfig) Validate() error {
	if !rc.Enabled {
		return nil
	}

	if rc.RequestsPerMinute <= 0 {
		return errors.New("requests per minute must be positive")
	}

	if rc.Burst <= 0 {
		return errors.New("burst must be positive")
	}

	if rc.CleanupInterval <= 0 {
		return errors.New("cleanup interval must be positive")
	}

	return nil
}

func (dc *DatabaseConfig) Validate() error {
	if dc.URL == "" {
		return errors.New("database URL cannot be empty")
	}

	if dc.MaxOpenConns < 0 {
		return errors.New("max open connections cannot be negative")
	}

	if dc.MaxIdleConns < 0 {
		return errors.New("max idle connections cannot be negative")
	}

	if dc.ConnMaxLifetime < 0 || dc.ConnMaxIdleTime < 0 {
		return errors.New("connection lifetimes cannot be negative")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	switch lc.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	switch lc.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	switch lc.Output {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if !oc.Tracing.Enabled {
		return nil
	}

	if oc.ServiceName == "" {
		return errors.New("service name is required when tracing is enabled")
	}

	switch oc.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}
