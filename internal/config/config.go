package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"grocerynana/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvConfigFile  = "GROCERYNANA_CONFIG"
	envPrefix      = "GROCERYNANA_"
)

// Load builds the service configuration. Sources, lowest precedence first:
// built-in defaults, the YAML file named by GROCERYNANA_CONFIG, then the
// environment. A .env file in the working directory is merged into the
// environment beforehand without overriding variables that are already set.
func Load() (*models.Config, error) {
	loadDotEnv(".env")

	config := models.NewDefaultConfig()

	if configPath := os.Getenv(EnvConfigFile); configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv merges the given dotenv files into the process environment.
// Missing files are skipped silently; unreadable or malformed ones are logged
// and skipped, leaving the environment untouched.
func loadDotEnv(paths ...string) {
	for _, path := range paths {
		err := godotenv.Load(path)
		switch {
		case err == nil:
			slog.Debug("Loaded environment file", "path", path)
		case errors.Is(err, fs.ErrNotExist):
			// optional
		default:
			slog.Warn("Ignoring environment file", "path", path, "error", err)
		}
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", filePath)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnvironment loads configuration from environment variables.
// Values that fail to parse are ignored and the previous value is kept.
func loadFromEnvironment(config *models.Config) {
	// Database. DATABASE_URL is deliberately unprefixed.
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		config.Database.URL = url
	}
	setInt(&config.Database.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS")
	setInt(&config.Database.MaxIdleConns, "DATABASE_MAX_IDLE_CONNS")
	setDuration(&config.Database.ConnMaxLifetime, "DATABASE_CONN_MAX_LIFETIME")
	setDuration(&config.Database.ConnMaxIdleTime, "DATABASE_CONN_MAX_IDLE_TIME")

	// Server
	setString(&config.Server.Host, "HOST")
	setInt(&config.Server.Port, "PORT")
	setDuration(&config.Server.ReadTimeout, "READ_TIMEOUT")
	setDuration(&config.Server.WriteTimeout, "WRITE_TIMEOUT")
	setDuration(&config.Server.IdleTimeout, "IDLE_TIMEOUT")
	setDuration(&config.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
	setBool(&config.Server.RateLimit.Enabled, "RATE_LIMIT_ENABLED")
	setInt(&config.Server.RateLimit.RequestsPerMinute, "RATE_LIMIT_REQUESTS_PER_MINUTE")
	setInt(&config.Server.RateLimit.Burst, "RATE_LIMIT_BURST")
	setBool(&config.Server.RateLimit.TrustProxy, "RATE_LIMIT_TRUST_PROXY")

	// Logging
	setString(&config.Logging.Level, "LOG_LEVEL")
	setString(&config.Logging.Format, "LOG_FORMAT")
	setString(&config.Logging.Output, "LOG_OUTPUT")
	setString(&config.Logging.FilePath, "LOG_FILE_PATH")

	// Metrics
	setBool(&config.Metrics.Enabled, "METRICS_ENABLED")
	setString(&config.Metrics.Path, "METRICS_PATH")
	setInt(&config.Metrics.Port, "METRICS_PORT")

	// Tracing
	setString(&config.Observability.ServiceName, "SERVICE_NAME")
	setBool(&config.Observability.Tracing.Enabled, "TRACING_ENABLED")
	setString(&config.Observability.Tracing.Exporter, "TRACING_EXPORTER")
	setString(&config.Observability.Tracing.OTLPEndpoint, "TRACING_OTLP_ENDPOINT")
	if rate := os.Getenv(envPrefix + "TRACING_SAMPLE_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Observability.Tracing.SampleRate = r
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = strings.ToLower(v) == "true"
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
