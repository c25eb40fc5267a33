package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vbwd/pluginkit/pkg/observability"
)

// Config holds all host configuration.
type Config struct {
	// Plugins configuration
	Plugins PluginsConfig

	// Idempotency configuration
	Idempotency IdempotencyConfig

	// Sweeper configuration
	Sweeper SweeperConfig

	// Observability configuration
	Observability ObservabilityConfig

	// ShutdownTimeout bounds graceful shutdown of the host.
	ShutdownTimeout time.Duration
}

// PluginsConfig holds plugin discovery settings.
type PluginsConfig struct {
	// Dirs are the directories scanned for plugin manifests.
	Dirs []string

	// Watch enables filesystem watching of plugin directories.
	Watch bool
}

// IdempotencyConfig holds idempotency store settings.
type IdempotencyConfig struct {
	// Store selects the backend: "memory" or "redis".
	Store string

	// TTL is how long recorded results stay valid.
	TTL time.Duration

	// MemorySize bounds the in-memory store.
	MemorySize int

	// Redis connection settings, used when Store is "redis".
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SweeperConfig holds subscription expiry sweeper settings.
type SweeperConfig struct {
	Enabled  bool
	Schedule string
	Workers  int
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
	MetricsAddr    string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Plugins: PluginsConfig{
			Dirs:  splitList(getEnv("PLUGINKIT_PLUGIN_DIRS", "plugins")),
			Watch: getEnvBool("PLUGINKIT_PLUGIN_WATCH", false),
		},
		Idempotency: IdempotencyConfig{
			Store:         getEnv("PLUGINKIT_IDEMPOTENCY_STORE", "memory"),
			TTL:           getEnvDuration("PLUGINKIT_IDEMPOTENCY_TTL", 24*time.Hour),
			MemorySize:    getEnvInt("PLUGINKIT_IDEMPOTENCY_MEMORY_SIZE", 10000),
			RedisAddr:     getEnv("PLUGINKIT_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("PLUGINKIT_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("PLUGINKIT_REDIS_DB", 0),
		},
		Sweeper: SweeperConfig{
			Enabled:  getEnvBool("PLUGINKIT_SWEEP_ENABLED", true),
			Schedule: getEnv("PLUGINKIT_SWEEP_SCHEDULE", "*/5 * * * *"),
			Workers:  getEnvInt("PLUGINKIT_SWEEP_WORKERS", 4),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("PLUGINKIT_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("PLUGINKIT_METRICS_ENABLED", true),
			MetricsAddr:    getEnv("PLUGINKIT_METRICS_ADDR", ":9090"),
		},
		ShutdownTimeout: getEnvDuration("PLUGINKIT_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Plugins.Dirs) == 0 {
		return fmt.Errorf("at least one plugin directory is required")
	}

	switch c.Idempotency.Store {
	case "memory":
		if c.Idempotency.MemorySize <= 0 {
			return fmt.Errorf("idempotency memory size must be positive")
		}
	case "redis":
		if c.Idempotency.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis idempotency store")
		}
	default:
		return fmt.Errorf("invalid idempotency store: %s (must be memory or redis)", c.Idempotency.Store)
	}
	if c.Idempotency.TTL <= 0 {
		return fmt.Errorf("idempotency TTL must be positive")
	}

	if c.Sweeper.Enabled {
		if _, err := cron.ParseStandard(c.Sweeper.Schedule); err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", c.Sweeper.Schedule, err)
		}
		if c.Sweeper.Workers <= 0 {
			return fmt.Errorf("sweep workers must be positive")
		}
	}

	if c.Observability.MetricsEnabled && c.Observability.MetricsAddr == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}

	return nil
}

// splitList splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
