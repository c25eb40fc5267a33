// Package config provides host configuration management from environment
// variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables
// with sensible defaults for all settings.
//
// # Configuration Structure
//
// Plugin settings:
//
//	PLUGINKIT_PLUGIN_DIRS="plugins,/etc/pluginkit/plugins"
//	PLUGINKIT_PLUGIN_WATCH="false"
//
// Idempotency settings:
//
//	PLUGINKIT_IDEMPOTENCY_STORE="memory"  # memory, redis
//	PLUGINKIT_IDEMPOTENCY_TTL="24h"
//	PLUGINKIT_IDEMPOTENCY_MEMORY_SIZE="10000"
//	PLUGINKIT_REDIS_ADDR="localhost:6379"
//	PLUGINKIT_REDIS_DB="0"
//
// Sweeper settings:
//
//	PLUGINKIT_SWEEP_ENABLED="true"
//	PLUGINKIT_SWEEP_SCHEDULE="*/5 * * * *"
//	PLUGINKIT_SWEEP_WORKERS="4"
//
// Observability settings:
//
//	PLUGINKIT_LOG_LEVEL="info"  # debug, info, warn, error
//	PLUGINKIT_METRICS_ENABLED="true"
//	PLUGINKIT_METRICS_ADDR=":9090"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Plugin dirs: %v\n", cfg.Plugins.Dirs)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
package config
