// Package observability provides structured logging and Prometheus metrics
// for the pluginkit runtime.
//
// # Overview
//
// Logger: structured JSON logging built on stdlib slog, used by host binaries
// Metrics: Prometheus counters, gauges and histograms covering event dispatch,
// handler outcomes and plugin lifecycle transitions
//
// All Metrics record methods are safe to call on a nil receiver, so the
// dispatchers and the plugin manager can run with metrics disabled.
package observability
