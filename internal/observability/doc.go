// Package observability provides production-grade observability infrastructure
// including structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// This package centralizes observability concerns to enable:
//   - Request tracing across service boundaries
//   - Structured logging with context propagation
//   - Prometheus metrics for monitoring
//   - Performance profiling and debugging
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics for the worker's scheduled pipelines
//   - tracing: OpenTelemetry span-per-request HTTP middleware
//
// Example usage:
//
//	import (
//	    "afrisignal/internal/observability/logging"
//	    "afrisignal/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordCollectorRun(sourcesConsidered, inserted, duplicate, elapsed)
//	}
package observability
