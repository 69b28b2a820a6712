// Package metrics centralises the worker's Prometheus metrics: one
// counter/histogram set per scheduled pipeline (collector, edge_sync,
// trending_refresh, health_audit). cmd/worker/metrics_server.go exposes
// them on /metrics via promhttp.Handler against the default registry
// these promauto-constructed metrics register into.
//
// HTTP-facing request metrics are a separate concern owned by
// internal/handler/http, since only cmd/api serves HTTP traffic.
package metrics
