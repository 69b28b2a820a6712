// Package tracing provides OpenTelemetry span-per-request tracing for
// the HTTP surface in internal/handler/http.
//
// Middleware extracts W3C Trace Context from incoming requests, starts
// a server span via the package-global tracer, and echoes the trace ID
// back on the X-Trace-Id response header. No exporter is configured
// here; absent one, go.opentelemetry.io/otel's global tracer provider
// is a safe no-op, so the middleware costs nothing when tracing isn't
// otherwise wired up downstream.
//
// Example usage:
//
//	h = tracing.Middleware(h)
//
//	ctx, span := tracing.GetTracer().Start(ctx, "collector.run")
//	defer span.End()
package tracing
