package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpMeter              = otel.Meter("finanzas/http")
	httpRequestDuration, _ = httpMeter.Float64Histogram("finanzas.http.request.duration",
		metric.WithDescription("HTTP request duration in seconds, by route pattern"),
		metric.WithUnit("s"),
	)
	httpRequestTotal, _ = httpMeter.Int64Counter("finanzas.http.request.total",
		metric.WithDescription("Total HTTP requests, by route pattern"),
	)
)

// RouteMetrics records per-route metrics using the ServeMux pattern that
// matched, so /api/accounts/{id} is one series rather than one per id.
// It must wrap the mux directly.
func RouteMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)
		req := r.WithContext(r.Context())
		next.ServeHTTP(wrapped, req)

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}
		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}

		span := trace.SpanFromContext(r.Context())
		span.SetAttributes(attribute.String("http.route", route))

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		httpRequestDuration.Record(r.Context(), time.Since(start).Seconds(), attrs)
		httpRequestTotal.Add(r.Context(), 1, attrs)
	})
}
