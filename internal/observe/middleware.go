package observe

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// responseTracker wraps [http.ResponseWriter] to capture the status code
// and body size written by the downstream handler.
type responseTracker struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (t *responseTracker) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTracker) Write(p []byte) (int, error) {
	n, err := t.ResponseWriter.Write(p)
	t.bytes += n
	return n, err
}

// Middleware instruments every request: it joins the incoming W3C trace
// context (or starts a new trace), surfaces the trace ID to the client as
// X-Correlation-ID, times the request, and logs one completion line.
//
// The duration histogram and the span are labelled with the chi route
// pattern ("/v1/sessions/{id}") once routing has resolved it, so
// per-session URLs do not explode metric cardinality. Outside a chi router
// the raw URL path is used instead.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	prop := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := StartSpan(ctx, "HTTP "+r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
				),
			)
			defer span.End()

			if cid := CorrelationID(ctx); cid != "" {
				w.Header().Set("X-Correlation-ID", cid)
			}
			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			tw := &responseTracker{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(tw, r.WithContext(ctx))

			// The route pattern is only known after routing.
			route := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
					span.SetName("HTTP " + r.Method + " " + p)
					span.SetAttributes(semconv.HTTPRoute(p))
				}
			}
			span.SetAttributes(semconv.HTTPResponseStatusCode(tw.status))

			duration := time.Since(start)
			m.HTTPRequestDuration.Record(ctx, duration.Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", route),
				),
			)

			Logger(ctx).LogAttrs(ctx, slog.LevelInfo, "request completed",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", tw.status),
				slog.Int("bytes", tw.bytes),
				slog.Duration("duration", duration),
			)
		})
	}
}
