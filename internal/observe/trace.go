package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for all Orato spans.
const tracerName = "github.com/orato-app/orato"

// Tracer returns the Orato tracer from the globally registered
// [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span. The caller must End it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// StartStage starts a child span for one stage of the answer pipeline
// ("decode", "analyze", "transcribe", "rubric", "index"). Stage spans hang
// off the HTTP request span, so a slow attempt shows which stage ate the
// time.
func StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "pipeline."+stage,
		trace.WithAttributes(attribute.String("pipeline.stage", stage)))
}

// CorrelationID returns the active trace ID, or "" outside a span. The
// trace ID doubles as the correlation identifier surfaced to clients in the
// X-Correlation-ID header.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Logger returns the default [slog.Logger] enriched with trace_id and
// span_id when ctx carries an active span.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
