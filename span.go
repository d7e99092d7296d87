package otelme

import (
	"context"

	"github.com/arloliu/otelme/internal/tracker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InitTracing installs the tracer and namer used by Start, Open, Run and
// Wrap. Call it once during application start. A nil namer keeps operation
// names unchanged; a nil tracer falls back to the global TracerProvider.
func InitTracing(tracer trace.Tracer, namer SpanNamer) {
	tracker.Set(tracer, namer)
}

// Start begins a new span with the configured namer applied.
func Start(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tracker.Start(ctx, operation, opts...)
}

func startKind(ctx context.Context, kind trace.SpanKind, operation string, opts []trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append([]trace.SpanStartOption{trace.WithSpanKind(kind)}, opts...)

	return tracker.Start(ctx, operation, opts...)
}

// StartServer begins a server span (handling an incoming request).
func StartServer(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return startKind(ctx, trace.SpanKindServer, operation, opts)
}

// StartClient begins a client span (making an outgoing request).
func StartClient(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return startKind(ctx, trace.SpanKindClient, operation, opts)
}

// StartInternal begins an internal span.
func StartInternal(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return startKind(ctx, trace.SpanKindInternal, operation, opts)
}

// StartProducer begins a producer span (publishing a message).
func StartProducer(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return startKind(ctx, trace.SpanKindProducer, operation, opts)
}

// StartConsumer begins a consumer span (processing a message).
func StartConsumer(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return startKind(ctx, trace.SpanKindConsumer, operation, opts)
}

// Span returns the current span from ctx.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// TraceID returns the trace ID from ctx, or "" if there is none.
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// SpanID returns the span ID from ctx, or "" if there is none.
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}

	return ""
}

// RecordError records err on the current span and marks it failed.
// A nil err is ignored.
func RecordError(ctx context.Context, err error, opts ...trace.EventOption) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSuccess marks the current span as successful.
func SetSuccess(ctx context.Context) {
	trace.SpanFromContext(ctx).SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
