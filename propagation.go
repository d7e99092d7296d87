package otelme

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/metadata"
)

// buildPropagator returns the composite propagator named by cfg.
// Only tracecontext and baggage are built in; other names, including the
// contrib ones (b3, jaeger, xray), are reported through otel.Handle and
// skipped.
func buildPropagator(cfg *PropConfig) propagation.TextMapPropagator {
	if cfg != nil {
		for _, name := range splitList(cfg.Propagators) {
			switch name {
			case "tracecontext", "baggage", "none":
			default:
				otel.Handle(fmt.Errorf("otelme: propagator %q is not supported, ignoring", name))
			}
		}
	}

	var props []propagation.TextMapPropagator
	if cfg.HasTraceContext() {
		props = append(props, propagation.TraceContext{})
	}
	if cfg.HasBaggage() {
		props = append(props, propagation.Baggage{})
	}

	return propagation.NewCompositeTextMapPropagator(props...)
}

// InjectHTTP writes the span context and baggage of ctx into headers.
func InjectHTTP(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// ExtractHTTP returns ctx with the span context and baggage read from headers.
func ExtractHTTP(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectGRPC writes the span context and baggage of ctx into md.
func InjectGRPC(ctx context.Context, md metadata.MD) {
	otel.GetTextMapPropagator().Inject(ctx, mdCarrier(md))
}

// ExtractGRPC returns ctx with the span context and baggage read from md.
func ExtractGRPC(ctx context.Context, md metadata.MD) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, mdCarrier(md))
}

type mdCarrier metadata.MD

func (m mdCarrier) Get(key string) string {
	if v := metadata.MD(m).Get(key); len(v) > 0 {
		return v[0]
	}

	return ""
}

func (m mdCarrier) Set(key, value string) {
	metadata.MD(m).Set(key, value)
}

func (m mdCarrier) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return keys
}
