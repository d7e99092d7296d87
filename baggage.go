package otelme

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

// BaggagePrefix is prepended to baggage keys copied onto spans by
// AttachBaggage.
const BaggagePrefix = "baggage."

// Baggage stores value under t.Name() in the baggage of the returned
// context, so it travels to downstream services with the trace. The key
// must be a valid W3C baggage token.
func (t Teller) Baggage(value string) (context.Context, error) {
	m, err := baggage.NewMember(t.name, value)
	if err != nil {
		return t.ctx, fmt.Errorf("baggage %q: %w", t.name, err)
	}
	bag, err := baggage.FromContext(t.ctx).SetMember(m)
	if err != nil {
		return t.ctx, fmt.Errorf("baggage %q: %w", t.name, err)
	}

	return baggage.ContextWithBaggage(t.ctx, bag), nil
}

// BaggageValue returns the baggage value stored under name in ctx.
func BaggageValue(ctx context.Context, name string) string {
	return baggage.FromContext(ctx).Member(name).Value()
}

// AttachBaggage copies every baggage member of ctx onto the current span
// as attribute "baggage.<key>" and returns the number copied.
func AttachBaggage(ctx context.Context) int {
	members := baggage.FromContext(ctx).Members()
	if len(members) == 0 {
		return 0
	}

	attrs := make([]attribute.KeyValue, 0, len(members))
	for _, m := range members {
		attrs = append(attrs, attribute.String(BaggagePrefix+m.Key(), m.Value()))
	}
	trace.SpanFromContext(ctx).SetAttributes(attrs...)

	return len(attrs)
}
