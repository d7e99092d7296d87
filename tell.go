package otelme

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Teller is a named handle on the span in a context. Each method is one
// short annotation: set an attribute, add an event, bump a counter or open
// a child span named after the handle.
//
//	otelme.Tell(ctx, "user.id").Value(user.ID)
//	otelme.Tell(ctx, "user.signup").Event(map[string]any{"plan": plan})
//	otelme.Tell(ctx, "import.rows").Add(1)
//
// A Teller is cheap to create and is meant to be used inline.
type Teller struct {
	ctx     context.Context
	name    string
	counter *Counter
}

// Tell returns a Teller for name on the span in ctx.
func Tell(ctx context.Context, name string) Teller {
	return Teller{ctx: ctx, name: name}
}

// Name returns the attribute, event or span name used by t.
func (t Teller) Name() string {
	return t.name
}

// Value records v as attribute t.Name() on the current span and returns v
// unchanged, so it can wrap an expression in place.
func (t Teller) Value(v any) any {
	trace.SpanFromContext(t.ctx).SetAttributes(toKeyValue(t.name, v))

	return v
}

// Pass is the typed form of Teller.Value.
//
//	n := otelme.Pass(otelme.Tell(ctx, "friends"), len(user.Friends)) + 1
func Pass[T any](t Teller, v T) T {
	t.Value(v)

	return v
}

// Event adds an event named t.Name() carrying attrs and returns attrs.
func (t Teller) Event(attrs map[string]any) map[string]any {
	trace.SpanFromContext(t.ctx).AddEvent(t.name, trace.WithAttributes(toKeyValues("", attrs)...))

	return attrs
}

// Attrs records every entry of attrs as attribute "<t.Name()>.<key>" on the
// current span and returns attrs.
func (t Teller) Attrs(attrs map[string]any) map[string]any {
	trace.SpanFromContext(t.ctx).SetAttributes(toKeyValues(t.name+".", attrs)...)

	return attrs
}

// Add increments the counter t.Name() and returns the new total.
func (t Teller) Add(amount int64) int64 {
	return t.resolve().Add(t.ctx, t.name, amount)
}

// Sub decrements the counter t.Name() and returns the new total.
func (t Teller) Sub(amount int64) int64 {
	return t.resolve().Sub(t.ctx, t.name, amount)
}

// AddFloat increments the counter t.Name() by a float amount.
func (t Teller) AddFloat(amount float64) float64 {
	return t.resolve().AddFloat(t.ctx, t.name, amount)
}

// SubFloat decrements the counter t.Name() by a float amount.
func (t Teller) SubFloat(amount float64) float64 {
	return t.resolve().SubFloat(t.ctx, t.name, amount)
}

// AddNumber increments the counter t.Name() by any Go numeric value.
// Non-numeric amounts return ErrTypeMismatch and leave the counter as is.
func (t Teller) AddNumber(amount any) (Number, error) {
	n, err := ToNumber(amount)
	if err != nil {
		return Number{}, fmt.Errorf("count %q: %w", t.name, err)
	}

	return t.resolve().Increment(t.ctx, t.name, n), nil
}

// Open starts a child span named t.Name(). See Open.
func (t Teller) Open(opts ...trace.SpanStartOption) (context.Context, *Scope) {
	return Open(t.ctx, t.name, opts...)
}

// Run runs fn inside a child span named t.Name(). See Run.
func (t Teller) Run(fn func(context.Context) error) error {
	return Run(t.ctx, t.name, fn)
}

func (t Teller) resolve() *Counter {
	if t.counter != nil {
		return t.counter
	}

	return resolveCounter(t.ctx)
}

func toKeyValues(prefix string, attrs map[string]any) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, toKeyValue(prefix+k, v))
	}

	return kvs
}

// toKeyValue maps v onto the closest attribute type. Anything without a
// native attribute representation is recorded as its fmt.Sprint form.
func toKeyValue(key string, v any) attribute.KeyValue {
	switch x := v.(type) {
	case attribute.Value:
		return attribute.KeyValue{Key: attribute.Key(key), Value: x}
	case Number:
		return x.KeyValue(key)
	case bool:
		return attribute.Bool(key, x)
	case string:
		return attribute.String(key, x)
	case int:
		return attribute.Int(key, x)
	case int8:
		return attribute.Int64(key, int64(x))
	case int16:
		return attribute.Int64(key, int64(x))
	case int32:
		return attribute.Int64(key, int64(x))
	case int64:
		return attribute.Int64(key, x)
	case uint8:
		return attribute.Int64(key, int64(x))
	case uint16:
		return attribute.Int64(key, int64(x))
	case uint32:
		return attribute.Int64(key, int64(x))
	case float32:
		return attribute.Float64(key, float64(x))
	case float64:
		return attribute.Float64(key, x)
	case []bool:
		return attribute.BoolSlice(key, x)
	case []string:
		return attribute.StringSlice(key, x)
	case []int:
		return attribute.IntSlice(key, x)
	case []int64:
		return attribute.Int64Slice(key, x)
	case []float64:
		return attribute.Float64Slice(key, x)
	case error:
		return attribute.String(key, x.Error())
	case fmt.Stringer:
		return attribute.Stringer(key, x)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
