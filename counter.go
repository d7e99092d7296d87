package otelme

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/arloliu/otelme/internal/tracker"
	"github.com/arloliu/otelme/recent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCounterCapacity is the number of counters kept by NewDefaultCounter.
const DefaultCounterCapacity = 1024

// CounterStore is the bounded store backing a Counter.
type CounterStore = recent.Store[string, Number]

// Counter keeps running totals scoped to the active span and mirrors every
// new total onto that span as an attribute.
//
// Totals live in a bounded LRU store: once more than its capacity of
// (span, name) pairs are in use, the least recently touched total is
// forgotten and restarts from zero. Counter is safe for concurrent use.
type Counter struct {
	store     *CounterStore
	evictions metric.Int64Counter
	logger    otellog.Logger
}

type counterOptions struct {
	mp metric.MeterProvider
	lp otellog.LoggerProvider
}

// CounterOption configures a Counter.
type CounterOption func(*counterOptions)

// WithMeterProvider reports store evictions and size through mp.
func WithMeterProvider(mp metric.MeterProvider) CounterOption {
	return func(o *counterOptions) {
		o.mp = mp
	}
}

// WithLoggerProvider emits a debug log record through lp on every eviction.
func WithLoggerProvider(lp otellog.LoggerProvider) CounterOption {
	return func(o *counterOptions) {
		o.lp = lp
	}
}

// NewCounter creates a Counter backed by store.
func NewCounter(store *CounterStore, opts ...CounterOption) *Counter {
	var o counterOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := &Counter{store: store}
	if o.mp != nil {
		c.registerMetrics(o.mp.Meter(tracker.InstrumentationName))
	}
	if o.lp != nil {
		c.logger = o.lp.Logger(tracker.InstrumentationName)
	}

	return c
}

// NewDefaultCounter creates a Counter holding DefaultCounterCapacity totals.
func NewDefaultCounter(opts ...CounterOption) *Counter {
	return NewCounter(recent.MustNew[string, Number](DefaultCounterCapacity), opts...)
}

// Store returns the backing store.
func (c *Counter) Store() *CounterStore {
	return c.store
}

// Key returns the store key for the counter name under the span in ctx.
func (*Counter) Key(ctx context.Context, name string) string {
	return counterKey(trace.SpanContextFromContext(ctx).SpanID(), name)
}

// Increment adds amount to the counter name of the span in ctx, records the
// new total as attribute name on that span and returns it.
//
// Without an active span the total is kept under the zero span ID and the
// attribute write goes to the non-recording span, so it is dropped.
func (c *Counter) Increment(ctx context.Context, name string, amount Number) Number {
	span := trace.SpanFromContext(ctx)
	key := counterKey(span.SpanContext().SpanID(), name)

	total, ev := c.store.Update(key, func(old Number, _ bool) Number {
		return old.Add(amount)
	})
	if ev != nil {
		c.recordEviction(ctx, ev)
	}

	span.SetAttributes(total.KeyValue(name))

	return total
}

// Decrement subtracts amount from the counter name. See Increment.
func (c *Counter) Decrement(ctx context.Context, name string, amount Number) Number {
	return c.Increment(ctx, name, amount.Neg())
}

// Add increments an integer counter.
func (c *Counter) Add(ctx context.Context, name string, amount int64) int64 {
	return c.Increment(ctx, name, Int(amount)).Int64()
}

// Sub decrements an integer counter.
func (c *Counter) Sub(ctx context.Context, name string, amount int64) int64 {
	return c.Decrement(ctx, name, Int(amount)).Int64()
}

// AddFloat increments a counter by a float amount.
func (c *Counter) AddFloat(ctx context.Context, name string, amount float64) float64 {
	return c.Increment(ctx, name, Float(amount)).Float64()
}

// SubFloat decrements a counter by a float amount.
func (c *Counter) SubFloat(ctx context.Context, name string, amount float64) float64 {
	return c.Decrement(ctx, name, Float(amount)).Float64()
}

// Tell returns a Teller for name whose counter methods use c.
func (c *Counter) Tell(ctx context.Context, name string) Teller {
	return Teller{ctx: ctx, name: name, counter: c}
}

func counterKey(id trace.SpanID, name string) string {
	return id.String() + "-" + name
}

func (c *Counter) registerMetrics(meter metric.Meter) {
	evictions, err := meter.Int64Counter(
		"otelme.counter.evictions",
		metric.WithDescription("Span counters dropped because the counter store was full."),
		metric.WithUnit("{counter}"),
	)
	if err != nil {
		otel.Handle(err)
	} else {
		c.evictions = evictions
	}

	_, err = meter.Int64ObservableGauge(
		"otelme.counter.entries",
		metric.WithDescription("Span counters currently held in the counter store."),
		metric.WithUnit("{counter}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(c.store.Len()), metric.WithAttributes(
				attribute.Int("otelme.counter.capacity", c.store.Cap()),
			))

			return nil
		}),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func (c *Counter) recordEviction(ctx context.Context, ev *recent.Eviction[string, Number]) {
	if c.evictions != nil {
		c.evictions.Add(ctx, 1)
	}
	if c.logger == nil {
		return
	}

	var rec otellog.Record
	rec.SetTimestamp(time.Now())
	rec.SetSeverity(otellog.SeverityDebug)
	rec.SetSeverityText("DEBUG")
	rec.SetBody(otellog.StringValue("counter store full, least recently used counter evicted"))
	rec.AddAttributes(
		otellog.String("otelme.counter.key", ev.Key),
		otellog.String("otelme.counter.value", ev.Value.String()),
		otellog.Int("otelme.counter.capacity", c.store.Cap()),
	)
	c.logger.Emit(ctx, rec)
}

var installed atomic.Pointer[Counter]

// InitCounters installs c as the process-wide Counter used by Tell when the
// context carries none. Passing nil restores a fresh default counter on the
// next use.
func InitCounters(c *Counter) {
	installed.Store(c)
}

// DefaultCounter returns the process-wide Counter, creating one with
// DefaultCounterCapacity on first use.
func DefaultCounter() *Counter {
	if c := installed.Load(); c != nil {
		return c
	}
	installed.CompareAndSwap(nil, NewDefaultCounter())

	return installed.Load()
}

type counterCtxKey struct{}

// ContextWithCounter returns a copy of ctx carrying c. Tell prefers it over
// the process-wide counter.
func ContextWithCounter(ctx context.Context, c *Counter) context.Context {
	return context.WithValue(ctx, counterCtxKey{}, c)
}

// CounterFromContext returns the Counter carried by ctx, if any.
func CounterFromContext(ctx context.Context) (*Counter, bool) {
	c, ok := ctx.Value(counterCtxKey{}).(*Counter)

	return c, ok && c != nil
}

func resolveCounter(ctx context.Context) *Counter {
	if c, ok := CounterFromContext(ctx); ok {
		return c
	}

	return DefaultCounter()
}
