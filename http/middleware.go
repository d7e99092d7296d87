package http

import (
	"net/http"

	"github.com/arloliu/otelme"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOperation names server spans when WithOperation is not given.
const DefaultOperation = "http.request"

type config struct {
	tp        trace.TracerProvider
	mp        metric.MeterProvider
	prop      propagation.TextMapPropagator
	counter   *otelme.Counter
	operation string
	baggage   bool
	otelOpts  []otelhttp.Option
}

// Option configures the middleware, transport and client.
type Option func(*config)

// WithTracerProvider uses tp instead of the global TracerProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tp = tp }
}

// WithMeterProvider uses mp instead of the global MeterProvider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.mp = mp }
}

// WithPropagators uses prop instead of the global TextMapPropagator.
func WithPropagators(prop propagation.TextMapPropagator) Option {
	return func(c *config) { c.prop = prop }
}

// WithCounter attaches c to every request context, so otelme.Tell inside
// handlers counts into it. Without it handlers use the process-wide
// counter.
func WithCounter(c *otelme.Counter) Option {
	return func(cfg *config) { cfg.counter = c }
}

// WithOperation sets the server span name.
func WithOperation(name string) Option {
	return func(c *config) { c.operation = name }
}

// WithBaggageAttributes copies incoming baggage members onto the server
// span as "baggage.<key>" attributes.
func WithBaggageAttributes() Option {
	return func(c *config) { c.baggage = true }
}

// WithOTelOptions passes extra options to otelhttp.
func WithOTelOptions(opts ...otelhttp.Option) Option {
	return func(c *config) { c.otelOpts = append(c.otelOpts, opts...) }
}

func newConfig(opts []Option) *config {
	c := &config{operation: DefaultOperation}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// otelhttpOptions resolves the providers, falling back to the globals at
// construction time.
func (c *config) otelhttpOptions() []otelhttp.Option {
	tp, mp, prop := c.tp, c.mp, c.prop
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}

	opts := []otelhttp.Option{
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithMeterProvider(mp),
		otelhttp.WithPropagators(prop),
	}

	return append(opts, c.otelOpts...)
}

// Middleware returns middleware that traces each request with otelhttp and
// makes the configured counter available to otelme.Tell in the handler.
//
//	mux.Handle("/orders", otelmehttp.Middleware(
//	    otelmehttp.WithCounter(tel.Counter),
//	)(orders))
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	c := newConfig(opts)
	traced := otelhttp.NewMiddleware(c.operation, c.otelhttpOptions()...)

	return func(next http.Handler) http.Handler {
		return traced(c.annotate(next))
	}
}

// Handler wraps handler with Middleware. operation names the server span.
func Handler(handler http.Handler, operation string, opts ...Option) http.Handler {
	return Middleware(append(opts, WithOperation(operation))...)(handler)
}

// annotate runs inside the server span.
func (c *config) annotate(next http.Handler) http.Handler {
	if c.counter == nil && !c.baggage {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c.counter != nil {
			ctx = otelme.ContextWithCounter(ctx, c.counter)
		}
		if c.baggage {
			otelme.AttachBaggage(ctx)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
