package grpc

import (
	"context"

	"github.com/arloliu/otelme"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/stats"
)

type config struct {
	tp       trace.TracerProvider
	mp       metric.MeterProvider
	prop     propagation.TextMapPropagator
	counter  *otelme.Counter
	otelOpts []otelgrpc.Option
}

// Option configures the stats handlers and interceptors.
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

// WithCounter sets the counter the server interceptors attach to each
// call context. Without it the process-wide otelme counter is attached.
func WithCounter(c *otelme.Counter) Option {
	return func(cfg *config) { cfg.counter = c }
}

// WithOTelOptions passes extra options to otelgrpc.
func WithOTelOptions(opts ...otelgrpc.Option) Option {
	return func(c *config) { c.otelOpts = append(c.otelOpts, opts...) }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *config) otelgrpcOptions() []otelgrpc.Option {
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

	opts := []otelgrpc.Option{
		otelgrpc.WithTracerProvider(tp),
		otelgrpc.WithMeterProvider(mp),
		otelgrpc.WithPropagators(prop),
	}

	return append(opts, c.otelOpts...)
}

// ServerHandler returns a stats.Handler that traces incoming calls.
func ServerHandler(opts ...Option) stats.Handler {
	return otelgrpc.NewServerHandler(newConfig(opts).otelgrpcOptions()...)
}

// ClientHandler returns a stats.Handler that traces outgoing calls and
// propagates the span context and baggage.
func ClientHandler(opts ...Option) stats.Handler {
	return otelgrpc.NewClientHandler(newConfig(opts).otelgrpcOptions()...)
}

// ServerOptions returns the server stats handler together with the counter
// interceptors, ready for grpc.NewServer.
//
//	srv := grpc.NewServer(otelmegrpc.ServerOptions(otelmegrpc.WithCounter(tel.Counter))...)
func ServerOptions(opts ...Option) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.StatsHandler(ServerHandler(opts...)),
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(opts...)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(opts...)),
	}
}

// UnaryServerInterceptor attaches the counter to the call context, so
// otelme.Tell in handlers counts against the server span.
func UnaryServerInterceptor(opts ...Option) grpc.UnaryServerInterceptor {
	c := newConfig(opts)

	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(c.withCounter(ctx), req)
	}
}

// StreamServerInterceptor is the streaming form of UnaryServerInterceptor.
func StreamServerInterceptor(opts ...Option) grpc.StreamServerInterceptor {
	c := newConfig(opts)

	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &counterStream{ServerStream: ss, ctx: c.withCounter(ss.Context())})
	}
}

func (c *config) withCounter(ctx context.Context) context.Context {
	counter := c.counter
	if counter == nil {
		counter = otelme.DefaultCounter()
	}

	return otelme.ContextWithCounter(ctx, counter)
}

type counterStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *counterStream) Context() context.Context {
	return s.ctx
}
