// Package tracker holds the process-wide tracer and span namer used by the
// otelme helpers.
package tracker

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used when no tracer was installed.
const InstrumentationName = "github.com/arloliu/otelme"

// Namer determines how span names are formatted.
type Namer interface {
	Name(string) string
}

type passthrough struct{}

func (passthrough) Name(s string) string { return s }

type state struct {
	tracer trace.Tracer
	namer  Namer
}

var global atomic.Pointer[state]

func init() {
	Reset()
}

// Set installs the tracer and namer. A nil namer keeps names unchanged.
func Set(t trace.Tracer, n Namer) {
	if n == nil {
		n = passthrough{}
	}
	global.Store(&state{tracer: t, namer: n})
}

// Reset drops the installed tracer and namer.
func Reset() {
	global.Store(&state{namer: passthrough{}})
}

// Tracer returns the installed tracer, or nil if none was set.
func Tracer() trace.Tracer {
	return global.Load().tracer
}

// Start begins a new span named by the installed namer.
//
// Without an installed tracer the span comes from the global
// TracerProvider, which is a no-op until one is registered.
func Start(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := global.Load()
	t := s.tracer
	if t == nil {
		t = otel.Tracer(InstrumentationName)
	}

	return t.Start(ctx, s.namer.Name(operation), opts...)
}
