// Package otelme is a terse annotation layer over the OpenTelemetry tracing
// API. It turns the usual span bookkeeping into one-line calls on a named
// handle.
//
// # Quick Start
//
// Build the providers and the span counter from configuration:
//
//	cfg, err := otelme.LoadConfig("telemetry.yaml")
//	if err != nil {
//	    return err
//	}
//	tel, err := otelme.Setup(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Then annotate code with [Tell]:
//
//	func Signup(ctx context.Context, u User) (err error) {
//	    ctx, s := otelme.Open(ctx, "signup")
//	    defer s.Close(&err)
//
//	    otelme.Tell(ctx, "user.id").Value(u.ID)
//	    otelme.Tell(ctx, "user").Attrs(map[string]any{"plan": u.Plan, "seats": u.Seats})
//	    otelme.Tell(ctx, "user.created").Event(map[string]any{"source": "web"})
//	    otelme.Tell(ctx, "signup.attempts").Add(1)
//
//	    return store(ctx, u)
//	}
//
// # Values and Events
//
// [Teller.Value] and [Pass] record an attribute and hand the value back, so
// they can wrap an expression in place. [Teller.Event] adds an event named
// after the handle; [Teller.Attrs] flattens a map into "name.key"
// attributes.
//
// # Span Counters
//
// [Teller.Add], [Teller.Sub] and friends keep a running total per
// (span, name) pair and record the new total as an attribute on the span
// after every change. Totals live in a bounded LRU store ([recent.Store]):
// when more pairs are in use than the store holds, the least recently used
// total is dropped and restarts from zero. The store size is set by
// counters.capacity (OTELME_COUNTER_CAPACITY), 1024 by default.
//
// The counter used by Tell is the one carried by the context
// ([ContextWithCounter]), else the process-wide one ([InitCounters],
// [DefaultCounter]). The http and grpc subpackages attach a counter to
// every request context.
//
// # Scopes
//
// [Open] and [Scope.Close] bracket a span. A returned error or a panic is
// recorded as an exception event with type, message and stack trace and
// marks the span failed; the error is still returned and the panic keeps
// unwinding. [Run], [Wrap] and [WrapValue] do the same for a function;
// Wrap derives the span name from the function when none is given.
//
// # Configuration
//
// [TelemetryConfig] is loaded with [LoadConfig] or [ParseConfig] from YAML
// or JSON, with OTel standard environment variables taking precedence:
//
//	enabled: true
//	serviceName: "checkout"            # OTEL_SERVICE_NAME
//	otlp:
//	  endpoint: "otel-collector:4317"  # OTEL_EXPORTER_OTLP_ENDPOINT
//	traces:
//	  exporter: "otlp"                 # OTEL_TRACES_EXPORTER
//	  sampling:
//	    sampler: "parentbased_traceidratio"
//	    samplerArg: 0.1
//	metrics:
//	  enabled: true
//	propagation:
//	  propagators: "tracecontext,baggage"
//	counters:
//	  capacity: 4096                   # OTELME_COUNTER_CAPACITY
//
// # Span Naming
//
// A [SpanNamer] passed to [InitTracing] rewrites every span name;
// [PrefixNamer] namespaces them.
package otelme
