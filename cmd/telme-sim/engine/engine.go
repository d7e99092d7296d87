// Package engine replays scenarios through the otelme annotation layer.
package engine

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/arloliu/otelme"
	"github.com/arloliu/otelme/cmd/telme-sim/scenario"
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// Config configures an Engine.
type Config struct {
	// Clock drives simulated span durations. Defaults to the real clock.
	Clock clockz.Clock

	// Counter receives span counter updates. Defaults to the process-wide
	// otelme counter.
	Counter *otelme.Counter

	// LoggerProvider receives scenario log records. Defaults to the global
	// LoggerProvider.
	LoggerProvider otellog.LoggerProvider

	// Realtime makes spans last their template duration.
	Realtime bool

	// JitterPct varies realtime durations by up to this many percent.
	JitterPct int

	// Rand decides error injection and jitter. Defaults to a random source.
	Rand *rand.Rand
}

// Stats counts what an Engine has produced so far.
type Stats struct {
	Traces int64
	Spans  int64
	Failed int64
}

// Engine turns scenarios into spans, attributes, events, counters and logs.
// It is safe for concurrent use when Rand is left nil.
type Engine struct {
	clock    clockz.Clock
	counter  *otelme.Counter
	logger   otellog.Logger
	realtime bool
	jitter   int
	rnd      *rand.Rand

	traces, spans, failed atomic.Int64
}

// New returns an Engine for cfg.
func New(cfg Config) *Engine {
	e := &Engine{
		clock:    cfg.Clock,
		counter:  cfg.Counter,
		realtime: cfg.Realtime,
		jitter:   cfg.JitterPct,
		rnd:      cfg.Rand,
	}
	if e.clock == nil {
		e.clock = clockz.RealClock
	}
	lp := cfg.LoggerProvider
	if lp == nil {
		lp = global.GetLoggerProvider()
	}
	e.logger = lp.Logger("telme-sim")

	return e
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{Traces: e.traces.Load(), Spans: e.spans.Load(), Failed: e.failed.Load()}
}

// GenerateTrace replays s once as a new trace. Injected failures are
// recorded on their spans and counted in Stats; they are not returned.
func (e *Engine) GenerateTrace(ctx context.Context, s *scenario.Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.counter != nil {
		ctx = otelme.ContextWithCounter(ctx, e.counter)
	}

	e.generateSpan(ctx, &s.RootSpan, trace.WithNewRoot())
	e.traces.Add(1)

	return nil
}

func (e *Engine) generateSpan(ctx context.Context, tmpl *scenario.SpanTemplate, opts ...trace.SpanStartOption) {
	var err error
	opts = append(opts,
		trace.WithSpanKind(toSpanKind(tmpl.Kind)),
		trace.WithAttributes(parseAttributes(tmpl.Attributes)...),
	)
	ctx, sc := otelme.Open(ctx, tmpl.Name, opts...)
	defer sc.Close(&err)
	e.spans.Add(1)

	for _, ev := range tmpl.Events {
		otelme.Tell(ctx, ev.Name).Event(toAnyMap(ev.Attributes))
	}
	for _, c := range tmpl.Counters {
		e.count(ctx, c)
	}
	for _, l := range tmpl.Logs {
		e.emitLog(ctx, l)
	}

	for i := range tmpl.Children {
		e.generateSpan(ctx, &tmpl.Children[i])
	}

	if e.realtime {
		if d := e.applyJitter(tmpl.Duration.AsDuration()); d > 0 {
			e.clock.Sleep(d)
		}
	}

	if tmpl.ErrorRate > 0 && e.float64() < tmpl.ErrorRate {
		e.failed.Add(1)
		msg := tmpl.ErrorStatus
		if msg == "" {
			msg = "injected failure"
		}
		err = errors.New(msg)
	}
}

func (*Engine) count(ctx context.Context, c scenario.CounterTemplate) {
	t := otelme.Tell(ctx, c.Name)
	whole := c.Amount == math.Trunc(c.Amount)
	for range c.Repeat() {
		if whole {
			t.Add(int64(c.Amount))
		} else {
			t.AddFloat(c.Amount)
		}
	}
}

func (e *Engine) emitLog(ctx context.Context, l scenario.LogTemplate) {
	var rec otellog.Record
	rec.SetTimestamp(e.clock.Now())
	rec.SetBody(otellog.StringValue(l.Message))
	rec.SetSeverity(toLogSeverity(l.Level))
	rec.SetSeverityText(l.Level)
	for k, v := range l.Attributes {
		rec.AddAttributes(otellog.String(k, v))
	}
	e.logger.Emit(ctx, rec)
}

func (e *Engine) applyJitter(d time.Duration) time.Duration {
	if e.jitter <= 0 {
		return d
	}
	spread := float64(d) * float64(e.jitter) / 100.0

	return d + time.Duration(e.float64()*2*spread-spread)
}

func (e *Engine) float64() float64 {
	if e.rnd != nil {
		return e.rnd.Float64()
	}

	return rand.Float64() //nolint:gosec // weak rand is fine for simulation
}

func toSpanKind(k scenario.SpanKind) trace.SpanKind {
	switch k {
	case scenario.SpanKindServer:
		return trace.SpanKindServer
	case scenario.SpanKindClient:
		return trace.SpanKindClient
	case scenario.SpanKindProducer:
		return trace.SpanKindProducer
	case scenario.SpanKindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}

func toLogSeverity(level string) otellog.Severity {
	switch level {
	case "DEBUG":
		return otellog.SeverityDebug
	case "WARN":
		return otellog.SeverityWarn
	case "ERROR":
		return otellog.SeverityError
	default:
		return otellog.SeverityInfo
	}
}

// parseAttributes converts a string map to attributes, inferring int, float
// and bool values.
func parseAttributes(attrs map[string]string) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch x := inferValue(v).(type) {
		case int64:
			out = append(out, attribute.Int64(k, x))
		case float64:
			out = append(out, attribute.Float64(k, x))
		case bool:
			out = append(out, attribute.Bool(k, x))
		default:
			out = append(out, attribute.String(k, v))
		}
	}

	return out
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = inferValue(v)
	}

	return out
}

func inferValue(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}

	return v
}
