package otelme

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func nopConfig() *TelemetryConfig {
	return &TelemetryConfig{
		Enabled:     boolPtr(true),
		ServiceName: "test-service",
		Traces:      &TracesConfig{Exporter: "none"},
	}
}

func TestNewTracerProvider(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), &TelemetryConfig{Enabled: boolPtr(false)})
	require.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, tp)

	cfg := nopConfig()
	cfg.Traces.Enabled = boolPtr(false)
	_, err = NewTracerProvider(context.Background(), cfg)
	require.ErrorIs(t, err, ErrDisabled)

	tp, err = NewTracerProvider(context.Background(), nopConfig())
	require.NoError(t, err)
	require.NotNil(t, tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	assert.ElementsMatch(t,
		[]string{"traceparent", "tracestate", "baggage"},
		otel.GetTextMapPropagator().Fields())
}

func TestNewTracerProvider_MissingServiceName(t *testing.T) {
	cfg := nopConfig()
	cfg.ServiceName = ""

	tp, err := NewTracerProvider(context.Background(), cfg)
	require.ErrorIs(t, err, ErrServiceNameRequired)
	assert.Nil(t, tp)
}

func TestNewTracerProvider_UnsupportedExporter(t *testing.T) {
	cfg := nopConfig()
	cfg.Traces.Exporter = "zipkin"

	_, err := NewTracerProvider(context.Background(), cfg)
	require.ErrorContains(t, err, `unsupported exporter "zipkin"`)
}

func TestNewMeterProvider(t *testing.T) {
	cfg := nopConfig()
	cfg.Metrics = &MetricsConfig{Enabled: boolPtr(true), Exporter: "none", Interval: 500 * time.Millisecond}

	mp, err := NewMeterProvider(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	_, err = NewMeterProvider(context.Background(), nopConfig())
	assert.ErrorIs(t, err, ErrMetricsDisabled)
}

func TestNewLoggerProvider(t *testing.T) {
	cfg := nopConfig()
	cfg.Logs = &LogsConfig{Enabled: boolPtr(true), Exporter: "none"}

	lp, err := NewLoggerProvider(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, lp)
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	_, err = NewLoggerProvider(context.Background(), nopConfig())
	assert.ErrorIs(t, err, ErrLogsDisabled)

	cfg.ServiceName = ""
	_, err = NewLoggerProvider(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrServiceNameRequired)
}

func TestBuildResource(t *testing.T) {
	cfg := nopConfig()
	cfg.Version = "1.2.3"
	cfg.ResourceAttributes = map[string]string{"team": "core", "": "dropped"}

	res, err := buildResource(context.Background(), cfg)
	require.NoError(t, err)

	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "test-service", got["service.name"])
	assert.Equal(t, "1.2.3", got["service.version"])
	assert.Equal(t, "core", got["team"])
	assert.NotContains(t, got, attribute.Key(""))
}

func TestBuildSampler(t *testing.T) {
	cases := []struct {
		name string
		cfg  *SamplingConfig
		want string
	}{
		{name: "nil", cfg: nil, want: "ParentBased{root:AlwaysOnSampler"},
		{name: "always on", cfg: &SamplingConfig{Sampler: "always_on"}, want: "AlwaysOnSampler"},
		{name: "always off", cfg: &SamplingConfig{Sampler: "always_off"}, want: "AlwaysOffSampler"},
		{name: "ratio", cfg: &SamplingConfig{Sampler: "traceidratio", SamplerArg: 0.5}, want: "TraceIDRatioBased{0.5}"},
		{name: "parent ratio", cfg: &SamplingConfig{Sampler: "parentbased_traceidratio", SamplerArg: 0.25}, want: "ParentBased{root:TraceIDRatioBased{0.25}"},
		{name: "unknown", cfg: &SamplingConfig{Sampler: "sometimes"}, want: "ParentBased{root:AlwaysOnSampler"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, buildSampler(tt.cfg).Description(), tt.want)
		})
	}
}

func TestMetricInterval(t *testing.T) {
	assert.Equal(t, defaultMetricInterval, metricInterval(0))
	assert.Equal(t, 500*time.Millisecond, metricInterval(500))
	assert.Equal(t, 2*time.Second, metricInterval(2*time.Second))
}

func TestBuildPropagator(t *testing.T) {
	cases := []struct {
		name string
		cfg  *PropConfig
		want []string
	}{
		{name: "nil", cfg: nil, want: []string{"traceparent", "tracestate", "baggage"}},
		{name: "tracecontext", cfg: &PropConfig{Propagators: "tracecontext"}, want: []string{"traceparent", "tracestate"}},
		{name: "baggage and unknown", cfg: &PropConfig{Propagators: "baggage, b3"}, want: []string{"baggage"}},
		{name: "none", cfg: &PropConfig{Propagators: "none"}, want: []string{}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, buildPropagator(tt.cfg).Fields())
		})
	}
}

func TestSetup(t *testing.T) {
	t.Cleanup(resetGlobals)

	cfg := nopConfig()
	cfg.Metrics = &MetricsConfig{Enabled: boolPtr(true), Exporter: "none"}
	cfg.Logs = &LogsConfig{Enabled: boolPtr(true), Exporter: "none"}
	cfg.Counters = &CountersConfig{Capacity: 16}

	tel, err := Setup(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.NotNil(t, tel.MeterProvider)
	require.NotNil(t, tel.LoggerProvider)
	require.NotNil(t, tel.Counter)

	assert.Equal(t, 16, tel.Counter.Store().Cap())
	assert.Same(t, tel.Counter, DefaultCounter())
	assert.NotNil(t, tel.Counter.evictions)
	assert.NotNil(t, tel.Counter.logger)

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetup_Disabled(t *testing.T) {
	t.Cleanup(resetGlobals)

	tel, err := Setup(context.Background(), &TelemetryConfig{Enabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	assert.Nil(t, tel.LoggerProvider)
	assert.Equal(t, DefaultCounterCapacity, tel.Counter.Store().Cap())
	assert.Same(t, tel.Counter, DefaultCounter())
	assert.Nil(t, tel.Counter.evictions)

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetup_CounterMetricsOff(t *testing.T) {
	t.Cleanup(resetGlobals)

	cfg := nopConfig()
	cfg.Metrics = &MetricsConfig{Enabled: boolPtr(true), Exporter: "none"}
	cfg.Counters = &CountersConfig{Metrics: boolPtr(false)}

	tel, err := Setup(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	assert.NotNil(t, tel.MeterProvider)
	assert.Nil(t, tel.Counter.evictions)
}

func TestSetup_TracerUsedByOpen(t *testing.T) {
	t.Cleanup(resetGlobals)

	tel, err := Setup(context.Background(), nopConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	_, s := Open(context.Background(), "op")
	defer s.Close(nil)

	ro, ok := s.Span().(sdktrace.ReadOnlySpan)
	require.True(t, ok)
	assert.Equal(t, "test-service", ro.InstrumentationScope().Name)
}

func resetGlobals() {
	InitTracing(nil, nil)
	InitCounters(nil)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
}
