package main

import (
	"context"
	"testing"
	"time"

	"github.com/arloliu/otelme"
	"github.com/arloliu/otelme/cmd/telme-sim/engine"
	"github.com/arloliu/otelme/cmd/telme-sim/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := newConfig()

	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, "checkout", cfg.Scenario)
	assert.Equal(t, "telme-sim", cfg.ServiceName)
	assert.Equal(t, "otlp", cfg.Exporter)
	require.NotNil(t, cfg.Insecure)
	assert.True(t, cfg.IsInsecure())
	assert.False(t, cfg.UseHTTP)
	assert.Empty(t, cfg.ScenarioFile)
	assert.False(t, cfg.EnableLogs)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, 1024, cfg.CounterCapacity)
	assert.Equal(t, 10, cfg.Count)
	assert.Equal(t, time.Minute, cfg.Duration)
	assert.InDelta(t, 1.0, cfg.Rate, 1e-9)
	assert.Equal(t, 20, cfg.Jitter)
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	cfg := newConfig()

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")
	t.Setenv("OTEL_SERVICE_NAME", "test-app")
	t.Setenv("OTELME_COUNTER_CAPACITY", "64")
	t.Setenv("TELME_SIM_EXPORTER", "console")
	cfg.applyEnvOverrides()

	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.False(t, cfg.IsInsecure())
	assert.Equal(t, "test-app", cfg.ServiceName)
	assert.Equal(t, 64, cfg.CounterCapacity)
	assert.Equal(t, "console", cfg.Exporter)
}

func TestConfig_IsInsecure_NilPointer(t *testing.T) {
	cfg := &Config{Insecure: nil}
	assert.True(t, cfg.IsInsecure())
}

func TestConfig_Telemetry(t *testing.T) {
	cfg := newConfig()
	cfg.UseHTTP = true
	cfg.EnableLogs = true
	cfg.CounterCapacity = 32

	tc := cfg.telemetry()
	assert.True(t, tc.IsEnabled())
	assert.Equal(t, "telme-sim", tc.ServiceName)
	assert.Equal(t, "http/protobuf", tc.OTLP.Protocol)
	assert.True(t, tc.OTLP.IsInsecure())
	assert.True(t, tc.Traces.IsEnabled())
	assert.False(t, tc.Metrics.IsEnabled())
	assert.True(t, tc.Logs.IsEnabled())
	assert.Equal(t, 32, tc.Counters.GetCapacity())

	cfg.EnableLogs = false
	assert.True(t, tc.Logs.IsEnabled(), "telemetry config must not alias the CLI config")
}

func TestStartSession_NopExporter(t *testing.T) {
	t.Cleanup(func() {
		otelme.InitTracing(nil, nil)
		otelme.InitCounters(nil)
	})

	cfg := newConfig()
	cfg.Exporter = "none"
	cfg.EnableLogs = true
	cfg.EnableMetrics = true
	cfg.CounterCapacity = 8

	sess, err := startSession(context.Background(), cfg, clockz.RealClock, 0, false)
	require.NoError(t, err)
	defer sess.close()

	require.NotNil(t, sess.tel.TracerProvider)
	require.NotNil(t, sess.tel.LoggerProvider)
	assert.Equal(t, 8, sess.tel.Counter.Store().Cap())
	assert.Same(t, sess.tel.Counter, otelme.DefaultCounter())

	s, _ := scenario.Get("checkout")
	require.NoError(t, sess.eng.GenerateTrace(context.Background(), s))
	assert.Equal(t, int64(s.SpanCount()), sess.eng.Stats().Spans)
}

func TestLoadScenario(t *testing.T) {
	cfg := newConfig()
	s, err := loadScenario(cfg)
	require.NoError(t, err)
	assert.Equal(t, "checkout", s.Name)

	cfg.Scenario = "nope"
	_, err = loadScenario(cfg)
	require.ErrorContains(t, err, "unknown scenario: nope")
}

func TestRunLoop(t *testing.T) {
	eng := engine.New(engine.Config{})
	s, _ := scenario.Get("health-check")

	n := runLoop(context.Background(), eng, s, clockz.RealClock, 100*time.Millisecond, 50)
	assert.Positive(t, n)
	assert.Equal(t, int64(n), eng.Stats().Traces)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, runLoop(ctx, eng, s, clockz.RealClock, time.Second, 1))
}
