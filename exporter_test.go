package otelme

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opt struct {
	kind string
	val  string
}

func recordingOptions(withURL bool) otlpOptionSet[opt] {
	s := otlpOptionSet[opt]{
		endpoint: func(v string) opt { return opt{kind: "endpoint", val: v} },
		headers:  func(map[string]string) opt { return opt{kind: "headers"} },
		timeout:  func(d time.Duration) opt { return opt{kind: "timeout", val: d.String()} },
		insecure: func() opt { return opt{kind: "insecure"} },
		gzip:     func() opt { return opt{kind: "gzip"} },
	}
	if withURL {
		s.endpointURL = func(v string) opt { return opt{kind: "endpointURL", val: v} }
	}

	return s
}

func kinds(opts []opt) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.kind)
	}

	return out
}

func TestNormalizeExporterType(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "", want: "otlp"},
		{input: "stdout", want: "console"},
		{input: "noop", want: "nop"},
		{input: "none", want: "nop"},
		{input: " OTLP ", want: "otlp"},
		{input: "console", want: "console"},
	}

	for _, tt := range cases {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeExporterType(tt.input))
		})
	}
}

func TestOTLPOptionSet(t *testing.T) {
	p := exporterParams{
		Endpoint:    "http://localhost:4318",
		Headers:     map[string]string{"k": "v"},
		Timeout:     5 * time.Second,
		Insecure:    true,
		Compression: "gzip",
	}

	opts := recordingOptions(true).build(p)
	assert.Equal(t, []string{"endpointURL", "headers", "timeout", "insecure", "gzip"}, kinds(opts))
	assert.Equal(t, "http://localhost:4318", opts[0].val)

	p.Endpoint = "localhost:4317"
	opts = recordingOptions(true).build(p)
	assert.Equal(t, "endpoint", opts[0].kind)

	p.Endpoint = "http://localhost:4318"
	opts = recordingOptions(false).build(p)
	assert.Equal(t, "endpoint", opts[0].kind, "grpc exporters take the endpoint as is")

	opts = recordingOptions(false).build(exporterParams{Endpoint: "collector:4317"})
	assert.Equal(t, []string{"endpoint"}, kinds(opts))
}

func TestResolveExporterParams(t *testing.T) {
	p := resolveExporterParams(nil, signalTraces)
	assert.Equal(t, "otlp", p.Type)
	assert.Equal(t, "localhost:4317", p.Endpoint)
	assert.True(t, p.Insecure)

	cfg := &TelemetryConfig{
		OTLP: &OTLPConfig{
			Endpoint: "http://collector:4318",
			Protocol: "http/protobuf",
			Insecure: boolPtr(false),
			Timeout:  250,
		},
		Traces:  &TracesConfig{Exporter: "stdout"},
		Metrics: &MetricsConfig{Endpoint: "http://metrics:4318"},
		Logs:    &LogsConfig{Exporter: "none"},
	}

	traces := resolveExporterParams(cfg, signalTraces)
	assert.Equal(t, "console", traces.Type)
	assert.True(t, traces.HTTP)
	assert.False(t, traces.Insecure)
	assert.Equal(t, 250*time.Millisecond, traces.Timeout)
	assert.Equal(t, "http://collector:4318", traces.Endpoint)

	metrics := resolveExporterParams(cfg, signalMetrics)
	assert.Equal(t, "otlp", metrics.Type)
	assert.Equal(t, "http://metrics:4318", metrics.Endpoint)

	assert.Equal(t, "nop", resolveExporterParams(cfg, signalLogs).Type)
}

func TestBuildExporters_Nop(t *testing.T) {
	cfg := &TelemetryConfig{
		Traces:  &TracesConfig{Exporter: "none"},
		Metrics: &MetricsConfig{Exporter: "none"},
		Logs:    &LogsConfig{Exporter: "none"},
	}
	ctx := context.Background()

	te, err := buildTraceExporter(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, nopSpanExporter{}, te)

	me, err := buildMetricExporter(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, nopMetricExporter{}, me)

	le, err := buildLogExporter(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, nopLogExporter{}, le)
}

func TestBuildExporters_Unsupported(t *testing.T) {
	cfg := &TelemetryConfig{
		Metrics: &MetricsConfig{Exporter: "prometheus"},
		Logs:    &LogsConfig{Exporter: "syslog"},
	}

	_, err := buildMetricExporter(context.Background(), cfg)
	require.ErrorContains(t, err, `"prometheus"`)
	_, err = buildLogExporter(context.Background(), cfg)
	require.ErrorContains(t, err, `"syslog"`)
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, isHTTPURL("http://localhost:4318"))
	assert.True(t, isHTTPURL("HTTPS://collector"))
	assert.False(t, isHTTPURL("localhost:4317"))
	assert.False(t, isHTTPURL("://bad"))
}
