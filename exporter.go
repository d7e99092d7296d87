package otelme

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type signal int

const (
	signalTraces signal = iota
	signalMetrics
	signalLogs
)

// exporterParams is the effective exporter setup for one signal.
type exporterParams struct {
	Type        string // "otlp", "console", "nop"
	HTTP        bool
	Endpoint    string
	Headers     map[string]string
	Timeout     time.Duration
	Compression string
	Insecure    bool
}

// resolveExporterParams merges the shared OTLP settings with the
// signal-specific exporter type and endpoint override.
func resolveExporterParams(cfg *TelemetryConfig, sig signal) exporterParams {
	p := exporterParams{
		Type:     "otlp",
		Endpoint: "localhost:4317",
		Timeout:  10 * time.Second,
		Insecure: true,
	}
	if cfg == nil {
		return p
	}

	if o := cfg.OTLP; o != nil {
		if o.Endpoint != "" {
			p.Endpoint = o.Endpoint
		}
		p.HTTP = o.Protocol == "http/protobuf" || o.Protocol == "http"
		if o.Timeout > 0 {
			p.Timeout = normalizeDuration(o.Timeout)
		}
		p.Headers = o.Headers
		p.Compression = o.Compression
		p.Insecure = o.IsInsecure()
	}

	var exporter, endpoint string
	switch sig {
	case signalTraces:
		if cfg.Traces != nil {
			exporter, endpoint = cfg.Traces.Exporter, cfg.Traces.Endpoint
		}
	case signalMetrics:
		if cfg.Metrics != nil {
			exporter, endpoint = cfg.Metrics.Exporter, cfg.Metrics.Endpoint
		}
	case signalLogs:
		if cfg.Logs != nil {
			exporter, endpoint = cfg.Logs.Exporter, cfg.Logs.Endpoint
		}
	}
	p.Type = normalizeExporterType(exporter)
	if endpoint != "" {
		p.Endpoint = endpoint
	}

	return p
}

// otlpOptionSet names the option constructors of one OTLP exporter package.
// endpointURL is nil for gRPC exporters.
type otlpOptionSet[T any] struct {
	endpoint    func(string) T
	endpointURL func(string) T
	headers     func(map[string]string) T
	timeout     func(time.Duration) T
	insecure    func() T
	gzip        func() T
}

func (s otlpOptionSet[T]) build(p exporterParams) []T {
	var opts []T
	if s.endpointURL != nil && isHTTPURL(p.Endpoint) {
		opts = append(opts, s.endpointURL(p.Endpoint))
	} else {
		opts = append(opts, s.endpoint(p.Endpoint))
	}
	if len(p.Headers) > 0 {
		opts = append(opts, s.headers(p.Headers))
	}
	if p.Timeout > 0 {
		opts = append(opts, s.timeout(p.Timeout))
	}
	if p.Insecure {
		opts = append(opts, s.insecure())
	}
	if p.Compression == "gzip" {
		opts = append(opts, s.gzip())
	}

	return opts
}

func buildTraceExporter(ctx context.Context, cfg *TelemetryConfig) (sdktrace.SpanExporter, error) {
	p := resolveExporterParams(cfg, signalTraces)
	switch p.Type {
	case "console":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "nop":
		return nopSpanExporter{}, nil
	case "otlp":
	default:
		return nil, unsupportedExporter(p.Type)
	}

	if p.HTTP {
		opts := otlpOptionSet[otlptracehttp.Option]{
			endpoint:    otlptracehttp.WithEndpoint,
			endpointURL: otlptracehttp.WithEndpointURL,
			headers:     otlptracehttp.WithHeaders,
			timeout:     otlptracehttp.WithTimeout,
			insecure:    otlptracehttp.WithInsecure,
			gzip:        func() otlptracehttp.Option { return otlptracehttp.WithCompression(otlptracehttp.GzipCompression) },
		}.build(p)

		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	}

	opts := otlpOptionSet[otlptracegrpc.Option]{
		endpoint: otlptracegrpc.WithEndpoint,
		headers:  otlptracegrpc.WithHeaders,
		timeout:  otlptracegrpc.WithTimeout,
		insecure: otlptracegrpc.WithInsecure,
		gzip:     func() otlptracegrpc.Option { return otlptracegrpc.WithCompressor("gzip") },
	}.build(p)

	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

func buildMetricExporter(ctx context.Context, cfg *TelemetryConfig) (sdkmetric.Exporter, error) {
	p := resolveExporterParams(cfg, signalMetrics)
	switch p.Type {
	case "console":
		return stdoutmetric.New(stdoutmetric.WithPrettyPrint())
	case "nop":
		return nopMetricExporter{}, nil
	case "otlp":
	default:
		return nil, unsupportedExporter(p.Type)
	}

	if p.HTTP {
		return otlpmetrichttp.New(ctx, otlpOptionSet[otlpmetrichttp.Option]{
			endpoint:    otlpmetrichttp.WithEndpoint,
			endpointURL: otlpmetrichttp.WithEndpointURL,
			headers:     otlpmetrichttp.WithHeaders,
			timeout:     otlpmetrichttp.WithTimeout,
			insecure:    otlpmetrichttp.WithInsecure,
			gzip:        func() otlpmetrichttp.Option { return otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression) },
		}.build(p)...)
	}

	return otlpmetricgrpc.New(ctx, otlpOptionSet[otlpmetricgrpc.Option]{
		endpoint: otlpmetricgrpc.WithEndpoint,
		headers:  otlpmetricgrpc.WithHeaders,
		timeout:  otlpmetricgrpc.WithTimeout,
		insecure: otlpmetricgrpc.WithInsecure,
		gzip:     func() otlpmetricgrpc.Option { return otlpmetricgrpc.WithCompressor("gzip") },
	}.build(p)...)
}

func buildLogExporter(ctx context.Context, cfg *TelemetryConfig) (sdklog.Exporter, error) {
	p := resolveExporterParams(cfg, signalLogs)
	switch p.Type {
	case "console":
		return stdoutlog.New(stdoutlog.WithPrettyPrint())
	case "nop":
		return nopLogExporter{}, nil
	case "otlp":
	default:
		return nil, unsupportedExporter(p.Type)
	}

	if p.HTTP {
		return otlploghttp.New(ctx, otlpOptionSet[otlploghttp.Option]{
			endpoint:    otlploghttp.WithEndpoint,
			endpointURL: otlploghttp.WithEndpointURL,
			headers:     otlploghttp.WithHeaders,
			timeout:     otlploghttp.WithTimeout,
			insecure:    otlploghttp.WithInsecure,
			gzip:        func() otlploghttp.Option { return otlploghttp.WithCompression(otlploghttp.GzipCompression) },
		}.build(p)...)
	}

	return otlploggrpc.New(ctx, otlpOptionSet[otlploggrpc.Option]{
		endpoint: otlploggrpc.WithEndpoint,
		headers:  otlploggrpc.WithHeaders,
		timeout:  otlploggrpc.WithTimeout,
		insecure: otlploggrpc.WithInsecure,
		gzip:     func() otlploggrpc.Option { return otlploggrpc.WithCompressor("gzip") },
	}.build(p)...)
}

type nopSpanExporter struct{}

func (nopSpanExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (nopSpanExporter) Shutdown(context.Context) error                             { return nil }

type nopLogExporter struct{}

func (nopLogExporter) Export(context.Context, []sdklog.Record) error { return nil }
func (nopLogExporter) Shutdown(context.Context) error                { return nil }
func (nopLogExporter) ForceFlush(context.Context) error              { return nil }

type nopMetricExporter struct{}

func (nopMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }
func (nopMetricExporter) ForceFlush(context.Context) error                          { return nil }
func (nopMetricExporter) Shutdown(context.Context) error                            { return nil }

func (nopMetricExporter) Temporality(k sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(k)
}

func (nopMetricExporter) Aggregation(k sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(k)
}

func normalizeExporterType(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "":
		return "otlp"
	case "stdout":
		return "console"
	case "none", "noop":
		return "nop"
	default:
		return v
	}
}

// normalizeDuration reads sub-millisecond values as milliseconds, since the
// OTel env vars carry plain integers in milliseconds.
func normalizeDuration(value time.Duration) time.Duration {
	if value > 0 && value < time.Millisecond {
		//nolint:durationcheck // numeric env values are milliseconds
		return value * time.Millisecond
	}

	return value
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

// unsupportedExporter is returned for exporter types no builder knows.
func unsupportedExporter(kind string) error {
	return fmt.Errorf("otelme: unsupported exporter %q", kind)
}
