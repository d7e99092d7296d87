package otelme

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/otelme/recent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	// ErrDisabled is returned when telemetry, or tracing, is disabled.
	ErrDisabled = errors.New("otelme: telemetry is disabled")

	// ErrLogsDisabled is returned by NewLoggerProvider when log export is off.
	ErrLogsDisabled = errors.New("otelme: logs export is disabled")

	// ErrMetricsDisabled is returned by NewMeterProvider when metrics are off.
	ErrMetricsDisabled = errors.New("otelme: metrics export is disabled")

	// ErrServiceNameRequired is returned when telemetry is enabled without
	// a service name.
	ErrServiceNameRequired = errors.New("otelme: service name is required")
)

// NewTracerProvider builds a batching TracerProvider from cfg and installs
// it, together with the configured propagator, as the OTel global.
func NewTracerProvider(ctx context.Context, cfg *TelemetryConfig) (*sdktrace.TracerProvider, error) {
	if !cfg.IsEnabled() || !cfg.Traces.IsEnabled() {
		return nil, ErrDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var sampling *SamplingConfig
	if cfg.Traces != nil {
		sampling = cfg.Traces.Sampling
	}

	exporter, err := buildTraceExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(buildSampler(sampling)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(buildPropagator(cfg.Propagation))

	return tp, nil
}

// NewMeterProvider builds a MeterProvider with a periodic reader and
// installs it as the OTel global. Metrics are opt-in.
func NewMeterProvider(ctx context.Context, cfg *TelemetryConfig) (*sdkmetric.MeterProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if !cfg.Metrics.IsEnabled() {
		return nil, ErrMetricsDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := buildMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(metricInterval(cfg.Metrics.Interval)),
		)),
	)
	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewLoggerProvider builds a batching LoggerProvider and installs it as the
// OTel global. Logs are opt-in.
func NewLoggerProvider(ctx context.Context, cfg *TelemetryConfig) (*sdklog.LoggerProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if !cfg.Logs.IsEnabled() {
		return nil, ErrLogsDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := buildLogExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build log exporter: %w", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp)

	return lp, nil
}

// Telemetry is the set of providers and the Counter built by Setup.
// Providers that are disabled by configuration are nil.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Counter        *Counter
}

// Setup builds every enabled provider from cfg, installs the tracer and a
// Counter sized by cfg.Counters as the process-wide defaults and returns
// them. With telemetry disabled it still installs the Counter, so span
// counters work against whatever global TracerProvider is present.
//
//	tel, err := otelme.Setup(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
func Setup(ctx context.Context, cfg *TelemetryConfig) (*Telemetry, error) {
	tel := &Telemetry{}

	if cfg.IsEnabled() {
		var err error
		if cfg.Traces.IsEnabled() {
			if tel.TracerProvider, err = NewTracerProvider(ctx, cfg); err != nil {
				return nil, fmt.Errorf("setup traces: %w", err)
			}
		}
		if cfg.Metrics.IsEnabled() {
			if tel.MeterProvider, err = NewMeterProvider(ctx, cfg); err != nil {
				return nil, errors.Join(fmt.Errorf("setup metrics: %w", err), tel.Shutdown(ctx))
			}
		}
		if cfg.Logs.IsEnabled() {
			if tel.LoggerProvider, err = NewLoggerProvider(ctx, cfg); err != nil {
				return nil, errors.Join(fmt.Errorf("setup logs: %w", err), tel.Shutdown(ctx))
			}
		}
	}

	store, err := recent.New[string, Number](cfg.Counters.GetCapacity())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("setup counters: %w", err), tel.Shutdown(ctx))
	}

	var opts []CounterOption
	if tel.MeterProvider != nil && cfg.Counters.MetricsEnabled() {
		opts = append(opts, WithMeterProvider(tel.MeterProvider))
	}
	if tel.LoggerProvider != nil {
		opts = append(opts, WithLoggerProvider(tel.LoggerProvider))
	}
	tel.Counter = NewCounter(store, opts...)

	if tel.TracerProvider != nil {
		InitTracing(tel.TracerProvider.Tracer(cfg.ServiceName), DefaultNamer{})
	}
	InitCounters(tel.Counter)

	return tel, nil
}

// Shutdown flushes and stops every provider in t. Errors from all
// providers are joined.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	if t.LoggerProvider != nil {
		if err := t.LoggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown logger provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

func buildResource(ctx context.Context, cfg *TelemetryConfig) (*resource.Resource, error) {
	if cfg.ServiceName == "" {
		return nil, ErrServiceNameRequired
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	for k, v := range cfg.ResourceAttributes {
		if k != "" {
			attrs = append(attrs, attribute.String(k, v))
		}
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	return res, nil
}

const defaultMetricInterval = 60 * time.Second

func metricInterval(v time.Duration) time.Duration {
	if v <= 0 {
		return defaultMetricInterval
	}

	return normalizeDuration(v)
}

func buildSampler(cfg *SamplingConfig) sdktrace.Sampler {
	if cfg == nil {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}

	switch cfg.Sampler {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(cfg.SamplerArg)
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerArg))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}
