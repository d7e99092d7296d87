//revive:disable:line-length-limit
package otelme

import (
	"slices"
	"strings"
	"time"
)

// TelemetryConfig configures otelme and the OpenTelemetry SDK behind it.
// Environment variable names follow the OTel specification:
// https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
type TelemetryConfig struct {
	// Enabled controls whether telemetry is exported at all.
	Enabled *bool `yaml:"enabled" default:"false" env:"OTELME_ENABLED"`

	// ServiceName identifies the service. Maps to OTEL_SERVICE_NAME.
	ServiceName string `yaml:"serviceName" env:"OTEL_SERVICE_NAME" validate:"required_if=Enabled true"`

	// Version is recorded as the service.version resource attribute.
	Version string `yaml:"version" env:"OTEL_SERVICE_VERSION"`

	// Environment is recorded as the deployment.environment resource attribute.
	Environment string `yaml:"environment" env:"OTEL_DEPLOYMENT_ENVIRONMENT" default:"development"`

	// ResourceAttributes adds resource attributes.
	// Maps to OTEL_RESOURCE_ATTRIBUTES (comma-separated key=value pairs).
	ResourceAttributes map[string]string `yaml:"resourceAttributes,omitempty" env:"OTEL_RESOURCE_ATTRIBUTES"`

	// OTLP holds exporter settings shared by traces, metrics and logs.
	OTLP *OTLPConfig `yaml:"otlp,omitempty"`

	// Traces configures the tracer provider.
	Traces *TracesConfig `yaml:"traces,omitempty"`

	// Metrics configures the meter provider.
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`

	// Logs configures the logger provider (OTel log bridge).
	Logs *LogsConfig `yaml:"logs,omitempty"`

	// Propagation configures context propagation. Maps to OTEL_PROPAGATORS.
	Propagation *PropConfig `yaml:"propagation,omitempty"`

	// Counters configures the per-span counter store.
	Counters *CountersConfig `yaml:"counters,omitempty"`
}

// OTLPConfig holds OTLP exporter settings.
type OTLPConfig struct {
	// Endpoint is the collector endpoint. Maps to OTEL_EXPORTER_OTLP_ENDPOINT.
	//   - gRPC: "host:port", without scheme.
	//   - HTTP: full URL, e.g. "http://localhost:4318".
	Endpoint string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`

	// Insecure disables TLS. Maps to OTEL_EXPORTER_OTLP_INSECURE.
	Insecure *bool `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`

	// Headers are sent with every export request.
	// Maps to OTEL_EXPORTER_OTLP_HEADERS. May contain credentials; do not log.
	Headers map[string]string `yaml:"headers,omitempty" env:"OTEL_EXPORTER_OTLP_HEADERS"`

	// Protocol is "grpc", "http/protobuf" or "http".
	// Maps to OTEL_EXPORTER_OTLP_PROTOCOL.
	Protocol string `yaml:"protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc" validate:"oneof=grpc http/protobuf http"`

	// Timeout bounds each export. Maps to OTEL_EXPORTER_OTLP_TIMEOUT.
	Timeout time.Duration `yaml:"timeout" env:"OTEL_EXPORTER_OTLP_TIMEOUT" default:"10s" validate:"gte=0"`

	// Compression is "gzip" or "none". Maps to OTEL_EXPORTER_OTLP_COMPRESSION.
	Compression string `yaml:"compression,omitempty" env:"OTEL_EXPORTER_OTLP_COMPRESSION" validate:"omitempty,oneof=gzip none"`
}

// IsInsecure reports whether TLS is disabled. Defaults to true.
func (c *OTLPConfig) IsInsecure() bool {
	return c == nil || c.Insecure == nil || *c.Insecure
}

// TracesConfig configures tracing.
type TracesConfig struct {
	// Enabled defaults to true when telemetry is enabled.
	Enabled *bool `yaml:"enabled" default:"true"`

	// Exporter is "otlp", "console", "stdout" or "none".
	// Maps to OTEL_TRACES_EXPORTER.
	Exporter string `yaml:"exporter" env:"OTEL_TRACES_EXPORTER" default:"otlp" validate:"oneof=otlp console stdout none"`

	// Endpoint overrides OTLP.Endpoint for traces.
	// Maps to OTEL_EXPORTER_OTLP_TRACES_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`

	// Sampling configures the sampler.
	Sampling *SamplingConfig `yaml:"sampling,omitempty"`
}

// IsEnabled reports whether tracing is enabled. Defaults to true.
func (c *TracesConfig) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// MetricsConfig configures metrics. Metrics are opt-in.
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled" default:"false"`

	// Exporter is "otlp", "console", "stdout" or "none".
	// Maps to OTEL_METRICS_EXPORTER.
	Exporter string `yaml:"exporter" env:"OTEL_METRICS_EXPORTER" default:"otlp" validate:"oneof=otlp console stdout none"`

	// Endpoint overrides OTLP.Endpoint for metrics.
	// Maps to OTEL_EXPORTER_OTLP_METRICS_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"`

	// Interval is the periodic reader export interval.
	// Maps to OTEL_METRIC_EXPORT_INTERVAL (milliseconds if numeric).
	Interval time.Duration `yaml:"interval,omitempty" env:"OTEL_METRIC_EXPORT_INTERVAL" default:"60s" validate:"omitempty,gt=0"`
}

// IsEnabled reports whether metrics are enabled. Defaults to false.
func (c *MetricsConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// LogsConfig configures OTel log export. Logs are opt-in.
type LogsConfig struct {
	Enabled *bool `yaml:"enabled" default:"false"`

	// Exporter is "otlp", "console", "stdout" or "none".
	// Maps to OTEL_LOGS_EXPORTER.
	Exporter string `yaml:"exporter" env:"OTEL_LOGS_EXPORTER" default:"otlp" validate:"oneof=otlp console stdout none"`

	// Endpoint overrides OTLP.Endpoint for logs.
	// Maps to OTEL_EXPORTER_OTLP_LOGS_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"`
}

// IsEnabled reports whether log export is enabled. Defaults to false.
func (c *LogsConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// SamplingConfig configures the trace sampler.
type SamplingConfig struct {
	// Sampler is one of "always_on", "always_off", "traceidratio",
	// "parentbased_always_on", "parentbased_always_off",
	// "parentbased_traceidratio". Maps to OTEL_TRACES_SAMPLER.
	Sampler string `yaml:"sampler" env:"OTEL_TRACES_SAMPLER" default:"parentbased_always_on" validate:"oneof=always_on always_off traceidratio parentbased_always_on parentbased_always_off parentbased_traceidratio"`

	// SamplerArg is the ratio for ratio-based samplers, 0.0 to 1.0.
	// Maps to OTEL_TRACES_SAMPLER_ARG.
	SamplerArg float64 `yaml:"samplerArg" env:"OTEL_TRACES_SAMPLER_ARG" default:"1.0" validate:"gte=0,lte=1"`
}

// PropConfig configures context propagation.
type PropConfig struct {
	// Propagators is a comma-separated list. Maps to OTEL_PROPAGATORS.
	// Supported: "tracecontext", "baggage", "none".
	Propagators string `yaml:"propagators" env:"OTEL_PROPAGATORS" default:"tracecontext,baggage"`
}

// HasTraceContext reports whether the tracecontext propagator is enabled.
func (c *PropConfig) HasTraceContext() bool {
	return c.has("tracecontext")
}

// HasBaggage reports whether the baggage propagator is enabled.
func (c *PropConfig) HasBaggage() bool {
	return c.has("baggage")
}

func (c *PropConfig) has(name string) bool {
	if c == nil || c.Propagators == "" {
		return true
	}

	return slices.Contains(splitList(c.Propagators), name)
}

// CountersConfig configures the per-span counter store.
type CountersConfig struct {
	// Capacity is the maximum number of (span, counter) totals kept before
	// the least recently used one is dropped.
	Capacity int `yaml:"capacity" env:"OTELME_COUNTER_CAPACITY" default:"1024" validate:"gt=0"`

	// Metrics reports counter store evictions and size when a meter
	// provider is configured.
	Metrics *bool `yaml:"metrics" env:"OTELME_COUNTER_METRICS" default:"true"`
}

// GetCapacity returns the configured capacity or DefaultCounterCapacity.
func (c *CountersConfig) GetCapacity() int {
	if c == nil || c.Capacity <= 0 {
		return DefaultCounterCapacity
	}

	return c.Capacity
}

// MetricsEnabled reports whether counter store metrics are wanted.
func (c *CountersConfig) MetricsEnabled() bool {
	return c == nil || c.Metrics == nil || *c.Metrics
}

// IsEnabled reports whether telemetry is enabled. Defaults to false.
func (c *TelemetryConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(list string) []string {
	var out []string
	for p := range strings.SplitSeq(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func boolPtr(v bool) *bool { return &v }
