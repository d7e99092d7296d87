package main

import (
	"flag"
	"time"

	"github.com/arloliu/fuda"
	"github.com/arloliu/otelme"
)

// Config holds all CLI configuration.
// Uses fuda struct tags for defaults and env var binding.
type Config struct {
	// Connection settings
	Endpoint    string `yaml:"endpoint" default:"localhost:4317" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	UseHTTP     bool   `yaml:"http" default:"false"`
	Insecure    *bool  `yaml:"insecure" default:"true" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	Exporter    string `yaml:"exporter" default:"otlp" env:"TELME_SIM_EXPORTER"`
	ServiceName string `yaml:"serviceName" default:"telme-sim" env:"OTEL_SERVICE_NAME"`

	// Scenario settings
	Scenario     string `yaml:"scenario" default:"checkout"`
	ScenarioFile string `yaml:"scenarioFile"`

	// Signals
	EnableLogs    bool `yaml:"logs" default:"false"`
	EnableMetrics bool `yaml:"metrics" default:"false"`

	// Span counters
	CounterCapacity int `yaml:"counterCapacity" default:"1024" env:"OTELME_COUNTER_CAPACITY"`

	// Quick mode
	Count int `yaml:"count" default:"10"`

	// Continuous mode
	Duration time.Duration `yaml:"duration" default:"1m"`
	Rate     float64       `yaml:"rate" default:"1"`
	Jitter   int           `yaml:"jitter" default:"20"`
}

// IsInsecure returns the insecure value, defaulting to true if nil.
func (c *Config) IsInsecure() bool {
	if c.Insecure == nil {
		return true
	}

	return *c.Insecure
}

func newConfig() *Config {
	cfg := &Config{}
	_ = fuda.SetDefaults(cfg)

	return cfg
}

func (c *Config) bindCommonFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "OTLP endpoint")
	fs.BoolVar(&c.UseHTTP, "http", c.UseHTTP, "Use HTTP instead of gRPC")
	fs.Func("insecure", "Skip TLS verification (default: true)", func(s string) error {
		val := s == "true" || s == "1"
		c.Insecure = &val

		return nil
	})
	fs.StringVar(&c.Exporter, "exporter", c.Exporter, "Exporter: otlp, console or none")
	fs.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	fs.StringVar(&c.Scenario, "scenario", c.Scenario, "Scenario name")
	fs.StringVar(&c.ScenarioFile, "scenario-file", c.ScenarioFile, "Custom YAML scenario file")
	fs.BoolVar(&c.EnableLogs, "logs", c.EnableLogs, "Enable log generation")
	fs.BoolVar(&c.EnableMetrics, "metrics", c.EnableMetrics, "Export span counter metrics")
	fs.IntVar(&c.CounterCapacity, "counter-capacity", c.CounterCapacity, "Span counter store capacity")
}

func (c *Config) applyEnvOverrides() {
	_ = fuda.LoadEnv(c)
}

// telemetry translates the CLI settings into an otelme configuration.
func (c *Config) telemetry() *otelme.TelemetryConfig {
	enabled := true
	protocol := "grpc"
	if c.UseHTTP {
		protocol = "http/protobuf"
	}
	insecure := c.IsInsecure()
	metrics, logs := c.EnableMetrics, c.EnableLogs

	return &otelme.TelemetryConfig{
		Enabled:     &enabled,
		ServiceName: c.ServiceName,
		Environment: "simulation",
		OTLP: &otelme.OTLPConfig{
			Endpoint: c.Endpoint,
			Insecure: &insecure,
			Protocol: protocol,
			Timeout:  10 * time.Second,
		},
		Traces: &otelme.TracesConfig{
			Enabled:  &enabled,
			Exporter: c.Exporter,
		},
		Metrics: &otelme.MetricsConfig{
			Enabled:  &metrics,
			Exporter: c.Exporter,
			Interval: 10 * time.Second,
		},
		Logs: &otelme.LogsConfig{
			Enabled:  &logs,
			Exporter: c.Exporter,
		},
		Counters: &otelme.CountersConfig{
			Capacity: c.CounterCapacity,
		},
	}
}
