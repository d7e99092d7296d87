package otelme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEnabled(t *testing.T) {
	assert.False(t, (*TelemetryConfig)(nil).IsEnabled())
	assert.False(t, (&TelemetryConfig{}).IsEnabled())
	assert.True(t, (&TelemetryConfig{Enabled: boolPtr(true)}).IsEnabled())

	assert.True(t, (*TracesConfig)(nil).IsEnabled())
	assert.False(t, (&TracesConfig{Enabled: boolPtr(false)}).IsEnabled())
	assert.False(t, (*MetricsConfig)(nil).IsEnabled())
	assert.False(t, (*LogsConfig)(nil).IsEnabled())
}

func TestCountersConfig(t *testing.T) {
	assert.Equal(t, DefaultCounterCapacity, (*CountersConfig)(nil).GetCapacity())
	assert.Equal(t, DefaultCounterCapacity, (&CountersConfig{}).GetCapacity())
	assert.Equal(t, 16, (&CountersConfig{Capacity: 16}).GetCapacity())

	assert.True(t, (*CountersConfig)(nil).MetricsEnabled())
	assert.False(t, (&CountersConfig{Metrics: boolPtr(false)}).MetricsEnabled())
}

func TestPropConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *PropConfig
		context bool
		baggage bool
	}{
		{name: "nil", cfg: nil, context: true, baggage: true},
		{name: "empty", cfg: &PropConfig{}, context: true, baggage: true},
		{name: "tracecontext only", cfg: &PropConfig{Propagators: "tracecontext"}, context: true},
		{name: "spaces", cfg: &PropConfig{Propagators: " baggage , tracecontext "}, context: true, baggage: true},
		{name: "none", cfg: &PropConfig{Propagators: "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.context, tt.cfg.HasTraceContext())
			assert.Equal(t, tt.baggage, tt.cfg.HasBaggage())
		})
	}
}
