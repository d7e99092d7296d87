// Package scenario defines the span trees replayed by telme-sim.
package scenario

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Scenario is a named span tree.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	RootSpan    SpanTemplate `yaml:"rootSpan"`
}

// SpanTemplate describes one span, the annotations made inside it and its
// children.
type SpanTemplate struct {
	Name       string            `yaml:"name"`
	Kind       SpanKind          `yaml:"kind"`
	Duration   Duration          `yaml:"duration"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Counters   []CounterTemplate `yaml:"counters,omitempty"`
	Events     []EventTemplate   `yaml:"events,omitempty"`
	Logs       []LogTemplate     `yaml:"logs,omitempty"`
	Children   []SpanTemplate    `yaml:"children,omitempty"`

	ErrorRate   float64 `yaml:"errorRate,omitempty"`   // 0.0-1.0
	ErrorStatus string  `yaml:"errorStatus,omitempty"` // error message when triggered
}

// CounterTemplate bumps span counter Name by Amount, Times times.
// Fractional amounts make a float counter.
type CounterTemplate struct {
	Name   string  `yaml:"name"`
	Amount float64 `yaml:"amount"`
	Times  int     `yaml:"times,omitempty"`
}

// Repeat returns how often the counter is bumped; at least once.
func (c CounterTemplate) Repeat() int {
	return max(c.Times, 1)
}

// EventTemplate adds span event Name.
type EventTemplate struct {
	Name       string            `yaml:"name"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// LogTemplate emits a log record correlated with the span.
type LogTemplate struct {
	Level      string            `yaml:"level"` // DEBUG, INFO, WARN, ERROR
	Message    string            `yaml:"message"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// SpanKind is the span kind as written in scenario files.
type SpanKind string

const (
	SpanKindServer   SpanKind = "SERVER"
	SpanKindClient   SpanKind = "CLIENT"
	SpanKindProducer SpanKind = "PRODUCER"
	SpanKindConsumer SpanKind = "CONSUMER"
	SpanKindInternal SpanKind = "INTERNAL"
)

var knownKinds = []SpanKind{"", SpanKindServer, SpanKindClient, SpanKindProducer, SpanKindConsumer, SpanKindInternal}

// Duration is a time.Duration written as a string ("150ms") in YAML.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)

	return nil
}

// AsDuration converts d to a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// ErrInvalid wraps every scenario validation failure.
var ErrInvalid = errors.New("invalid scenario")

// Validate checks the whole span tree and reports every problem found.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, fmt.Errorf("%w: name is required", ErrInvalid))
	}
	s.RootSpan.validate("rootSpan", &errs)

	return errors.Join(errs...)
}

func (t *SpanTemplate) validate(path string, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, fmt.Errorf("%w: %s: %s", ErrInvalid, path, fmt.Sprintf(format, args...)))
	}

	if t.Name == "" {
		fail("span name is required")
	}
	if !slices.Contains(knownKinds, t.Kind) {
		fail("unknown kind %q", t.Kind)
	}
	if t.Duration < 0 {
		fail("negative duration")
	}
	if t.ErrorRate < 0 || t.ErrorRate > 1 {
		fail("errorRate %v out of [0, 1]", t.ErrorRate)
	}
	for i, c := range t.Counters {
		if c.Name == "" {
			fail("counters[%d]: name is required", i)
		}
		if c.Times < 0 {
			fail("counters[%d]: negative times", i)
		}
	}
	for i, e := range t.Events {
		if e.Name == "" {
			fail("events[%d]: name is required", i)
		}
	}
	for i := range t.Children {
		t.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i), errs)
	}
}

// SpanCount returns the number of spans one replay of s produces.
func (s *Scenario) SpanCount() int {
	return s.RootSpan.count()
}

func (t *SpanTemplate) count() int {
	n := 1
	for i := range t.Children {
		n += t.Children[i].count()
	}

	return n
}
