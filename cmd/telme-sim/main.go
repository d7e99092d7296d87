// Package main provides the telme-sim CLI tool, which replays scenarios
// through otelme to produce annotated traces, span counters and logs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/arloliu/otelme"
	"github.com/arloliu/otelme/cmd/telme-sim/engine"
	"github.com/arloliu/otelme/cmd/telme-sim/scenario"
	"github.com/zoobzio/clockz"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	mode := os.Args[1]
	switch mode {
	case "quick":
		runQuickMode(os.Args[2:])
	case "run":
		runContinuousMode(os.Args[2:])
	case "list":
		listScenarios()
	case "-h", "--help", "help":
		printUsage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", mode)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`telme-sim - otelme annotation simulator

Usage:
  telme-sim <mode> [flags]

Modes:
  quick   Send traces immediately for quick visualization
  run     Simulate real-world timing continuously
  list    List available scenarios

Common Flags:
  --endpoint          OTLP endpoint (default: localhost:4317)
  --http              Use HTTP instead of gRPC
  --insecure          Skip TLS verification (default: true)
  --exporter          otlp, console or none (default: otlp)
  --scenario          Scenario name (default: checkout)
  --scenario-file     Custom YAML scenario file
  --logs              Enable log generation
  --metrics           Export span counter metrics
  --counter-capacity  Span counter store capacity (default: 1024)
  --service-name      Service name (default: telme-sim)

Quick Mode Flags:
  --count        Number of traces to send (default: 10)

Continuous Mode Flags:
  --duration     Total simulation time (default: 1m)
  --rate         Traces per second (default: 1)
  --jitter       Timing variation percentage (default: 20)

Environment Variables:
  OTEL_EXPORTER_OTLP_ENDPOINT   OTLP endpoint
  OTEL_EXPORTER_OTLP_INSECURE   Skip TLS verification
  OTEL_SERVICE_NAME             Service name
  OTELME_COUNTER_CAPACITY       Span counter store capacity
  TELME_SIM_EXPORTER            Exporter type

Examples:
  telme-sim quick --scenario checkout --count 5
  telme-sim quick --exporter console --scenario import --count 1
  telme-sim run --scenario import --duration 5m --rate 10
  telme-sim list`)
}

func runQuickMode(args []string) {
	cfg := newConfig()
	fs := flag.NewFlagSet("quick", flag.ExitOnError)
	cfg.bindCommonFlags(fs)
	fs.IntVar(&cfg.Count, "count", cfg.Count, "Number of traces to send")

	if err := fs.Parse(args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return
	}

	cfg.applyEnvOverrides()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := executeQuick(ctx, cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func runContinuousMode(args []string) {
	cfg := newConfig()
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfg.bindCommonFlags(fs)

	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Total simulation time")
	fs.Float64Var(&cfg.Rate, "rate", cfg.Rate, "Traces per second")
	fs.IntVar(&cfg.Jitter, "jitter", cfg.Jitter, "Timing variation percentage")

	if err := fs.Parse(args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return
	}

	cfg.applyEnvOverrides()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := executeContinuous(ctx, cfg, clockz.RealClock); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func listScenarios() {
	fmt.Println("Available scenarios:")
	fmt.Println()
	for _, s := range scenario.List() {
		fmt.Printf("  %-13s %s\n", s.Name, s.Description)
		fmt.Printf("  %-13s - %d spans per trace\n", "", s.SpanCount())
	}
}

// session is an engine bound to freshly installed otelme telemetry.
type session struct {
	tel *otelme.Telemetry
	eng *engine.Engine
}

func startSession(ctx context.Context, cfg *Config, clock clockz.Clock, jitter int, realtime bool) (*session, error) {
	tel, err := otelme.Setup(ctx, cfg.telemetry())
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	ecfg := engine.Config{
		Clock:     clock,
		Counter:   tel.Counter,
		Realtime:  realtime,
		JitterPct: jitter,
	}
	if tel.LoggerProvider != nil {
		ecfg.LoggerProvider = tel.LoggerProvider
	}

	return &session{tel: tel, eng: engine.New(ecfg)}, nil
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.tel.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: shutdown: %v\n", err)
	}
}

// executeQuick sends traces immediately.
func executeQuick(ctx context.Context, cfg *Config) error {
	s, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	sess, err := startSession(ctx, cfg, clockz.RealClock, 0, false)
	if err != nil {
		return err
	}
	defer sess.close()

	fmt.Printf("Sending %d traces to %s (scenario: %s)\n", cfg.Count, cfg.Endpoint, s.Name)

	for i := range cfg.Count {
		if err := sess.eng.GenerateTrace(ctx, s); err != nil {
			fmt.Printf("\nInterrupted after %d traces\n", i)
			return nil
		}
		fmt.Printf("Trace %d/%d sent\n", i+1, cfg.Count)
	}

	st := sess.eng.Stats()
	fmt.Printf("Done! %d spans, %d injected failures\n", st.Spans, st.Failed)

	return nil
}

// executeContinuous runs traces at a steady rate for a duration.
func executeContinuous(ctx context.Context, cfg *Config, clock clockz.Clock) error {
	if cfg.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", cfg.Rate)
	}

	s, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	sess, err := startSession(ctx, cfg, clock, cfg.Jitter, true)
	if err != nil {
		return err
	}
	defer sess.close()

	fmt.Printf("Running %s scenario for %v at %.1f traces/sec\n", s.Name, cfg.Duration, cfg.Rate)

	runLoop(ctx, sess.eng, s, clock, cfg.Duration, cfg.Rate)

	return nil
}

// runLoop starts one trace per interval until the deadline passes or ctx
// is done. Traces run concurrently so realtime spans do not slow the rate.
func runLoop(ctx context.Context, eng *engine.Engine, s *scenario.Scenario, clock clockz.Clock, d time.Duration, rate float64) int {
	interval := time.Duration(float64(time.Second) / rate)
	deadline := clock.Now().Add(d)
	next := clock.Now().Add(interval)
	traceCount := 0

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\nInterrupted after %d traces\n", traceCount)
			return traceCount
		case <-clock.After(max(next.Sub(clock.Now()), 0)):
			next = next.Add(interval)
			if clock.Now().After(deadline) {
				fmt.Printf("\nCompleted: sent %d traces\n", traceCount)
				return traceCount
			}

			traceCount++
			wg.Go(func() {
				if err := eng.GenerateTrace(ctx, s); err != nil {
					_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to generate trace: %v\n", err)
				}
			})
		}
	}
}

func loadScenario(cfg *Config) (*scenario.Scenario, error) {
	if cfg.ScenarioFile != "" {
		return scenario.LoadFromFile(cfg.ScenarioFile)
	}

	s, ok := scenario.Get(cfg.Scenario)
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s (use 'telme-sim list' to see available scenarios)", cfg.Scenario)
	}

	return s, nil
}
