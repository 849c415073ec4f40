// Package cmd implements the command-line entry point: flag parsing,
// config loading and override, and dispatch into a single run or a
// what-if pair.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/nodetwin/twinsim/config"
	"github.com/nodetwin/twinsim/report"
	"github.com/nodetwin/twinsim/sim"
)

// ExitCodeError signals a non-zero exit code without calling os.Exit
// directly, so main can decide how to surface it.
type ExitCodeError struct{ Code int }

func (e ExitCodeError) Error() string { return fmt.Sprintf("exit %d", e.Code) }

func printUsage() {
	fmt.Fprintf(os.Stderr, `twinsim — IoT sensor node and digital twin simulator

Usage:
  twinsim [OPTIONS]

Options:
  --config PATH            Path to a JSON configuration file
  --sync-strategy NAME     full_state, delta, event_driven, or adaptive
  --duration HOURS         Simulation duration in hours
  --sampling-rate SECONDS  Sensor sampling interval in seconds
  --battery-capacity MAH   Battery capacity in mAh
  --ram-size KB            Total device RAM in KB
  --bandwidth KBPS         Maximum network bandwidth in kbps
  --seed INT               Random seed
  --no-edge                Disable the edge preprocessing pipeline
  --no-leak                Force-disable the memory leak model
  --log-format {json|csv}  Tick-log serialization format
  --what-if                Run twice (base + what-if) and print a comparison
  --quiet                  Suppress the live per-tick view

Examples:
  twinsim
  twinsim --sync-strategy delta --duration 2 --seed 7
  twinsim --what-if --quiet
`)
}

// Run parses flags, builds the configuration, and drives one
// simulation (or a what-if pair). It returns a non-nil error on
// configuration problems; an ExitCodeError carries an explicit exit
// code for main to apply.
func Run() error {
	fs := flag.NewFlagSet("twinsim", flag.ContinueOnError)
	fs.Usage = printUsage

	configPath := fs.String("config", "", "path to a JSON configuration file")
	syncStrategy := fs.String("sync-strategy", "", "full_state, delta, event_driven, or adaptive")
	duration := fs.Float64("duration", 0, "simulation duration in hours")
	samplingRate := fs.Int("sampling-rate", 0, "sensor sampling interval in seconds")
	batteryCapacity := fs.Float64("battery-capacity", 0, "battery capacity in mAh")
	ramSize := fs.Float64("ram-size", 0, "total device RAM in KB")
	bandwidth := fs.Float64("bandwidth", 0, "maximum network bandwidth in kbps")
	seed := fs.Int64("seed", 0, "random seed")
	noEdge := fs.Bool("no-edge", false, "disable the edge preprocessing pipeline")
	noLeak := fs.Bool("no-leak", false, "force-disable the memory leak model")
	logFormat := fs.String("log-format", "", "json or csv")
	whatIf := fs.Bool("what-if", false, "run twice and print a base vs. what-if comparison")
	quiet := fs.Bool("quiet", false, "suppress the live per-tick view")

	var seedSet, strategySet bool
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return ExitCodeError{Code: 2}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			seedSet = true
		case "sync-strategy":
			strategySet = true
		}
	})

	shared := overrides{
		duration:        *duration,
		samplingRate:    *samplingRate,
		batteryCapacity: *batteryCapacity,
		ramSize:         *ramSize,
		bandwidth:       *bandwidth,
		seed:            *seed,
		seedSet:         seedSet,
		logFormat:       *logFormat,
	}

	base := config.Load(*configPath)
	applyOverrides(&base, shared)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *whatIf {
		whatIfOnly := overrides{
			noEdge:      *noEdge,
			noLeak:      *noLeak,
			strategy:    *syncStrategy,
			strategySet: strategySet,
		}
		return runWhatIf(ctx, base, whatIfOnly, *quiet)
	}

	// Outside --what-if, strategy/edge/leak toggles apply directly to
	// the single run.
	applyOverrides(&base, overrides{
		noEdge:      *noEdge,
		noLeak:      *noLeak,
		strategy:    *syncStrategy,
		strategySet: strategySet,
	})
	if err := base.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "twinsim: configuration error: %v\n", err)
		return ExitCodeError{Code: 1}
	}
	return runSingle(ctx, base, base.Sync.DefaultStrategy, *quiet)
}

type overrides struct {
	duration        float64
	samplingRate    int
	batteryCapacity float64
	ramSize         float64
	bandwidth       float64
	seed            int64
	seedSet         bool
	noEdge          bool
	noLeak          bool
	logFormat       string
	strategy        string
	strategySet     bool
}

// applyOverrides mutates cfg in place with every CLI flag that was
// given a non-zero-ish value, leaving config-file/default values alone
// otherwise.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.strategySet {
		cfg.Sync.DefaultStrategy = o.strategy
	}
	if o.duration > 0 {
		cfg.Simulation.DurationHours = o.duration
	}
	if o.samplingRate > 0 {
		cfg.Simulation.SamplingRateSeconds = o.samplingRate
	}
	if o.batteryCapacity > 0 {
		cfg.Device.Battery.CapacityMAh = o.batteryCapacity
	}
	if o.ramSize > 0 {
		cfg.Device.Memory.TotalRAMKB = o.ramSize
	}
	if o.bandwidth > 0 {
		cfg.Device.Network.MaxBandwidthKbps = o.bandwidth
	}
	if o.seedSet {
		cfg.Simulation.RandomSeed = o.seed
	}
	if o.noEdge {
		cfg.Edge.Enabled = false
	}
	if o.noLeak {
		cfg.Device.Memory.LeakEnabled = false
	}
	if o.logFormat != "" {
		cfg.Simulation.LogFormat = o.logFormat
	}
}

func runSingle(ctx context.Context, cfg config.Config, strategyName string, quiet bool) error {
	s, err := sim.New(cfg, strategyName)
	if err != nil {
		return ExitCodeError{Code: 1}
	}

	logger := report.NewLogger(cfg.Simulation.LogFormat, cfg.Simulation.SamplingRateSeconds)

	var result sim.Result
	if quiet {
		r, err := sim.RunToCompletion(ctx, s, logger.Record)
		if err != nil && err != context.Canceled {
			return fmt.Errorf("simulation run: %w", err)
		}
		result = r
	} else {
		interval := time.Duration(cfg.Simulation.TimeStepSeconds * float64(time.Second))
		final, err := report.Watch(s, interval, logger.Record)
		if err != nil {
			return fmt.Errorf("watch view: %w", err)
		}
		result = sim.ResultFrom(s, final)
	}

	if err := writeLog(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "twinsim: warning: %v\n", err)
	}

	fmt.Println(report.Summary(result))
	return nil
}

func runWhatIf(ctx context.Context, base config.Config, whatIfOnly overrides, quiet bool) error {
	if err := base.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "twinsim: configuration error: %v\n", err)
		return ExitCodeError{Code: 1}
	}

	whatIfCfg := base
	applyOverrides(&whatIfCfg, whatIfOnly)
	if err := whatIfCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "twinsim: configuration error: %v\n", err)
		return ExitCodeError{Code: 1}
	}

	baseSim, err := sim.New(base, base.Sync.DefaultStrategy)
	if err != nil {
		return ExitCodeError{Code: 1}
	}
	baseResult, err := sim.RunToCompletion(ctx, baseSim, nil)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("base run: %w", err)
	}

	whatIfSim, err := sim.New(whatIfCfg, whatIfCfg.Sync.DefaultStrategy)
	if err != nil {
		return ExitCodeError{Code: 1}
	}
	whatIfResult, err := sim.RunToCompletion(ctx, whatIfSim, nil)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("what-if run: %w", err)
	}

	cmp := sim.Compare(baseResult, whatIfResult)
	insights := sim.Insights(cmp)

	if !quiet {
		fmt.Println(report.Summary(baseResult))
	}
	fmt.Println(report.ComparisonTable(cmp, insights))
	return nil
}

func writeLog(cfg config.Config, logger *report.Logger) error {
	dir := cfg.Simulation.LogOutputDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir %q: %w", dir, err)
	}
	ext := "json"
	if cfg.Simulation.LogFormat == "csv" {
		ext = "csv"
	}
	name := fmt.Sprintf("simulation_%s.%s", time.Now().Format("20060102_150405"), ext)
	return logger.Write(filepath.Join(dir, name))
}
