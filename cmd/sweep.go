package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sim "github.com/inference-sim/backpressure-sim/sim"
	"github.com/inference-sim/backpressure-sim/sim/trace"
)

var (
	sweepRuns        int // Number of seeds to simulate
	sweepParallelism int // Concurrent simulations
)

// sweepResult is the outcome of one headless run.
type sweepResult struct {
	Config  sim.PipelineConfig
	Metrics sim.Metrics
	Summary *trace.TraceSummary
}

// sweepConfigs expands base into one config per seed, starting at base.Seed.
// With random set, every run draws its own configuration from its seed and
// override (if non-nil) is applied on top of each draw.
func sweepConfigs(base sim.PipelineConfig, runs int, random bool, override func(*sim.PipelineConfig)) []sim.PipelineConfig {
	cfgs := make([]sim.PipelineConfig, runs)
	for i := range cfgs {
		s := base.Seed + int64(i)
		if random {
			rng := sim.NewPartitionedRNG(sim.NewSimulationKey(s))
			cfgs[i] = sim.RandomPipelineConfig(rng.ForSubsystem(sim.SubsystemPreset), s)
			if override != nil {
				override(&cfgs[i])
			}
			continue
		}
		cfg := base
		cfg.Seed = s
		cfgs[i] = cfg
	}
	return cfgs
}

// runSweep simulates every config unpaced, at most parallelism at a time.
// Each simulation is single-threaded; results keep the order of cfgs.
func runSweep(ctx context.Context, cfgs []sim.PipelineConfig, parallelism int) ([]sweepResult, error) {
	if parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be >= 1, got %d", parallelism)
	}
	results := make([]sweepResult, len(cfgs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := sim.NewPipeline(cfg)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, cfg.Seed, err)
			}
			st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelSteps, Seed: cfg.Seed})
			if err := p.Run(func(s sim.Snapshot) { st.RecordStep(s.TraceRecord()) }); err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, cfg.Seed, err)
			}
			results[i] = sweepResult{Config: cfg, Metrics: *p.Metrics, Summary: trace.Summarize(st)}
			logrus.Debugf("sweep: seed %d finished in %d steps", cfg.Seed, p.Metrics.StepsExecuted)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// printSweep writes a per-run table followed by aggregate statistics.
func printSweep(w io.Writer, results []sweepResult, wall time.Duration) {
	fmt.Fprintf(w, "%-8s %-14s %-14s %6s %4s %8s %14s %12s %8s\n",
		"seed", "producer", "consumer", "chunks", "cap", "steps", "sim time", "bp episodes", "max q")
	var steps, episodes int
	var simTime int64
	for _, r := range results {
		fmt.Fprintf(w, "%-8d %-14v %-14v %6d %4d %8s %14s %12d %8d\n",
			r.Config.Seed, r.Config.Producer.Delay, r.Config.Consumer.Delay,
			r.Config.Producer.Count, r.Config.Consumer.Capacity,
			humanize.Comma(int64(r.Metrics.StepsExecuted)), r.Metrics.SimulatedDuration().Round(time.Millisecond),
			r.Summary.BackpressureEpisodes, r.Summary.MaxQueueDepth)
		steps += r.Metrics.StepsExecuted
		episodes += r.Summary.BackpressureEpisodes
		simTime += r.Metrics.SimEndedTime
	}
	if len(results) == 0 {
		return
	}
	n := float64(len(results))
	fmt.Fprintln(w, "=== Sweep Summary ===")
	fmt.Fprintf(w, "Runs                 : %d\n", len(results))
	fmt.Fprintf(w, "Total Steps          : %s\n", humanize.Comma(int64(steps)))
	fmt.Fprintf(w, "Mean Sim Time        : %s\n", (time.Duration(float64(simTime)/n) * time.Microsecond).Round(time.Millisecond))
	fmt.Fprintf(w, "Mean BP Episodes     : %s\n", humanize.FtoaWithDigits(float64(episodes)/n, 2))
	fmt.Fprintf(w, "Wall Clock           : %s\n", wall.Round(time.Millisecond))
}

// sweepCmd runs many seeds headless and summarises them
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the pipeline for a range of seeds and summarise the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if sweepRuns < 1 {
			return fmt.Errorf("--runs must be >= 1, got %d", sweepRuns)
		}
		base, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		start := time.Now()
		cfgs := sweepConfigs(base, sweepRuns, randomPreset, func(cfg *sim.PipelineConfig) { applyOverrides(cmd, cfg) })
		results, err := runSweep(cmd.Context(), cfgs, sweepParallelism)
		if err != nil {
			return err
		}
		printSweep(cmd.OutOrStdout(), results, time.Since(start))
		return nil
	},
}
