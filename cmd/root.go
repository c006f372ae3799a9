package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/backpressure-sim/sim"
	"github.com/inference-sim/backpressure-sim/sim/trace"
)

var (
	// CLI flags for the pipeline
	seed             int64  // Seed for rate re-rolls and the random preset
	logLevel         string // Log verbosity level
	presetName       string // Named preset from the presets file
	presetsFilePath  string // Path to presets.yaml
	producerDelayMin int64  // Min producer fill time per chunk (ms)
	producerDelayMax int64  // Max producer fill time per chunk (ms)
	consumerDelayMin int64  // Min consumer drain time per chunk (ms)
	consumerDelayMax int64  // Max consumer drain time per chunk (ms)
	chunkCount       int    // Number of chunks to produce
	queueCapacity    int    // Consumer queue capacity
	randomPreset     bool   // Draw a random configuration

	// CLI flags for the run loop
	speed       float64 // Simulated time per wall-clock time; 0 runs unpaced
	renderMode  string  // text, jsonl or none
	traceOutput string  // YAML trace destination
	traceLevel  string  // none or steps
	interactive bool    // Read p/q controls from stdin
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "backpressure-sim",
	Short: "Discrete-event simulator for a bounded producer/consumer pipeline with backpressure",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		renderer, err := newRenderer(renderMode, os.Stdout)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		pipeline, err := sim.NewPipeline(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		model := sim.NewModel(pipeline, renderer, sim.ScaledPacer(speed))

		var st *trace.SimulationTrace
		if traceOutput != "" {
			st, err = newTrace(traceLevel, cfg.Seed)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			model.Observe(func(s sim.Snapshot) { st.RecordStep(s.TraceRecord()) })
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if interactive {
			go readControls(ctx, os.Stdin, model, stop)
		}

		if err := model.Start(); err != nil {
			logrus.Fatalf("Failed to start simulation: %v", err)
		}
		if err := model.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				logrus.Warnf("Simulation interrupted at step %d", model.Snapshot().Step)
			} else {
				logrus.Fatalf("Simulation failed: %v", err)
			}
		}

		metrics := model.Metrics()
		metrics.Print(os.Stdout, model.WallTime())

		if st != nil {
			if err := trace.WriteYAML(st, traceOutput); err != nil {
				logrus.Fatalf("Failed to write trace: %v", err)
			}
			logrus.Infof("Trace written to %s (%d steps)", traceOutput, len(st.Steps))
		}

		logrus.Info("Simulation complete.")
	},
}

// newTrace creates a trace for --trace-level. At level none the trace keeps
// only its header.
func newTrace(level string, seed int64) (*trace.SimulationTrace, error) {
	if !trace.IsValidTraceLevel(level) {
		return nil, fmt.Errorf("invalid trace level %q (valid: none, steps)", level)
	}
	l := trace.TraceLevel(level)
	if l == "" {
		l = trace.TraceLevelNone
	}
	return trace.NewSimulationTrace(trace.TraceConfig{Level: l, Seed: seed}), nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerPipelineFlags adds the flags shared by run and sweep.
func registerPipelineFlags(c *cobra.Command) {
	def := sim.DefaultPipelineConfig()
	c.Flags().Int64Var(&seed, "seed", def.Seed, "Seed for rate re-rolls and the random preset")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().StringVar(&presetName, "preset", "", "Preset name from the presets file (e.g. fpsc, spfc)")
	c.Flags().StringVar(&presetsFilePath, "presets-file", "presets.yaml", "Path to presets.yaml")
	c.Flags().Int64Var(&producerDelayMin, "producer-delay-min", def.Producer.Delay.Min, "Min producer fill time per chunk (ms)")
	c.Flags().Int64Var(&producerDelayMax, "producer-delay-max", def.Producer.Delay.Max, "Max producer fill time per chunk (ms)")
	c.Flags().Int64Var(&consumerDelayMin, "consumer-delay-min", def.Consumer.Delay.Min, "Min consumer drain time per chunk (ms)")
	c.Flags().Int64Var(&consumerDelayMax, "consumer-delay-max", def.Consumer.Delay.Max, "Max consumer drain time per chunk (ms)")
	c.Flags().IntVar(&chunkCount, "chunks", def.Producer.Count, "Number of chunks to produce")
	c.Flags().IntVar(&queueCapacity, "capacity", def.Consumer.Capacity, "Consumer queue capacity")
	c.Flags().BoolVar(&randomPreset, "random", false, "Draw a random configuration from --seed")
}

// init sets up CLI flags and subcommands
func init() {
	registerPipelineFlags(runCmd)
	runCmd.Flags().Float64Var(&speed, "speed", 1, "Simulated time per unit of wall-clock time (0 = unpaced)")
	runCmd.Flags().StringVar(&renderMode, "render", "text", "Renderer (text, jsonl, none)")
	runCmd.Flags().StringVar(&traceOutput, "trace-output", "", "Write a YAML step trace to this file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelSteps), "Trace verbosity with --trace-output (none, steps)")
	runCmd.Flags().BoolVar(&interactive, "interactive", false, "Read controls from stdin: p toggles pause, q quits")

	registerPipelineFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 10, "Number of seeds to simulate, starting at --seed")
	sweepCmd.Flags().IntVar(&sweepParallelism, "parallelism", 4, "Maximum simulations running at once")

	presetsCmd.Flags().StringVar(&presetsFilePath, "presets-file", "presets.yaml", "Path to presets.yaml")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(presetsCmd)
}
