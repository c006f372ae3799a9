package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/inference-sim/backpressure-sim/sim"
)

// Preset is one named pipeline configuration in presets.yaml.
// Delays are [min, max] in milliseconds.
type Preset struct {
	ProducerDelay [2]int64 `yaml:"producer_delay"`
	ConsumerDelay [2]int64 `yaml:"consumer_delay"`
	Chunks        int      `yaml:"chunks"`
	Capacity      int      `yaml:"capacity"`
}

// PresetsFile represents the full presets.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type PresetsFile struct {
	Version string            `yaml:"version"`
	Presets map[string]Preset `yaml:"presets"`
}

// Config converts the preset into a PipelineConfig with the given seed.
func (p Preset) Config(seed int64) sim.PipelineConfig {
	return sim.NewPipelineConfig(
		sim.DelayRange{Min: p.ProducerDelay[0], Max: p.ProducerDelay[1]},
		sim.DelayRange{Min: p.ConsumerDelay[0], Max: p.ConsumerDelay[1]},
		p.Chunks, p.Capacity, seed,
	)
}

// loadPresets parses a presets file. Unknown fields are errors so typos
// never silently fall back to defaults.
func loadPresets(path string) (PresetsFile, error) {
	var pf PresetsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return pf, fmt.Errorf("read presets file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&pf); err != nil {
		return pf, fmt.Errorf("parse presets file %s: %w", path, err)
	}
	return pf, nil
}

// lookupPreset returns the named preset from the file at path.
func lookupPreset(path, name string) (Preset, error) {
	pf, err := loadPresets(path)
	if err != nil {
		return Preset{}, err
	}
	p, ok := pf.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %v)", name, pf.names())
	}
	return p, nil
}

func (pf PresetsFile) names() []string {
	names := make([]string, 0, len(pf.Presets))
	for name := range pf.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveConfig builds the pipeline configuration for cmd. The base is the
// built-in default, a named preset, or a random draw; flags the user set
// explicitly override the base.
func resolveConfig(cmd *cobra.Command) (sim.PipelineConfig, error) {
	cfg := sim.DefaultPipelineConfig()
	cfg.Seed = seed

	switch {
	case randomPreset && presetName != "":
		return cfg, fmt.Errorf("--random and --preset are mutually exclusive")
	case randomPreset:
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
		cfg = sim.RandomPipelineConfig(rng.ForSubsystem(sim.SubsystemPreset), seed)
	case presetName != "":
		p, err := lookupPreset(presetsFilePath, presetName)
		if err != nil {
			return cfg, err
		}
		cfg = p.Config(seed)
	}

	applyOverrides(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyOverrides copies every pipeline flag the user set explicitly onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *sim.PipelineConfig) {
	flags := cmd.Flags()
	if flags.Changed("producer-delay-min") {
		cfg.Producer.Delay.Min = producerDelayMin
	}
	if flags.Changed("producer-delay-max") {
		cfg.Producer.Delay.Max = producerDelayMax
	}
	if flags.Changed("consumer-delay-min") {
		cfg.Consumer.Delay.Min = consumerDelayMin
	}
	if flags.Changed("consumer-delay-max") {
		cfg.Consumer.Delay.Max = consumerDelayMax
	}
	if flags.Changed("chunks") {
		cfg.Producer.Count = chunkCount
	}
	if flags.Changed("capacity") {
		cfg.Consumer.Capacity = queueCapacity
	}
}

// presetsCmd lists the presets in the presets file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the named pipeline presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, err := loadPresets(presetsFilePath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range pf.names() {
			cfg := pf.Presets[name].Config(0)
			fmt.Fprintf(out, "%-8s producer=%v consumer=%v chunks=%d capacity=%d\n",
				name, cfg.Producer.Delay, cfg.Consumer.Delay, cfg.Producer.Count, cfg.Consumer.Capacity)
		}
		return nil
	},
}
