package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of step tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures one record per executed event.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel `yaml:"level"`
	Seed  int64      `yaml:"seed"`
}

// SimulationTrace collects step records during a pipeline run.
type SimulationTrace struct {
	RunID  string       `yaml:"run_id"`
	Config TraceConfig  `yaml:"config"`
	Steps  []StepRecord `yaml:"steps"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording,
// tagged with a fresh run ID.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:  uuid.NewString(),
		Config: config,
		Steps:  make([]StepRecord, 0),
	}
}

// Enabled reports whether records should be collected.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelSteps
}

// RecordStep appends a step record. No-op unless the level is steps.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	if !st.Enabled() {
		return
	}
	st.Steps = append(st.Steps, record)
}
