package trace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationTrace_RecordStep_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for steps
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps, Seed: 7})

	// WHEN a step record is recorded
	st.RecordStep(StepRecord{Step: 1, Clock: 1000, Event: "produce", ProducerState: "producing"})

	// THEN the trace contains one record with correct data
	if len(st.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(st.Steps))
	}
	if st.Steps[0].Event != "produce" {
		t.Errorf("expected event produce, got %s", st.Steps[0].Event)
	}
	if st.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestSimulationTrace_LevelNone_RecordsNothing(t *testing.T) {
	// GIVEN a trace with tracing disabled
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})

	// WHEN records are added
	st.RecordStep(StepRecord{Step: 1})
	st.RecordStep(StepRecord{Step: 2})

	// THEN nothing is kept
	assert.Empty(t, st.Steps)
}

func TestSimulationTrace_NilTrace_RecordIsSafe(t *testing.T) {
	var st *SimulationTrace
	assert.False(t, st.Enabled())
	assert.NotPanics(t, func() { st.RecordStep(StepRecord{Step: 1}) })
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})

	// WHEN multiple records are added
	st.RecordStep(StepRecord{Step: 1, Event: "produce"})
	st.RecordStep(StepRecord{Step: 2, Event: "push"})
	st.RecordStep(StepRecord{Step: 3, Event: "write"})

	// THEN order is preserved
	require.Len(t, st.Steps, 3)
	assert.Equal(t, []string{"produce", "push", "write"},
		[]string{st.Steps[0].Event, st.Steps[1].Event, st.Steps[2].Event})
}

func TestNewSimulationTrace_DistinctRunIDs(t *testing.T) {
	a := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	b := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"steps", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"foobar", false},
		{"STEPS", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}

func TestWriteYAML_ReadYAML_PreservesRecords(t *testing.T) {
	// GIVEN a trace with two records
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps, Seed: 42})
	st.RecordStep(StepRecord{Step: 1, Clock: 0, Event: "produce", ProducerChunk: 0, ConsumerChunk: -1, QueueCapacity: 3})
	st.RecordStep(StepRecord{Step: 2, Clock: 70000, Event: "write", QueueLength: 1, QueueCapacity: 3, Backpressure: true})
	path := filepath.Join(t.TempDir(), "trace.yaml")

	// WHEN written and read back
	require.NoError(t, WriteYAML(st, path))
	got, err := ReadYAML(path)

	// THEN the run ID, config and records survive
	require.NoError(t, err)
	assert.Equal(t, st.RunID, got.RunID)
	assert.Equal(t, st.Config, got.Config)
	assert.Equal(t, st.Steps, got.Steps)
}

func TestWriteYAML_MissingDirectory_ReturnsError(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	err := WriteYAML(st, filepath.Join(t.TempDir(), "no", "such", "dir", "trace.yaml"))
	assert.Error(t, err)
}
