// Package testutil provides shared test infrastructure for the pipeline
// simulator: golden trace types and assertion helpers.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_traces.json.
type GoldenDataset struct {
	Tests []GoldenTrace `json:"tests"`
}

// GoldenTrace is a small configuration whose exact event sequence is known.
type GoldenTrace struct {
	Name          string   `json:"name"`
	ProducerDelay [2]int64 `json:"producer_delay"`
	ConsumerDelay [2]int64 `json:"consumer_delay"`
	Chunks        int      `json:"chunks"`
	Capacity      int      `json:"capacity"`
	Seed          int64    `json:"seed"`

	Events        []string `json:"events"`
	EndClock      int64    `json:"end_clock"`
	ProducerFinal string   `json:"producer_final"`
	ConsumerFinal string   `json:"consumer_final"`
}

// LoadGoldenDataset loads the golden traces from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_traces.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden traces: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden traces: %v", err)
	}

	return &dataset
}

// AssertNonDecreasing fails if values ever decrease.
func AssertNonDecreasing(t *testing.T, name string, values []int64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("%s: value[%d]=%d < value[%d]=%d", name, i, values[i], i-1, values[i-1])
			return
		}
	}
}

// Count returns how many elements of values equal want.
func Count[T comparable](values []T, want T) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}
