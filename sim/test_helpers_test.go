package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// logStep appends its name to a shared log when executed, then runs fn.
type logStep struct {
	name string
	log  *[]string
	fn   func() error
}

func (s logStep) Name() string { return s.name }

func (s logStep) Execute() error {
	*s.log = append(*s.log, s.name)
	if s.fn != nil {
		return s.fn()
	}
	return nil
}

// testConfig builds a PipelineConfig with fixed (non-random) rates.
func testConfig(producerMs, consumerMs int64, count, capacity int) PipelineConfig {
	return NewPipelineConfig(
		DelayRange{Min: producerMs, Max: producerMs},
		DelayRange{Min: consumerMs, Max: consumerMs},
		count, capacity, 42,
	)
}

// runPipeline runs cfg to completion and returns every snapshot taken.
func runPipeline(t *testing.T, cfg PipelineConfig) (*Pipeline, []Snapshot) {
	t.Helper()
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	var snaps []Snapshot
	require.NoError(t, p.Run(func(s Snapshot) { snaps = append(snaps, s) }))
	return p, snaps
}

func eventNames(snaps []Snapshot) []string {
	names := make([]string, len(snaps))
	for i, s := range snaps {
		names[i] = s.Event
	}
	return names
}

// fakeDownstream records writes and answers with scripted results.
type fakeDownstream struct {
	writes    []*Chunk
	results   []bool // popped per non-nil write; defaults to true
	listeners []DrainListener
	err       error
}

func (f *fakeDownstream) Write(c *Chunk) (bool, error) {
	f.writes = append(f.writes, c)
	if f.err != nil {
		return false, f.err
	}
	if c == nil {
		return false, nil
	}
	if len(f.results) == 0 {
		return true, nil
	}
	ok := f.results[0]
	f.results = f.results[1:]
	return ok, nil
}

func (f *fakeDownstream) SubscribeOnDrain(l DrainListener) {
	f.listeners = append(f.listeners, l)
}

func (f *fakeDownstream) drain() error {
	for _, l := range f.listeners {
		if err := l(); err != nil {
			return err
		}
	}
	return nil
}
