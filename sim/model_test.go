package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, cfg PipelineConfig, r Renderer, pacer Pacer) *Model {
	t.Helper()
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return NewModel(p, r, pacer)
}

func waitModel(t *testing.T, m *Model) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Wait(ctx)
}

func TestModel_RunsToCompletion(t *testing.T) {
	// GIVEN an unpaced model with a discarding renderer
	m := newTestModel(t, testConfig(10, 20, 5, 2), nil, nil)
	assert.Equal(t, ModelInitial, m.State())

	var mu sync.Mutex
	var seen []Snapshot
	m.Observe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	// WHEN started
	require.NoError(t, m.Start())
	require.NoError(t, waitModel(t, m))

	// THEN every step was observed and the pipeline finished
	assert.Equal(t, ModelFinished, m.State())
	metrics := m.Metrics()
	assert.Equal(t, 5, metrics.ChunksConsumed)
	mu.Lock()
	assert.Len(t, seen, metrics.StepsExecuted)
	mu.Unlock()
	assert.Equal(t, ConsumerFinished, m.Snapshot().Consumer.State)
	assert.NoError(t, m.Err())
	assert.Greater(t, m.WallTime(), time.Duration(0))
}

func TestModel_ObserverMayCallBackIntoModel(t *testing.T) {
	// GIVEN an observer that reads the model's state on every step
	m := newTestModel(t, testConfig(0, 0, 2, 1), nil, nil)
	var states []ModelState
	var steps []int
	m.Observe(func(s Snapshot) {
		states = append(states, m.State())
		steps = append(steps, m.Snapshot().Step)
		_ = m.Metrics()
	})

	// WHEN run
	require.NoError(t, m.Start())

	// THEN it completes instead of deadlocking, with observers seeing steps in order
	require.NoError(t, waitModel(t, m))
	require.NotEmpty(t, steps)
	for i, st := range steps {
		assert.GreaterOrEqual(t, st, i+1)
	}
	assert.Contains(t, states, ModelRunning)
}

func TestModel_InvalidTransitions(t *testing.T) {
	m := newTestModel(t, testConfig(0, 0, 1, 1), nil, nil)

	// Pause before Start
	assert.ErrorIs(t, m.Pause(), ErrInvalidTransition)

	require.NoError(t, m.Start())
	// A second Start finds the model running or already finished.
	assert.ErrorIs(t, m.Start(), ErrInvalidTransition)

	require.NoError(t, waitModel(t, m))
	assert.ErrorIs(t, m.Start(), ErrInvalidTransition)
	assert.ErrorIs(t, m.Pause(), ErrInvalidTransition)
}

func TestModel_NeverDrawsTwoFramesAtOnce(t *testing.T) {
	// GIVEN a renderer that completes each frame asynchronously
	var inFlight atomic.Int32
	var overlaps atomic.Int32
	var frames atomic.Int32
	r := RendererFunc(func(Snapshot) <-chan struct{} {
		if !inFlight.CompareAndSwap(0, 1) {
			overlaps.Add(1)
		}
		frames.Add(1)
		done := make(chan struct{})
		go func() {
			time.Sleep(200 * time.Microsecond)
			inFlight.Store(0)
			close(done)
		}()
		return done
	})
	m := newTestModel(t, testConfig(0, 0, 3, 2), r, nil)

	// WHEN the model runs to completion
	require.NoError(t, m.Start())
	require.NoError(t, waitModel(t, m))

	// THEN no step was taken while a frame was still being drawn
	assert.Zero(t, overlaps.Load())
	assert.Equal(t, int32(m.Metrics().StepsExecuted), frames.Load())
}

func TestModel_PauseAndResume(t *testing.T) {
	// GIVEN a model paced at 2ms per step
	pacer := func(int64) time.Duration { return 2 * time.Millisecond }
	m := newTestModel(t, testConfig(0, 0, 5, 2), nil, pacer)
	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return m.Snapshot().Step >= 3 }, 5*time.Second, time.Millisecond)

	// WHEN paused
	require.NoError(t, m.Pause())
	assert.True(t, m.IsPaused())
	step := m.Snapshot().Step

	// THEN no further steps run
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, step, m.Snapshot().Step)

	// WHEN resumed
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning() || m.State() == ModelFinished)

	// THEN the run completes
	require.NoError(t, waitModel(t, m))
	assert.Equal(t, 5, m.Metrics().ChunksConsumed)
}

func TestModel_StepError_FinishesWithError(t *testing.T) {
	// GIVEN a pipeline with a failing event queued behind the producer's first step
	p, err := NewPipeline(testConfig(0, 0, 1, 1))
	require.NoError(t, err)
	boom := errors.New("boom")
	var log []string
	p.Loop.ScheduleImmediate(logStep{name: "fail", log: &log, fn: func() error { return boom }})
	m := NewModel(p, nil, nil)

	// WHEN run
	require.NoError(t, m.Start())
	err = waitModel(t, m)

	// THEN the model finishes and reports the step error
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Err(), boom)
	assert.Equal(t, ModelFinished, m.State())
	assert.Equal(t, []string{"fail"}, log)
}

func TestModel_Wait_ContextCancelled(t *testing.T) {
	m := newTestModel(t, testConfig(0, 0, 1, 1), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Wait(ctx), context.Canceled)
	assert.Equal(t, ModelInitial, m.State())
}

func TestNewModel_NilPipeline_Panics(t *testing.T) {
	assert.Panics(t, func() { NewModel(nil, nil, nil) })
}

func TestScaledPacer(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		ticks int64
		want  time.Duration
	}{
		{"unpaced", 0, 1000, 0},
		{"negative speed unpaced", -1, 1000, 0},
		{"real time", 1, 1000, time.Millisecond},
		{"double speed", 2, 1000, 500 * time.Microsecond},
		{"zero delay", 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaledPacer(tt.speed)(tt.ticks))
		})
	}
}

func TestCompleted_IsClosed(t *testing.T) {
	select {
	case <-Completed():
	default:
		t.Fatal("Completed() channel is not closed")
	}
}
