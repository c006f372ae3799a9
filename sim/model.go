package sim

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ModelState is the run state of a Model.
type ModelState string

const (
	ModelInitial  ModelState = "initial"
	ModelRunning  ModelState = "running"
	ModelPaused   ModelState = "paused"
	ModelFinished ModelState = "finished"
)

// Model drives a Pipeline one event at a time, renders a snapshot after each
// step and waits Pacer(NextEventDelay()) of wall-clock time before the next.
//
//	initial -> running <-> paused
//	running -> finished (no events left, or a step failed)
//
// Start and Pause may be called from any goroutine. Simulated steps still run
// one at a time: each executes to completion under the model's lock, and a
// step never starts before the previous frame has been rendered.
type Model struct {
	mu        sync.Mutex
	state     ModelState
	pipeline  *Pipeline
	renderer  Renderer
	pacer     Pacer
	observers []func(Snapshot)

	tick      *time.Timer   // pending pacing timer, nil when none
	gen       uint64        // bumped on every Start; stale pumps bail out
	rendering chan struct{} // closed when the last frame handed out is done
	err       error
	done      chan struct{}
	startedAt time.Time
	wall      time.Duration
}

// NewModel creates a Model in the initial state. A nil renderer discards
// frames; a nil pacer runs unpaced.
func NewModel(p *Pipeline, r Renderer, pacer Pacer) *Model {
	if p == nil {
		panic("NewModel: pipeline must not be nil")
	}
	if r == nil {
		r = NopRenderer{}
	}
	if pacer == nil {
		pacer = ScaledPacer(0)
	}
	return &Model{
		state:    ModelInitial,
		pipeline: p,
		renderer: r,
		pacer:    pacer,
		done:     make(chan struct{}),
	}
}

// Observe registers fn to receive every snapshot before it is rendered.
// Observers run on the pump goroutine without the model's lock held, one
// step at a time, so they may call back into the Model.
// Must be called before Start.
func (m *Model) Observe(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Start begins or resumes the run. The first call also resumes the producer.
func (m *Model) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ModelInitial && m.state != ModelPaused {
		return &TransitionError{Component: "model", Op: "start", From: string(m.state)}
	}
	if m.state == ModelInitial {
		m.startedAt = time.Now()
		if err := m.pipeline.Start(); err != nil {
			m.finish(err)
			return err
		}
	}
	m.state = ModelRunning
	m.gen++
	go m.pump(m.gen)
	return nil
}

// Pause stops the pacing timer. Simulated events already scheduled are kept,
// so a later Start continues exactly where the run stopped.
func (m *Model) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ModelRunning {
		return &TransitionError{Component: "model", Op: "pause", From: string(m.state)}
	}
	if m.tick != nil {
		m.tick.Stop()
		m.tick = nil
	}
	m.state = ModelPaused
	logrus.Debugf("[tick %07d] model paused", m.pipeline.Loop.Clock())
	return nil
}

func (m *Model) pump(gen uint64) {
	m.mu.Lock()
	prev := m.rendering
	m.mu.Unlock()
	if prev != nil {
		<-prev
	}

	m.mu.Lock()
	if m.gen != gen || m.state != ModelRunning {
		m.mu.Unlock()
		return
	}
	m.tick = nil
	if m.pipeline.Done() {
		m.finish(nil)
		m.mu.Unlock()
		return
	}
	snap, err := m.pipeline.Step()
	if err != nil {
		m.finish(err)
		m.mu.Unlock()
		return
	}
	observers := m.observers
	frame := make(chan struct{})
	m.rendering = frame
	m.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
	<-m.renderer.Draw(snap)
	close(frame)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.state != ModelRunning {
		return
	}
	delay := m.pacer(m.pipeline.Loop.NextEventDelay())
	m.tick = time.AfterFunc(delay, func() { m.pump(gen) })
}

// finish must be called with m.mu held.
func (m *Model) finish(err error) {
	m.state = ModelFinished
	m.err = err
	m.wall = time.Since(m.startedAt)
	if err != nil {
		logrus.Errorf("[tick %07d] simulation aborted: %v", m.pipeline.Loop.Clock(), err)
	} else {
		logrus.Infof("[tick %07d] Simulation ended", m.pipeline.Loop.Clock())
	}
	close(m.done)
}

// Wait blocks until the model finishes or ctx is done. It returns the step
// error that stopped the run, if any, or ctx.Err().
func (m *Model) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the model reaches finished.
func (m *Model) Done() <-chan struct{} { return m.done }

// Err returns the step error that finished the run, if any.
func (m *Model) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// State returns the current run state.
func (m *Model) State() ModelState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsRunning reports whether the model is running.
func (m *Model) IsRunning() bool { return m.State() == ModelRunning }

// IsPaused reports whether the model is paused.
func (m *Model) IsPaused() bool { return m.State() == ModelPaused }

// Snapshot returns the pipeline's current snapshot.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipeline.Snapshot()
}

// Metrics returns a copy of the run's metrics.
func (m *Model) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.pipeline.Metrics
}

// WallTime returns the real time between the first Start and finishing.
func (m *Model) WallTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wall
}
