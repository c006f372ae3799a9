package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Pipeline wires an EventLoop, a Consumer and a Producer built from one
// PipelineConfig. It has no notion of wall-clock time; Model adds pacing
// and rendering on top of it.
type Pipeline struct {
	Config   PipelineConfig
	Loop     *EventLoop
	Producer *Producer
	Consumer *Consumer
	Metrics  *Metrics

	started bool
}

// NewPipeline validates cfg and builds a pipeline whose rates are drawn from
// RNGs derived from cfg.Seed.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	loop := NewEventLoop()
	metrics := NewMetrics()
	consumer := NewConsumer(loop, cfg.Consumer, rng.ForSubsystem(SubsystemConsumer), metrics)
	producer := NewProducer(loop, consumer, cfg.Producer, rng.ForSubsystem(SubsystemProducer), metrics)
	return &Pipeline{
		Config:   cfg,
		Loop:     loop,
		Producer: producer,
		Consumer: consumer,
		Metrics:  metrics,
	}, nil
}

// Start kicks the producer. It may be called once.
func (p *Pipeline) Start() error {
	if p.started {
		return &TransitionError{Component: "pipeline", Op: "start", From: "started"}
	}
	p.started = true
	logrus.Infof("Starting pipeline: producer=%v consumer=%v chunks=%d capacity=%d seed=%d",
		p.Config.Producer.Delay, p.Config.Consumer.Delay, p.Config.Producer.Count, p.Config.Consumer.Capacity, p.Config.Seed)
	return p.Producer.Resume()
}

// Done reports whether no simulated events remain.
func (p *Pipeline) Done() bool {
	return p.Loop.Empty()
}

// Step executes exactly one event and returns the resulting snapshot.
func (p *Pipeline) Step() (Snapshot, error) {
	if err := p.Loop.Execute(); err != nil {
		return Snapshot{}, err
	}
	p.Metrics.StepsExecuted++
	p.Metrics.SimEndedTime = p.Loop.Clock()
	return p.Snapshot(), nil
}

// Snapshot captures the current observable state.
func (p *Pipeline) Snapshot() Snapshot {
	snap := Snapshot{
		Step:     p.Loop.Executed(),
		Time:     p.Loop.Clock(),
		Producer: p.Producer.View(),
		Consumer: p.Consumer.View(),
	}
	if ev := p.Loop.Current(); ev != nil {
		snap.Event = ev.Name()
	}
	return snap
}

// Run starts the pipeline if needed and executes every event, calling
// observe (if non-nil) with the snapshot after each step.
func (p *Pipeline) Run(observe func(Snapshot)) error {
	if !p.started {
		if err := p.Start(); err != nil {
			return err
		}
	}
	for !p.Done() {
		snap, err := p.Step()
		if err != nil {
			return err
		}
		if observe != nil {
			observe(snap)
		}
	}
	logrus.Infof("[tick %07d] Simulation ended after %d steps", p.Loop.Clock(), p.Metrics.StepsExecuted)
	return nil
}
