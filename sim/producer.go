package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ProducerState is the lifecycle state of the Producer.
type ProducerState string

const (
	ProducerPaused    ProducerState = "paused"
	ProducerResuming  ProducerState = "resuming"
	ProducerProducing ProducerState = "producing"
	ProducerPushing   ProducerState = "pushing"
	ProducerEnded     ProducerState = "ended"
)

// ChunkWriter is the downstream side of the producer.
// Write returns false when the producer must stop writing (queue full or end).
type ChunkWriter interface {
	Write(chunk *Chunk) (bool, error)
}

// DrainSource lets the producer learn when its downstream has room again.
type DrainSource interface {
	SubscribeOnDrain(listener DrainListener)
}

// Downstream is what a Producer writes into; *Consumer implements it.
type Downstream interface {
	ChunkWriter
	DrainSource
}

// Producer fills a fixed number of chunks and writes them downstream,
// pausing whenever a write reports backpressure.
//
// State machine (initial paused, terminal ended):
//
//	paused -> resuming -> producing <-> (fill loop) -> pushing -> producing|paused ... -> ended
type Producer struct {
	loop         *EventLoop
	metrics      *Metrics
	consumer     ChunkWriter
	state        ProducerState
	rate         rate
	count        int
	produced     int
	chunk        *Chunk // chunk being filled, nil once count is reached
	backpressure bool
}

// NewProducer creates a paused producer and subscribes it to consumer's drain
// notifications, which is the only way it leaves a backpressure pause.
// metrics may be nil.
func NewProducer(loop *EventLoop, consumer Downstream, cfg ProducerConfig, src *rand.Rand, metrics *Metrics) *Producer {
	if metrics == nil {
		metrics = NewMetrics()
	}
	p := &Producer{
		loop:     loop,
		metrics:  metrics,
		consumer: consumer,
		state:    ProducerPaused,
		rate:     newRate(cfg.Delay, src),
		count:    cfg.Count,
	}
	if cfg.Count > 0 {
		p.chunk = &Chunk{ID: 0}
	}
	consumer.SubscribeOnDrain(p.onDrain)
	return p
}

func (p *Producer) onDrain() error {
	p.backpressure = false
	return p.Resume()
}

// Resume restarts production. Valid only while paused.
func (p *Producer) Resume() error {
	if p.state != ProducerPaused {
		return &TransitionError{Component: "producer", Op: "resume", From: string(p.state)}
	}
	p.state = ProducerResuming
	p.loop.ScheduleImmediate(producerStep{p, stepProduce})
	return nil
}

func (p *Producer) produce() error {
	if p.chunk == nil {
		return p.end()
	}

	p.state = ProducerProducing
	if p.chunk.Filled() {
		p.rate.reroll()
		p.produced++
		p.metrics.ChunksProduced++
		p.loop.Schedule(0, producerStep{p, stepPush})
		return nil
	}
	p.chunk.Progress += ProgressStep
	p.loop.Schedule(p.rate.step(), producerStep{p, stepProduce})
	return nil
}

func (p *Producer) push() error {
	p.state = ProducerPushing
	p.loop.ScheduleImmediate(producerStep{p, stepWrite})
	return nil
}

func (p *Producer) write() error {
	ok, err := p.consumer.Write(p.chunk)
	if err != nil {
		return err
	}
	p.backpressure = !ok

	// The written chunk now belongs to the consumer.
	if p.produced < p.count {
		p.chunk = &Chunk{ID: p.chunk.ID + 1}
	} else {
		p.chunk = nil
	}

	if p.backpressure {
		p.state = ProducerPaused
		p.metrics.BackpressurePauses++
		logrus.Debugf("[tick %07d] producer paused by backpressure", p.loop.Clock())
		return nil
	}
	return p.produce()
}

func (p *Producer) end() error {
	p.state = ProducerEnded
	p.backpressure = false
	p.loop.Schedule(0, producerStep{p, stepWriteEnd})
	return nil
}

func (p *Producer) writeEnd() error {
	_, err := p.consumer.Write(nil)
	return err
}

// State returns the current state.
func (p *Producer) State() ProducerState { return p.state }

// Chunk returns the chunk being filled, or nil.
func (p *Producer) Chunk() *Chunk { return p.chunk }

// Backpressure reports whether the last write filled the downstream queue.
func (p *Producer) Backpressure() bool { return p.backpressure }

// Produced returns how many chunks have been filled and handed to push.
func (p *Producer) Produced() int { return p.produced }

type producerStepKind int

const (
	stepProduce producerStepKind = iota
	stepPush
	stepWrite
	stepWriteEnd
)

// producerStep is a scheduled producer action.
type producerStep struct {
	p    *Producer
	kind producerStepKind
}

func (s producerStep) Name() string {
	switch s.kind {
	case stepProduce:
		return "produce"
	case stepPush:
		return "push"
	case stepWrite:
		return "write"
	default:
		return "write-end"
	}
}

func (s producerStep) Execute() error {
	switch s.kind {
	case stepProduce:
		return s.p.produce()
	case stepPush:
		return s.p.push()
	case stepWrite:
		return s.p.write()
	default:
		return s.p.writeEnd()
	}
}
