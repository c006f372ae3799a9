package sim

import "github.com/inference-sim/backpressure-sim/sim/trace"

// ChunkView is a copy of a chunk's observable fields.
type ChunkView struct {
	ID       int `json:"id" yaml:"id"`
	Progress int `json:"progress" yaml:"progress"`
}

// QueueView is a copy of the queue's contents, front first.
type QueueView struct {
	Capacity int         `json:"capacity" yaml:"capacity"`
	Chunks   []ChunkView `json:"chunks" yaml:"chunks"`
}

// ProducerView is the observable state of the producer.
type ProducerView struct {
	State        ProducerState `json:"state" yaml:"state"`
	Chunk        *ChunkView    `json:"chunk" yaml:"chunk"`
	Backpressure bool          `json:"backpressure" yaml:"backpressure"`
}

// ConsumerView is the observable state of the consumer.
type ConsumerView struct {
	State    ConsumerState `json:"state" yaml:"state"`
	Chunk    *ChunkView    `json:"chunk" yaml:"chunk"`
	Queue    QueueView     `json:"queue" yaml:"queue"`
	Draining bool          `json:"draining" yaml:"draining"`
}

// Snapshot is a read-only projection of the pipeline taken after a step.
// It shares no memory with the live components.
type Snapshot struct {
	Step     int          `json:"step" yaml:"step"`
	Time     int64        `json:"time" yaml:"time"`
	Event    string       `json:"event" yaml:"event"`
	Producer ProducerView `json:"producer" yaml:"producer"`
	Consumer ConsumerView `json:"consumer" yaml:"consumer"`
}

func viewOf(c *Chunk) *ChunkView {
	if c == nil {
		return nil
	}
	return &ChunkView{ID: c.ID, Progress: c.Progress}
}

// View returns a snapshot of the producer.
func (p *Producer) View() ProducerView {
	return ProducerView{
		State:        p.state,
		Chunk:        viewOf(p.chunk),
		Backpressure: p.backpressure,
	}
}

// View returns a snapshot of the consumer and its queue.
func (c *Consumer) View() ConsumerView {
	items := c.queue.Items()
	chunks := make([]ChunkView, len(items))
	for i, ch := range items {
		chunks[i] = ChunkView{ID: ch.ID, Progress: ch.Progress}
	}
	return ConsumerView{
		State:    c.state,
		Chunk:    viewOf(c.chunk),
		Queue:    QueueView{Capacity: c.queue.Cap(), Chunks: chunks},
		Draining: c.draining,
	}
}

// TraceRecord flattens the snapshot into a trace.StepRecord.
func (s Snapshot) TraceRecord() trace.StepRecord {
	rec := trace.StepRecord{
		Step:          s.Step,
		Clock:         s.Time,
		Event:         s.Event,
		ProducerState: string(s.Producer.State),
		ConsumerState: string(s.Consumer.State),
		ProducerChunk: -1,
		ConsumerChunk: -1,
		QueueLength:   len(s.Consumer.Queue.Chunks),
		QueueCapacity: s.Consumer.Queue.Capacity,
		Backpressure:  s.Producer.Backpressure,
		Draining:      s.Consumer.Draining,
	}
	if s.Producer.Chunk != nil {
		rec.ProducerChunk = s.Producer.Chunk.ID
	}
	if s.Consumer.Chunk != nil {
		rec.ConsumerChunk = s.Consumer.Chunk.ID
	}
	return rec
}
