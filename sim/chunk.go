package sim

import "fmt"

const (
	// ProgressFull is the progress of a chunk ready to be pushed, and the
	// starting progress of a chunk the consumer has just pulled.
	ProgressFull = 100
	// ProgressStep is the amount progress moves per fill or drain step.
	ProgressStep = 10
)

// Chunk is the unit of payload moving through the pipeline.
// A chunk has exactly one holder at a time: the producer while it is being
// filled, the queue while it waits, the consumer while it drains.
type Chunk struct {
	ID       int // monotonic, starts at 0
	Progress int // 0..100 in steps of ProgressStep
}

func (c *Chunk) String() string {
	return fmt.Sprintf("#%d(%d%%)", c.ID, c.Progress)
}

// Filled reports whether the producer has finished filling the chunk.
func (c *Chunk) Filled() bool {
	return c.Progress >= ProgressFull
}

// Drained reports whether the consumer has finished draining the chunk.
func (c *Chunk) Drained() bool {
	return c.Progress <= 0
}
