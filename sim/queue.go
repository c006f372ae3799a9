// Implements the BoundedQueue, which holds chunks written by the producer
// until the consumer pulls them.

package sim

import (
	"fmt"
	"strings"
)

// BoundedQueue is a FIFO queue of chunks with a capacity fixed at construction.
// Its length never exceeds the capacity: Enqueue on a full queue fails with a
// *CapacityError instead of growing or dropping.
type BoundedQueue struct {
	capacity int
	queue    []*Chunk // FIFO queue of chunks
}

// NewBoundedQueue creates an empty queue. Panics if capacity < 1.
func NewBoundedQueue(capacity int) *BoundedQueue {
	if capacity < 1 {
		panic(fmt.Sprintf("NewBoundedQueue: capacity must be >= 1, got %d", capacity))
	}
	return &BoundedQueue{
		capacity: capacity,
		queue:    make([]*Chunk, 0, capacity),
	}
}

// Enqueue adds a chunk to the back of the queue.
func (bq *BoundedQueue) Enqueue(c *Chunk) error {
	if c == nil {
		panic("Enqueue: chunk must not be nil")
	}
	if bq.Full() {
		return &CapacityError{Capacity: bq.capacity, ChunkID: c.ID}
	}
	bq.queue = append(bq.queue, c)
	return nil
}

// Dequeue removes the chunk at the front of the queue.
// Returns nil if the queue is empty.
func (bq *BoundedQueue) Dequeue() *Chunk {
	if len(bq.queue) == 0 {
		return nil
	}
	c := bq.queue[0]
	bq.queue[0] = nil
	bq.queue = bq.queue[1:]
	return c
}

// Peek returns the chunk at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (bq *BoundedQueue) Peek() *Chunk {
	if len(bq.queue) == 0 {
		return nil
	}
	return bq.queue[0]
}

// Len returns the number of chunks in the queue.
func (bq *BoundedQueue) Len() int {
	return len(bq.queue)
}

// Cap returns the capacity fixed at construction.
func (bq *BoundedQueue) Cap() int {
	return bq.capacity
}

// Full reports whether the queue has no remaining room.
func (bq *BoundedQueue) Full() bool {
	return len(bq.queue) >= bq.capacity
}

// Items returns the queue contents, front first.
// The returned slice is the queue's internal storage: callers may iterate
// over it but MUST NOT append to or reslice it.
func (bq *BoundedQueue) Items() []*Chunk {
	return bq.queue
}

func (bq *BoundedQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range bq.queue {
		sb.WriteString(c.String())
		if i < len(bq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString(fmt.Sprintf("]/%d", bq.capacity))
	return sb.String()
}
