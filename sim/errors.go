package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned (wrapped in a *CapacityError) when a chunk is
	// written to a queue that is already at capacity. It means the writer
	// ignored backpressure and is never a retryable condition.
	ErrQueueFull = errors.New("queue is at capacity")

	// ErrInvalidTransition is returned (wrapped in a *TransitionError) when an
	// operation is invoked from a state that does not allow it.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNoEvents is returned by EventLoop.Execute when nothing is pending.
	ErrNoEvents = errors.New("no pending events")
)

// CapacityError reports a write into a full BoundedQueue.
type CapacityError struct {
	Capacity int
	ChunkID  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("write of chunk %d rejected: queue holds %d of %d", e.ChunkID, e.Capacity, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrQueueFull }

// TransitionError reports an operation invoked from a state that forbids it.
type TransitionError struct {
	Component string // "producer", "consumer" or "model"
	Op        string
	From      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s", e.Component, e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
