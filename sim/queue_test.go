package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedQueue_FIFO(t *testing.T) {
	// GIVEN a queue with chunks [0, 1, 2]
	bq := NewBoundedQueue(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, bq.Enqueue(&Chunk{ID: i}))
	}

	// WHEN all are dequeued
	var ids []int
	for bq.Len() > 0 {
		ids = append(ids, bq.Dequeue().ID)
	}

	// THEN they come out in insertion order
	assert.Equal(t, []int{0, 1, 2}, ids)
}

func TestBoundedQueue_Enqueue_Full_ReturnsCapacityError(t *testing.T) {
	// GIVEN a full queue of capacity 2
	bq := NewBoundedQueue(2)
	require.NoError(t, bq.Enqueue(&Chunk{ID: 0}))
	require.NoError(t, bq.Enqueue(&Chunk{ID: 1}))
	require.True(t, bq.Full())

	// WHEN another chunk is enqueued
	err := bq.Enqueue(&Chunk{ID: 2})

	// THEN it is rejected with a typed error and the queue is unchanged
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueueFull))
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 2, capErr.Capacity)
	assert.Equal(t, 2, capErr.ChunkID)
	assert.Equal(t, 2, bq.Len())
}

func TestBoundedQueue_Peek(t *testing.T) {
	bq := NewBoundedQueue(2)
	assert.Nil(t, bq.Peek())

	c := &Chunk{ID: 5}
	require.NoError(t, bq.Enqueue(c))
	assert.Same(t, c, bq.Peek())
	assert.Equal(t, 1, bq.Len(), "Peek must not remove")
}

func TestBoundedQueue_Dequeue_Empty_ReturnsNil(t *testing.T) {
	bq := NewBoundedQueue(1)
	assert.Nil(t, bq.Dequeue())
}

func TestBoundedQueue_Full_TracksRoom(t *testing.T) {
	bq := NewBoundedQueue(2)
	assert.False(t, bq.Full())
	require.NoError(t, bq.Enqueue(&Chunk{ID: 0}))
	assert.False(t, bq.Full())
	require.NoError(t, bq.Enqueue(&Chunk{ID: 1}))
	assert.True(t, bq.Full())
	bq.Dequeue()
	assert.False(t, bq.Full())
	assert.Equal(t, 2, bq.Cap())
}

func TestBoundedQueue_String(t *testing.T) {
	bq := NewBoundedQueue(3)
	require.NoError(t, bq.Enqueue(&Chunk{ID: 0, Progress: 100}))
	require.NoError(t, bq.Enqueue(&Chunk{ID: 1, Progress: 100}))
	assert.Equal(t, "[#0(100%) #1(100%)]/3", bq.String())
}

func TestNewBoundedQueue_ZeroCapacity_Panics(t *testing.T) {
	assert.Panics(t, func() { NewBoundedQueue(0) })
}

func TestBoundedQueue_Enqueue_Nil_Panics(t *testing.T) {
	bq := NewBoundedQueue(1)
	assert.Panics(t, func() { _ = bq.Enqueue(nil) })
}
