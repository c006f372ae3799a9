package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ConsumerState is the lifecycle state of the Consumer.
type ConsumerState string

const (
	ConsumerIdling    ConsumerState = "idling"
	ConsumerResuming  ConsumerState = "resuming"
	ConsumerPulling   ConsumerState = "pulling"
	ConsumerConsuming ConsumerState = "consuming"
	ConsumerFlushing  ConsumerState = "flushing"
	ConsumerFinished  ConsumerState = "finished"
)

// DrainListener is notified when a pull begins against a full queue.
type DrainListener func() error

// Consumer owns the bounded queue and drains chunks from it one at a time.
//
// State machine (initial idling, terminal finished):
//
//	idling -> resuming -> pulling -> consuming|flushing -> idling|pulling|finished
//
// The consumer counts chunk progress down from 100 to 0 while draining.
type Consumer struct {
	loop     *EventLoop
	metrics  *Metrics
	state    ConsumerState
	rate     rate
	queue    *BoundedQueue
	chunk    *Chunk // chunk being drained, nil when none
	draining bool

	drainListeners []DrainListener
	endRequested   bool
}

// NewConsumer creates an idling consumer with an empty queue.
// metrics may be nil.
func NewConsumer(loop *EventLoop, cfg ConsumerConfig, src *rand.Rand, metrics *Metrics) *Consumer {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Consumer{
		loop:    loop,
		metrics: metrics,
		state:   ConsumerIdling,
		rate:    newRate(cfg.Delay, src),
		queue:   NewBoundedQueue(cfg.Capacity),
	}
}

// Write hands a chunk to the consumer. A nil chunk is the end marker: it
// requests end and returns false without touching the queue.
//
// The returned bool is true iff the queue still has room after the write;
// false tells the producer to stop writing until a drain notification.
// Writing into a full queue fails with a *CapacityError.
func (c *Consumer) Write(chunk *Chunk) (bool, error) {
	if chunk == nil {
		c.metrics.EndMarkers++
		c.End()
		return false, nil
	}

	if err := c.queue.Enqueue(chunk); err != nil {
		return false, err
	}
	c.metrics.observeQueueDepth(c.queue.Len())
	if c.state == ConsumerIdling {
		c.resume()
	}
	return !c.queue.Full(), nil
}

// SubscribeOnDrain registers a listener. Listeners run synchronously, in
// registration order, on every pull that starts with a full queue.
func (c *Consumer) SubscribeOnDrain(listener DrainListener) {
	if listener == nil {
		panic("SubscribeOnDrain: listener must not be nil")
	}
	c.drainListeners = append(c.drainListeners, listener)
}

// End requests the consumer to finish once its queue is empty.
// Only the first call has an effect. An idling consumer has nothing left to
// drain, so it finishes right away.
func (c *Consumer) End() {
	if c.endRequested {
		return
	}
	c.endRequested = true
	if c.state == ConsumerIdling {
		logrus.Debugf("consumer: end requested while idle, finishing")
		c.state = ConsumerFinished
	}
}

func (c *Consumer) resume() {
	c.state = ConsumerResuming
	c.loop.ScheduleImmediate(consumerStep{c, stepPull})
}

func (c *Consumer) pull() error {
	c.state = ConsumerPulling
	c.draining = c.queue.Full()
	if c.draining {
		c.metrics.DrainNotifications++
		for _, listener := range c.drainListeners {
			if err := listener(); err != nil {
				return err
			}
		}
	}

	c.chunk = c.queue.Dequeue()
	c.loop.ScheduleImmediate(consumerStep{c, stepConsume})
	return nil
}

func (c *Consumer) consume() error {
	if c.endRequested {
		c.state = ConsumerFlushing
	} else {
		c.state = ConsumerConsuming
	}
	c.draining = false

	if c.chunk.Drained() {
		c.rate.reroll()
		c.loop.ScheduleImmediate(consumerStep{c, stepCheck})
		return nil
	}
	c.chunk.Progress -= ProgressStep
	c.loop.Schedule(c.rate.step(), consumerStep{c, stepConsume})
	return nil
}

// check runs after a chunk is fully drained: pull the next one or go quiet.
func (c *Consumer) check() error {
	c.metrics.ChunksConsumed++
	if c.queue.Len() > 0 {
		return c.pull()
	}
	c.chunk = nil
	if c.endRequested {
		c.state = ConsumerFinished
		logrus.Infof("[tick %07d] consumer finished", c.loop.Clock())
	} else {
		c.state = ConsumerIdling
	}
	return nil
}

// State returns the current state.
func (c *Consumer) State() ConsumerState { return c.state }

// Chunk returns the chunk being drained, or nil.
func (c *Consumer) Chunk() *Chunk { return c.chunk }

// Queue returns the consumer's queue. Callers must not modify it.
func (c *Consumer) Queue() *BoundedQueue { return c.queue }

// Draining reports whether the current pull started against a full queue.
func (c *Consumer) Draining() bool { return c.draining }

// EndRequested reports whether the end marker has been received.
func (c *Consumer) EndRequested() bool { return c.endRequested }

type consumerStepKind int

const (
	stepPull consumerStepKind = iota
	stepConsume
	stepCheck
)

// consumerStep is a scheduled consumer action.
type consumerStep struct {
	c    *Consumer
	kind consumerStepKind
}

func (s consumerStep) Name() string {
	switch s.kind {
	case stepPull:
		return "pull"
	case stepConsume:
		return "consume"
	default:
		return "check"
	}
}

func (s consumerStep) Execute() error {
	switch s.kind {
	case stepPull:
		return s.c.pull()
	case stepConsume:
		return s.c.consume()
	default:
		return s.c.check()
	}
}
