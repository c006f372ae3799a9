// sim/simulator.go
package sim

import (
	"container/heap"
	"time"

	"github.com/sirupsen/logrus"
)

// EventLoop is the discrete-event scheduler. It holds two kinds of pending
// events:
//   - timed events, ordered by (time, insertion order)
//   - immediate events, which always run before any timed event; the most
//     recently inserted immediate event runs first
//
// The event being executed is held by the loop, so delays passed to Schedule
// are relative to it. Separate loops share nothing.
type EventLoop struct {
	timed     timedQueue
	immediate []*Event // stack: last element is the front of the schedule
	current   *Event
	nextSeq   uint64
	executed  int
	startedAt time.Time
}

// NewEventLoop creates an empty EventLoop.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		timed:     make(timedQueue, 0),
		startedAt: time.Now(),
	}
}

func (l *EventLoop) now() int64 {
	if l.current == nil {
		return 0
	}
	return l.current.time
}

// Schedule inserts a timed event delay ticks after the executing event
// (or after time 0 when nothing has executed yet).
func (l *EventLoop) Schedule(delay int64, step Step) *Event {
	if delay < 0 {
		panic("Schedule: delay must not be negative")
	}
	ev := l.newEvent(step)
	ev.delay = delay
	ev.time = l.now() + delay
	heap.Push(&l.timed, ev)
	return ev
}

// ScheduleImmediate inserts an event at the current time, in front of
// everything pending, including timed events with equal or earlier times.
func (l *EventLoop) ScheduleImmediate(step Step) *Event {
	ev := l.newEvent(step)
	ev.time = l.now()
	ev.immediate = true
	l.immediate = append(l.immediate, ev)
	return ev
}

func (l *EventLoop) newEvent(step Step) *Event {
	if step == nil {
		panic("schedule: step must not be nil")
	}
	l.nextSeq++
	return &Event{
		seq:    l.nextSeq,
		parent: l.current,
		step:   step,
	}
}

// Peek returns the event that Execute would run next, or nil.
func (l *EventLoop) Peek() *Event {
	if n := len(l.immediate); n > 0 {
		return l.immediate[n-1]
	}
	if len(l.timed) > 0 {
		return l.timed[0]
	}
	return nil
}

func (l *EventLoop) pop() *Event {
	if n := len(l.immediate); n > 0 {
		ev := l.immediate[n-1]
		l.immediate[n-1] = nil
		l.immediate = l.immediate[:n-1]
		return ev
	}
	return heap.Pop(&l.timed).(*Event)
}

// NextEventDelay returns the simulated time between the executing event and
// the next pending one. It is 0 before the first event runs and when nothing
// is pending. It is meant for pacing only; ordering never depends on it.
func (l *EventLoop) NextEventDelay() int64 {
	next := l.Peek()
	if l.current == nil || next == nil {
		return 0
	}
	return next.time - l.current.time
}

// Execute removes the next event, makes it current and runs its step.
// The step's error is returned unchanged.
func (l *EventLoop) Execute() error {
	if l.Empty() {
		return ErrNoEvents
	}
	ev := l.pop()
	l.current = ev
	l.executed++
	logrus.Debugf("%d: [tick %07d] %s (delay %d)", time.Since(l.startedAt).Milliseconds(), ev.time, ev.Name(), ev.delay)
	return ev.step.Execute()
}

// Run executes events until none remain or one fails.
func (l *EventLoop) Run() error {
	for !l.Empty() {
		if err := l.Execute(); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether no events are pending.
func (l *EventLoop) Empty() bool {
	return len(l.immediate) == 0 && len(l.timed) == 0
}

// Len returns the number of pending events.
func (l *EventLoop) Len() int {
	return len(l.immediate) + len(l.timed)
}

// Current returns the event executing now (or executed last), nil before the first.
func (l *EventLoop) Current() *Event {
	return l.current
}

// Clock returns the time of the current event.
func (l *EventLoop) Clock() int64 {
	return l.now()
}

// Executed returns how many events have run.
func (l *EventLoop) Executed() int {
	return l.executed
}
