package sim

// TicksPerMillisecond converts configured delays (milliseconds) into
// simulated time. One tick is one microsecond.
const TicksPerMillisecond = 1000

// stepTicks is the simulated time of one progress step for a chunk whose
// whole fill or drain takes rateMs milliseconds.
func stepTicks(rateMs int64) int64 {
	return rateMs * TicksPerMillisecond * ProgressStep / ProgressFull
}

// Step is the action carried by an Event.
// Steps are small values holding a component handle and the kind of step to
// take, so they read component state when they run, not when they were scheduled.
type Step interface {
	Name() string
	Execute() error
}

// Event is a scheduled Step together with its position in simulated time.
type Event struct {
	time   int64  // simulated time at which the event runs (in ticks)
	delay  int64  // delay relative to the parent event (0 for immediate events)
	seq    uint64 // insertion order, breaks ties between equal times
	parent *Event // event that was executing when this one was scheduled
	step   Step

	immediate bool
}

// Timestamp returns the scheduled time of the event.
func (e *Event) Timestamp() int64 { return e.time }

// Delay returns the delay the event was scheduled with.
func (e *Event) Delay() int64 { return e.delay }

// Parent returns the event that scheduled this one, or nil for root events.
func (e *Event) Parent() *Event { return e.parent }

// Immediate reports whether the event was inserted at the front of the schedule.
func (e *Event) Immediate() bool { return e.immediate }

// Name returns the name of the event's step.
func (e *Event) Name() string { return e.step.Name() }

// timedQueue implements heap.Interface and orders events by (time, seq),
// so events with equal times run in insertion order.
type timedQueue []*Event

func (q timedQueue) Len() int { return len(q) }

func (q timedQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].seq < q[j].seq
}

func (q timedQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timedQueue) Push(x any) {
	*q = append(*q, x.(*Event))
}

func (q *timedQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[0 : n-1]
	return item
}
