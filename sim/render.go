package sim

import "time"

// Renderer presents a snapshot. The returned channel is closed once the frame
// is done; the Model does not take another step before that.
type Renderer interface {
	Draw(snap Snapshot) <-chan struct{}
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(snap Snapshot) <-chan struct{}

func (f RendererFunc) Draw(snap Snapshot) <-chan struct{} { return f(snap) }

var closedFrame = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Completed returns an already-closed frame channel, for renderers that
// finish synchronously.
func Completed() <-chan struct{} { return closedFrame }

// NopRenderer discards every snapshot.
type NopRenderer struct{}

func (NopRenderer) Draw(Snapshot) <-chan struct{} { return closedFrame }

// Pacer maps the simulated delay to the next event onto wall-clock time.
type Pacer func(ticks int64) time.Duration

// ScaledPacer plays simulated time back at speed times real time.
// speed <= 0 disables pacing entirely.
func ScaledPacer(speed float64) Pacer {
	return func(ticks int64) time.Duration {
		if speed <= 0 || ticks <= 0 {
			return 0
		}
		return time.Duration(float64(ticks) * float64(time.Microsecond) / speed)
	}
}
