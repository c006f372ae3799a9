// Tracks run-wide counters: chunks moved, backpressure pauses, drain
// notifications, queue high-water mark.

package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Metrics aggregates statistics about one pipeline run
// for final reporting.
type Metrics struct {
	StepsExecuted      int   // events executed by the loop
	ChunksProduced     int   // chunks filled to 100 by the producer
	ChunksConsumed     int   // chunks drained to 0 by the consumer
	EndMarkers         int   // end markers received by the consumer
	BackpressurePauses int   // writes that filled the queue and paused the producer
	DrainNotifications int   // pulls that started against a full queue
	MaxQueueDepth      int   // highest queue length observed
	SimEndedTime       int64 // tick of the last executed event
}

// NewMetrics returns zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) observeQueueDepth(n int) {
	if n > m.MaxQueueDepth {
		m.MaxQueueDepth = n
	}
}

// SimulatedDuration converts SimEndedTime to a time.Duration.
func (m *Metrics) SimulatedDuration() time.Duration {
	return time.Duration(m.SimEndedTime) * time.Microsecond
}

// Print writes a human-readable summary. wall is the real time the run took.
func (m *Metrics) Print(w io.Writer, wall time.Duration) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Steps Executed       : %s\n", humanize.Comma(int64(m.StepsExecuted)))
	fmt.Fprintf(w, "Chunks Produced      : %d\n", m.ChunksProduced)
	fmt.Fprintf(w, "Chunks Consumed      : %d\n", m.ChunksConsumed)
	fmt.Fprintf(w, "End Markers          : %d\n", m.EndMarkers)
	fmt.Fprintf(w, "Backpressure Pauses  : %d\n", m.BackpressurePauses)
	fmt.Fprintf(w, "Drain Notifications  : %d\n", m.DrainNotifications)
	fmt.Fprintf(w, "Max Queue Depth      : %d\n", m.MaxQueueDepth)
	fmt.Fprintf(w, "Simulated Time       : %s\n", m.SimulatedDuration())
	fmt.Fprintf(w, "Wall Clock           : %s\n", wall.Round(time.Millisecond))
	if m.SimEndedTime > 0 {
		perSec := float64(m.ChunksConsumed) / m.SimulatedDuration().Seconds()
		fmt.Fprintf(w, "Throughput           : %s chunks/s (simulated)\n", humanize.FtoaWithDigits(perSec, 3))
	}
}
