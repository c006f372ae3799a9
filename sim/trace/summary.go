package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps           int
	BackpressureEpisodes int // times backpressure went from false to true
	DrainNotifications   int // steps that ended with the draining flag set
	MaxQueueDepth        int
	EndClock             int64
	EventCounts          map[string]int // event name → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		EventCounts: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalSteps = len(st.Steps)
	backpressure := false
	for _, s := range st.Steps {
		summary.EventCounts[s.Event]++
		if s.Backpressure && !backpressure {
			summary.BackpressureEpisodes++
		}
		backpressure = s.Backpressure
		if s.Draining {
			summary.DrainNotifications++
		}
		if s.QueueLength > summary.MaxQueueDepth {
			summary.MaxQueueDepth = s.QueueLength
		}
		if s.Clock > summary.EndClock {
			summary.EndClock = s.Clock
		}
	}

	return summary
}
