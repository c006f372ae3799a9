package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalSteps != 0 || summary.MaxQueueDepth != 0 || summary.EndClock != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if summary.EventCounts == nil {
		t.Error("expected non-nil event counts")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalSteps != 0 {
		t.Errorf("expected 0 steps, got %d", summary.TotalSteps)
	}
	if summary.BackpressureEpisodes != 0 || summary.DrainNotifications != 0 {
		t.Error("expected 0 backpressure episodes and drain notifications")
	}
	if len(summary.EventCounts) != 0 {
		t.Error("expected empty event counts")
	}
}

func TestSummarize_BackpressureEpisodes_CountsRisingEdges(t *testing.T) {
	// GIVEN backpressure held over several steps, released, then raised again
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	for i, bp := range []bool{false, true, true, true, false, true, false} {
		st.RecordStep(StepRecord{Step: i + 1, Event: "write", Backpressure: bp})
	}

	// WHEN summarized
	summary := Summarize(st)

	// THEN each pause episode is counted once
	if summary.BackpressureEpisodes != 2 {
		t.Errorf("expected 2 backpressure episodes, got %d", summary.BackpressureEpisodes)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with mixed records
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	st.RecordStep(StepRecord{Step: 1, Clock: 0, Event: "produce"})
	st.RecordStep(StepRecord{Step: 2, Clock: 100, Event: "write", QueueLength: 2})
	st.RecordStep(StepRecord{Step: 3, Clock: 100, Event: "pull", QueueLength: 1, Draining: true})
	st.RecordStep(StepRecord{Step: 4, Clock: 300, Event: "produce", QueueLength: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalSteps != 4 {
		t.Errorf("expected 4 steps, got %d", summary.TotalSteps)
	}
	if summary.DrainNotifications != 1 {
		t.Errorf("expected 1 drain notification, got %d", summary.DrainNotifications)
	}
	if summary.MaxQueueDepth != 2 {
		t.Errorf("expected max queue depth 2, got %d", summary.MaxQueueDepth)
	}
	if summary.EndClock != 300 {
		t.Errorf("expected end clock 300, got %d", summary.EndClock)
	}
	if summary.EventCounts["produce"] != 2 {
		t.Errorf("expected 2 produce events, got %d", summary.EventCounts["produce"])
	}
}
