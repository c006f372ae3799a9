package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	sim "github.com/inference-sim/backpressure-sim/sim"
)

// newRenderer returns the renderer selected by --render.
func newRenderer(mode string, w io.Writer) (sim.Renderer, error) {
	switch mode {
	case "text":
		return &textRenderer{w: w}, nil
	case "jsonl":
		return &jsonlRenderer{enc: json.NewEncoder(w)}, nil
	case "none", "":
		return sim.NopRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q (valid: text, jsonl, none)", mode)
	}
}

// textRenderer prints one line per step:
//
//	[tick 0002100] #  14 produce   Producer: Producing #1(30%) | Queue [#0(100%)]/4 | Consumer: Consuming #0(60%)
type textRenderer struct {
	w io.Writer
}

func (r *textRenderer) Draw(s sim.Snapshot) <-chan struct{} {
	var b strings.Builder
	fmt.Fprintf(&b, "[tick %07d] #%4d %-9s Producer: %-9s %-9s | Queue %s | Consumer: %-9s %s",
		s.Time, s.Step, s.Event,
		label(string(s.Producer.State)), chunkText(s.Producer.Chunk),
		queueText(s.Consumer.Queue),
		label(string(s.Consumer.State)), chunkText(s.Consumer.Chunk))
	if s.Producer.Backpressure {
		b.WriteString("  Backpressure!")
	}
	if s.Consumer.Draining {
		b.WriteString("  Draining!")
	}
	fmt.Fprintln(r.w, strings.TrimRight(b.String(), " "))
	return sim.Completed()
}

// jsonlRenderer writes each snapshot as one JSON object per line.
type jsonlRenderer struct {
	enc *json.Encoder
}

func (r *jsonlRenderer) Draw(s sim.Snapshot) <-chan struct{} {
	if err := r.enc.Encode(s); err != nil {
		logrus.Warnf("jsonl renderer: %v", err)
	}
	return sim.Completed()
}

// label capitalises a state name for display.
func label(state string) string {
	if state == "" {
		return state
	}
	runes := []rune(state)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func chunkText(c *sim.ChunkView) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("#%d(%d%%)", c.ID, c.Progress)
}

func queueText(q sim.QueueView) string {
	parts := make([]string, len(q.Chunks))
	for i := range q.Chunks {
		parts[i] = chunkText(&q.Chunks[i])
	}
	return fmt.Sprintf("[%s]/%d", strings.Join(parts, " "), q.Capacity)
}
