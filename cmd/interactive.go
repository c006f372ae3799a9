package cmd

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// pausable is the part of *sim.Model the stdin controls drive.
type pausable interface {
	Start() error
	Pause() error
	IsPaused() bool
}

// readControls reads one command per line from r until EOF or ctx is done:
// "p" toggles pause/resume, "q" calls quit. Unknown input is ignored.
func readControls(ctx context.Context, r io.Reader, m pausable, quit func()) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "p":
			var err error
			if m.IsPaused() {
				err = m.Start()
			} else {
				err = m.Pause()
			}
			if err != nil {
				logrus.Warnf("toggle pause: %v", err)
			}
		case "q":
			quit()
			return
		}
	}
}
