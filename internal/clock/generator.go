package clock

import (
	"context"
	"time"
)

// Generator drives a Clock from a fixed tempo when no external clock is present.
type Generator struct {
	Clock *Clock
	BPM   float64
}

// Interval is the time between pulses at the configured tempo.
func (g *Generator) Interval() time.Duration {
	bpm := g.BPM
	if bpm <= 0 {
		bpm = 120
	}
	return time.Duration(float64(time.Minute) / (bpm * PulsesPerBeat))
}

// Run pulses the clock until ctx is done.
func (g *Generator) Run(ctx context.Context) {
	tick := time.NewTicker(g.Interval())
	defer tick.Stop()
	g.Clock.Start()
	for {
		select {
		case <-ctx.Done():
			g.Clock.Stop()
			return
		case <-tick.C:
			g.Clock.Pulse()
		}
	}
}
