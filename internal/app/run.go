package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
)

// Run drives the tick source and the output loop until ctx is done, then
// stops bursts and closes every output.
func (c *Core) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	stop := c.startClock(ctx, &wg)

	var loopErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		loopErr = c.Loop.Run(ctx)
	}()

	<-ctx.Done()
	if stop != nil {
		stop()
	}
	wg.Wait()
	if err := c.Bursts.Close(); err != nil {
		log.Warn().Err(err).Msg("close bursts")
	}
	log.Info().Uint64("frames", c.Loop.Frames()).Uint64("commits", c.Rig.Commits()).Msg("show stopped")
	return loopErr
}

// startClock connects the configured tick source. A MIDI port that cannot be
// opened falls back to the internal generator.
func (c *Core) startClock(ctx context.Context, wg *sync.WaitGroup) (stop func()) {
	cc := c.Cfg.Clock
	if cc.Source == "midi" {
		s, err := clock.ListenMIDI(cc.Port, c.Clock)
		if err == nil {
			return s
		}
		log.Warn().Err(err).Strs("available", clock.InPorts()).Msg("MIDI clock unavailable; using internal tempo")
	}
	g := &clock.Generator{Clock: c.Clock, BPM: cc.BPM}
	log.Info().Float64("bpm", cc.BPM).Dur("pulse", g.Interval()).Msg("internal clock")
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.Run(ctx)
	}()
	return nil
}
