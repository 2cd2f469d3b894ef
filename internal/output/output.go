package output

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// DefaultRefreshHz matches the DMX refresh rate of the physical rig.
const DefaultRefreshHz = 44

// Adapter pushes rig snapshots to one output device.
type Adapter interface {
	Name() string
	Write(s rig.Snapshot) error
	Close() error
}

// Source is the read side of the fixture model.
type Source interface {
	Snapshot() rig.Snapshot
}

// Loop reads the rig at a fixed rate and fans each snapshot out to every adapter.
// It is the only reader on the output path and never blocks the tick path.
type Loop struct {
	Source   Source
	Adapters []Adapter
	RateHz   float64

	frames  uint64
	failing map[string]bool
	log     zerolog.Logger
}

func NewLoop(src Source, rate float64, adapters ...Adapter) *Loop {
	if rate <= 0 {
		rate = DefaultRefreshHz
	}
	return &Loop{
		Source:   src,
		Adapters: adapters,
		RateHz:   rate,
		failing:  map[string]bool{},
		log:      log.Logger.Sample(&zerolog.BurstSampler{Burst: 3, Period: 5 * time.Second}),
	}
}

// Run refreshes until ctx is done, then closes every adapter.
func (l *Loop) Run(ctx context.Context) error {
	tick := time.NewTicker(time.Duration(float64(time.Second) / l.RateHz))
	defer tick.Stop()
	log.Info().Float64("hz", l.RateHz).Int("adapters", len(l.Adapters)).Msg("output loop start")
	for {
		select {
		case <-ctx.Done():
			return l.Close()
		case <-tick.C:
			_ = l.Once()
		}
	}
}

// Once takes one snapshot and writes it everywhere. A failing adapter does not
// stop the others.
func (l *Loop) Once() error {
	s := l.Source.Snapshot()
	l.frames++
	var errs []error
	for _, a := range l.Adapters {
		err := a.Write(s)
		switch {
		case err != nil:
			errs = append(errs, err)
			if !l.failing[a.Name()] {
				log.Error().Err(err).Str("adapter", a.Name()).Msg("output write failed")
			} else {
				l.log.Warn().Err(err).Str("adapter", a.Name()).Uint64("frame", l.frames).Msg("output still failing")
			}
			l.failing[a.Name()] = true
		case l.failing[a.Name()]:
			log.Info().Str("adapter", a.Name()).Msg("output recovered")
			l.failing[a.Name()] = false
		}
	}
	return errors.Join(errs...)
}

func (l *Loop) Frames() uint64 { return l.frames }

func (l *Loop) Close() error {
	var errs []error
	for _, a := range l.Adapters {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
