package actuator

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// DefaultBurst is how long a smoke burst lasts.
const DefaultBurst = time.Second

// Smoker is the write side of the fixture model used by bursts.
type Smoker interface {
	SetSmoke(d rig.DragonID, on bool)
}

type burst struct {
	gen   uint64
	timer *time.Timer
}

// Scheduler runs fixed-duration smoke bursts without blocking the caller.
// A request for a dragon that is already smoking is ignored.
type Scheduler struct {
	mu       sync.Mutex
	target   Smoker
	duration time.Duration
	active   map[rig.DragonID]*burst
	gen      uint64
	closed   bool

	// afterFunc is swapped in tests.
	afterFunc func(time.Duration, func()) *time.Timer
}

func NewScheduler(target Smoker, d time.Duration) *Scheduler {
	if d <= 0 {
		d = DefaultBurst
	}
	return &Scheduler{
		target:    target,
		duration:  d,
		active:    map[rig.DragonID]*burst{},
		afterFunc: time.AfterFunc,
	}
}

func (s *Scheduler) Duration() time.Duration { return s.duration }

// Burst turns smoke on for d now and off after the burst duration.
// It reports whether a new burst started.
func (s *Scheduler) Burst(d rig.DragonID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Warn().Str("dragon", d.String()).Msg("burst requested after close")
		return false
	}
	if _, busy := s.active[d]; busy {
		log.Debug().Str("dragon", d.String()).Msg("burst already active; ignored")
		return false
	}
	s.gen++
	b := &burst{gen: s.gen}
	s.target.SetSmoke(d, true)
	b.timer = s.afterFunc(s.duration, func() { s.finish(d, b.gen) })
	if b.timer == nil {
		s.target.SetSmoke(d, false)
		log.Error().Str("dragon", d.String()).Msg("could not schedule burst end; smoke forced off")
		return false
	}
	s.active[d] = b
	log.Debug().Str("dragon", d.String()).Dur("for", s.duration).Msg("smoke burst")
	return true
}

func (s *Scheduler) finish(d rig.DragonID, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.active[d]
	if !ok || b.gen != gen {
		return
	}
	delete(s.active, d)
	s.target.SetSmoke(d, false)
}

// Active reports whether d is mid-burst.
func (s *Scheduler) Active(d rig.DragonID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[d]
	return ok
}

// Cancel ends any burst on d and forces smoke off immediately.
func (s *Scheduler) Cancel(d rig.DragonID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(d)
}

func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for d := rig.DragonID(0); d < rig.DragonCount; d++ {
		s.cancelLocked(d)
	}
}

func (s *Scheduler) cancelLocked(d rig.DragonID) {
	if b, ok := s.active[d]; ok {
		b.timer.Stop()
		delete(s.active, d)
	}
	s.target.SetSmoke(d, false)
}

// Close cancels everything; later Burst calls are refused.
func (s *Scheduler) Close() error {
	s.CancelAll()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
