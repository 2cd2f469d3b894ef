package fake

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// Adapter keeps the last snapshot and logs a compact summary (average bar color,
// first pixel, eyes, smoke) every Every frames. Useful headless and in tests.
type Adapter struct {
	Every int

	mu     sync.Mutex
	count  int
	last   rig.Snapshot
	closed bool
}

func New(every int) *Adapter { return &Adapter{Every: every} }

func (a *Adapter) Name() string { return "fake" }

func (a *Adapter) Write(s rig.Snapshot) error {
	a.mu.Lock()
	a.count++
	a.last = s
	n := a.count
	a.mu.Unlock()

	if a.Every <= 0 || n%a.Every != 0 {
		return nil
	}
	var r, g, b int
	wide := s.Wide()
	for _, p := range wide {
		r += int(p.R)
		g += int(p.G)
		b += int(p.B)
	}
	k := len(wide)
	log.Info().
		Int("frame", n).
		Ints("avg", []int{r / k, g / k, b / k}).
		Str("first", wide[0].String()).
		Str("eyes_l", s.Dragons[rig.DragonLeft].LeftEye.String()).
		Str("eyes_r", s.Dragons[rig.DragonRight].LeftEye.String()).
		Bool("smoke_l", s.Dragons[rig.DragonLeft].Smoke).
		Bool("smoke_r", s.Dragons[rig.DragonRight].Smoke).
		Msg("frame")
	return nil
}

// Last returns the most recent snapshot and how many were written.
func (a *Adapter) Last() (rig.Snapshot, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.count
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return nil
}

func (a *Adapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
