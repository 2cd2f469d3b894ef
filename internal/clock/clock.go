package clock

import (
	"sync"
	"time"
)

// PulsesPerBeat is the MIDI clock resolution.
const PulsesPerBeat = 24

type Kind int

const (
	Pulse Kind = iota
	Beat
)

func (k Kind) String() string {
	if k == Beat {
		return "BEAT"
	}
	return "PULSE"
}

// Source is anything that delivers PULSE and BEAT notifications.
type Source interface {
	OnPulse(func())
	OnBeat(func())
}

// Clock fans incoming pulses out to subscribers and derives a beat every 24 pulses.
// Dispatch is synchronous and serialized: one tick finishes before the next starts.
type Clock struct {
	subMu sync.RWMutex
	pulse []func()
	beat  []func()

	mu       sync.Mutex
	phase    int
	running  bool
	last     time.Time
	interval time.Duration
	now      func() time.Time
}

func New() *Clock { return &Clock{now: time.Now} }

func (c *Clock) OnPulse(cb func()) {
	c.subMu.Lock()
	c.pulse = append(c.pulse, cb)
	c.subMu.Unlock()
}

func (c *Clock) OnBeat(cb func()) {
	c.subMu.Lock()
	c.beat = append(c.beat, cb)
	c.subMu.Unlock()
}

// Pulse handles one clock message. Pulse callbacks run first; on every 24th pulse the
// beat callbacks follow.
func (c *Clock) Pulse() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.last.IsZero() {
		d := now.Sub(c.last)
		if c.interval == 0 {
			c.interval = d
		} else {
			c.interval = (c.interval*7 + d) / 8
		}
	}
	c.last = now
	c.running = true

	c.subMu.RLock()
	pulse, beat := c.pulse, c.beat
	c.subMu.RUnlock()

	for _, cb := range pulse {
		cb()
	}
	c.phase++
	if c.phase < PulsesPerBeat {
		return
	}
	c.phase = 0
	for _, cb := range beat {
		cb()
	}
}

// Start realigns the beat phase (MIDI start).
func (c *Clock) Start() {
	c.mu.Lock()
	c.phase = 0
	c.running = true
	c.last = time.Time{}
	c.mu.Unlock()
}

// Stop realigns the beat phase and forgets the tempo estimate (MIDI stop).
func (c *Clock) Stop() {
	c.mu.Lock()
	c.phase = 0
	c.running = false
	c.last = time.Time{}
	c.interval = 0
	c.mu.Unlock()
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// BPM estimates the tempo from pulse spacing; 0 until two pulses arrived.
func (c *Clock) BPM() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interval <= 0 {
		return 0
	}
	return float64(time.Minute) / float64(c.interval*PulsesPerBeat)
}
