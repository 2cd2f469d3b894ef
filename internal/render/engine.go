package render

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
	diag "github.com/coreman2200/funtimes-dragonstage/internal/diagnostics"
	"github.com/coreman2200/funtimes-dragonstage/internal/playback"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// Playback is the read side of the playback fact.
type Playback interface {
	Current() (playback.Current, bool)
}

// Options wires an Engine.
type Options struct {
	Registry *Registry
	Selector Selector
	Playback Playback
	Rig      *rig.Rig
	Bursts   Burster
	// Seed fixes the random source; 0 seeds from the clock.
	Seed   int64
	OnDiag func(diag.Diagnostic)
}

type slot struct {
	group     Group
	requested Spec
	active    string
	mode      Mode
	cue       string
	// fallback is set while mode stands in for a requested spec that failed to build.
	fallback bool
}

// Status is a read-only summary for health endpoints and visualizers.
type Status struct {
	Track   string  `json:"track"`
	Elapsed float64 `json:"elapsed"`
	Cue     string  `json:"cue"`
	Bars    string  `json:"bars"`
	Dragons string  `json:"dragons"`
	Pulses  uint64  `json:"pulses"`
	Beats   uint64  `json:"beats"`
	Faults  uint64  `json:"faults"`
}

// Engine selects, renders and commits one rig state per tick.
type Engine struct {
	mu  sync.Mutex
	reg *Registry
	sel Selector
	pb  Playback
	rig *rig.Rig
	env Env

	frame   *rig.Frame // last committed
	scratch *rig.Frame

	pulses, beats uint64
	slots         [2]*slot
	force         bool
	status        Status

	onDiag func(diag.Diagnostic)
	log    zerolog.Logger
}

func NewEngine(o Options) (*Engine, error) {
	if o.Registry == nil || o.Selector == nil || o.Playback == nil || o.Rig == nil {
		return nil, fmt.Errorf("engine: registry, selector, playback and rig are required")
	}
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &Engine{
		reg:     o.Registry,
		sel:     o.Selector,
		pb:      o.Playback,
		rig:     o.Rig,
		env:     Env{Rand: rand.New(rand.NewSource(seed)), Bursts: o.Bursts},
		frame:   rig.NewFrame(),
		scratch: rig.NewFrame(),
		slots:   [2]*slot{{group: Bars}, {group: Dragons}},
		onDiag:  o.OnDiag,
		log:     log.Logger.Sample(&zerolog.BurstSampler{Burst: 5, Period: time.Second}),
	}
	return e, nil
}

func (e *Engine) OnPulse() { e.OnTick(clock.Pulse) }
func (e *Engine) OnBeat()  { e.OnTick(clock.Beat) }

// Attach subscribes the engine to a tick source.
func (e *Engine) Attach(src clock.Source) {
	src.OnPulse(e.OnPulse)
	src.OnBeat(e.OnBeat)
}

// Force rebuilds both groups' mode state on the next tick.
func (e *Engine) Force() {
	e.mu.Lock()
	e.force = true
	e.mu.Unlock()
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// OnTick runs one full selection and render step and commits the result.
func (e *Engine) OnTick(kind clock.Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch kind {
	case clock.Pulse:
		e.pulses++
	case clock.Beat:
		e.beats++
	}
	t := Tick{Kind: kind, Pulse: e.pulses, Beat: e.beats}
	sel := e.selection()

	e.scratch.CopyFrom(e.frame)
	e.step(e.slots[Bars], sel.Bars, sel.Cue, t)
	e.step(e.slots[Dragons], sel.Dragons, sel.Cue, t)
	e.force = false

	e.frame.CopyFrom(e.scratch)
	e.rig.Commit(e.frame)

	e.status.Cue = sel.Cue
	e.status.Bars = e.slots[Bars].active
	e.status.Dragons = e.slots[Dragons].active
	e.status.Pulses, e.status.Beats = e.pulses, e.beats
}

func (e *Engine) selection() Selection {
	cur, ok := e.pb.Current()
	e.status.Track, e.status.Elapsed = cur.Track, cur.Elapsed
	switch {
	case !ok, cur.Track == "", cur.Track == playback.NoTrack:
		return e.sel.Default()
	case cur.Elapsed < 0, math.IsNaN(cur.Elapsed), math.IsInf(cur.Elapsed, 0):
		e.log.Warn().Float64("elapsed", cur.Elapsed).Str("track", cur.Track).Msg("invalid elapsed; using default")
		return e.sel.Default()
	}
	return e.sel.Select(cur.Track, cur.Elapsed)
}

func (e *Engine) step(s *slot, spec Spec, cue string, t Tick) {
	if spec.Mode == "" {
		spec.Mode = "off"
	}
	e.transition(s, spec, cue)
	if s.mode == nil {
		return
	}
	if err := e.render(s, t); err != nil {
		e.status.Faults++
		d := e.event(s, cue)
		d.Severity, d.Code, d.Summary, d.Detail = diag.Err, diag.RenderFailed, "render step failed; previous frame kept", err.Error()
		e.emit(d)
		e.restore(s.group)
		s.mode = nil
	}
}

func (e *Engine) transition(s *slot, spec Spec, cue string) {
	sameParams := reflect.DeepEqual(s.requested.Params, spec.Params)
	rebuild := s.mode == nil ||
		s.requested.Mode != spec.Mode ||
		e.force ||
		(spec.Reset && cue != s.cue) ||
		(s.fallback && !sameParams)
	defer func() { s.requested, s.cue = spec, cue }()

	if !rebuild {
		if sameParams {
			return
		}
		if err := s.mode.Update(spec.Params); err != nil {
			d := e.event(s, cue)
			d.Severity, d.Code, d.Summary, d.Detail = diag.Warn, diag.ParamsRejected, "param update rejected; previous params kept", err.Error()
			e.emit(d)
		}
		return
	}

	m, err := e.reg.Build(s.group, spec)
	if err == nil {
		s.mode, s.active, s.fallback = m, spec.Mode, false
		d := e.event(s, cue)
		d.Severity, d.Code, d.Summary = diag.Info, diag.ModeChanged, "mode start"
		e.emit(d)
		return
	}

	s.fallback = true
	s.mode, s.active = off(s.group), "off"
	fb := e.sel.Default().Bars
	if s.group == Dragons {
		fb = e.sel.Default().Dragons
	}
	if fb.Mode != spec.Mode {
		if m, ferr := e.reg.Build(s.group, fb); ferr == nil {
			s.mode, s.active = m, fb.Mode
		}
	}
	d := e.event(s, cue)
	d.Severity, d.Code, d.Summary, d.Detail = diag.Warn, diag.ModeUnavailable, "mode unavailable; default used", err.Error()
	d.Requested = spec.Mode
	e.emit(d)
}

func (e *Engine) render(s *slot, t Tick) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()
	return s.mode.Render(e.scratch, t, &e.env)
}

// restore puts the group's part of the scratch frame back to the last committed state.
func (e *Engine) restore(g Group) {
	if g == Dragons {
		e.scratch.Eyes = e.frame.Eyes
		return
	}
	for i := range e.scratch.Bars {
		_ = e.scratch.Bars[i].Replace(e.frame.Bars[i].Pixels())
	}
}

// event is a diagnostic prefilled with the group's mode and the playback position.
func (e *Engine) event(s *slot, cue string) diag.Diagnostic {
	return diag.Diagnostic{
		Time:    time.Now(),
		Group:   s.group.String(),
		Mode:    s.active,
		Cue:     cue,
		Track:   e.status.Track,
		Elapsed: e.status.Elapsed,
		Pulse:   e.pulses,
		Beat:    e.beats,
	}
}

func (e *Engine) emit(d diag.Diagnostic) {
	d.Log(e.log)
	if e.onDiag != nil {
		e.onDiag(d)
	}
}

func off(g Group) Mode {
	if g == Dragons {
		return &dragonsOff{}
	}
	return &barsOff{}
}
