package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-dragonstage/internal/layout"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

type barsOff struct{}

func newBarsOff(Params) (Mode, error) { return &barsOff{}, nil }

func (*barsOff) Name() string        { return "off" }
func (*barsOff) Update(Params) error { return nil }
func (*barsOff) Render(f *rig.Frame, _ Tick, _ *Env) error {
	fillAll(f, rig.Black)
	return nil
}

// steady holds one color on every bar.
type steady struct{ c rig.Pixel }

func newSteady(p Params) (Mode, error) { return &steady{c: p.color(rig.White)}, nil }

func (m *steady) Name() string { return "steady" }
func (m *steady) Update(p Params) error {
	m.c = p.color(rig.White)
	return nil
}
func (m *steady) Render(f *rig.Frame, _ Tick, _ *Env) error {
	fillAll(f, m.c)
	return nil
}

// blink flashes a new whole-rig color on every beat.
type blink struct {
	palette []rig.Pixel
	cur     rig.Pixel
}

func newBlink(p Params) (Mode, error) {
	return &blink{palette: append([]rig.Pixel(nil), p.Palette...)}, nil
}

func (m *blink) Name() string { return "blink" }
func (m *blink) Update(p Params) error {
	m.palette = append([]rig.Pixel(nil), p.Palette...)
	return nil
}
func (m *blink) Render(f *rig.Frame, t Tick, env *Env) error {
	if !t.IsBeat() {
		return nil
	}
	m.cur = pickDifferent(env.Rand, m.palette, m.cur)
	fillAll(f, m.cur)
	return nil
}

// rainbow gives every column its own random color on every beat.
type rainbow struct{}

func newRainbow(Params) (Mode, error) { return &rainbow{}, nil }

func (*rainbow) Name() string        { return "rainbow" }
func (*rainbow) Update(Params) error { return nil }
func (*rainbow) Render(f *rig.Frame, t Tick, env *Env) error {
	if !t.IsBeat() {
		return nil
	}
	for i := 0; i < rig.BarLength; i++ {
		c := randomColor(env.Rand)
		for _, b := range f.Bars {
			if err := b.Set(i, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// draw paints one more pixel of the wide surface per beat, left to right.
type draw struct{ cur rig.Pixel }

func newDraw(p Params) (Mode, error) {
	m := &draw{}
	if p.Color != nil {
		m.cur = *p.Color
	}
	return m, nil
}

func (m *draw) Name() string        { return "draw" }
func (m *draw) Update(Params) error { return nil }
func (m *draw) Render(f *rig.Frame, t Tick, env *Env) error {
	if !t.IsBeat() {
		return nil
	}
	i := int(t.Beat % rig.WideLength)
	if i == 0 || m.cur.IsBlack() {
		m.cur = randomColor(env.Rand)
	}
	return layout.Set(f, i, m.cur)
}

// sweep is the calibration pattern set used when rigging.
type sweep struct {
	pattern string
	step    int
}

func newSweep(p Params) (Mode, error) {
	m := &sweep{}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *sweep) Name() string { return "sweep" }
func (m *sweep) Update(p Params) error {
	switch p.Pattern {
	case "", "index":
		m.pattern = "index"
	case "rgb":
		m.pattern = "rgb"
	default:
		return fmt.Errorf("sweep pattern %q: %w", p.Pattern, ErrBadParams)
	}
	return nil
}
func (m *sweep) Render(f *rig.Frame, t Tick, _ *Env) error {
	switch m.pattern {
	case "index":
		if !t.IsPulse() {
			return nil
		}
		fillAll(f, rig.Black)
		if err := layout.Set(f, m.step%rig.WideLength, rig.White); err != nil {
			return err
		}
	case "rgb":
		if !t.IsBeat() {
			return nil
		}
		fillAll(f, [3]rig.Pixel{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}[m.step%3])
	}
	m.step++
	return nil
}
