package render

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// dragonsOff darkens the eyes and kills any smoke on entry.
type dragonsOff struct{ cancelled bool }

func newDragonsOff(Params) (Mode, error) { return &dragonsOff{}, nil }

func (*dragonsOff) Name() string        { return "off" }
func (*dragonsOff) Update(Params) error { return nil }
func (m *dragonsOff) Render(f *rig.Frame, _ Tick, env *Env) error {
	f.Eyes = [rig.DragonCount][2]rig.Pixel{}
	if !m.cancelled && env.Bursts != nil {
		env.Bursts.CancelAll()
		m.cancelled = true
	}
	return nil
}

// eyes holds a steady eye color.
type eyes struct {
	color   rig.Pixel
	dragons []rig.DragonID
}

func newEyes(p Params) (Mode, error) {
	m := &eyes{}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *eyes) Name() string { return "eyes" }
func (m *eyes) Update(p Params) error {
	ds, err := dragonIDs(p.Dragons)
	if err != nil {
		return err
	}
	m.color, m.dragons = p.color(rig.Red), ds
	return nil
}
func (m *eyes) Render(f *rig.Frame, _ Tick, _ *Env) error {
	f.Eyes = [rig.DragonCount][2]rig.Pixel{}
	for _, d := range m.dragons {
		f.SetEyes(d, m.color)
	}
	return nil
}

// fire watches the bars for the train's sentinel lamp and breathes smoke from
// whichever dragon it is passing under, alternating sides.
type fire struct {
	color    rig.Pixel
	sentinel rig.Pixel
	pos      int
	last     rig.DragonID
}

func newFire(p Params) (Mode, error) {
	m := &fire{last: rig.DragonRight}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *fire) Name() string { return "fire" }
func (m *fire) Update(p Params) error {
	pos := rig.BarLength - 1
	if p.Position != nil {
		pos = *p.Position
	}
	if pos < 0 || pos >= rig.BarLength {
		return fmt.Errorf("fire position %d: %w", pos, ErrBadParams)
	}
	m.pos = pos
	m.color = p.color(rig.Red)
	m.sentinel = sentinel
	if p.Sentinel != nil {
		m.sentinel = *p.Sentinel
	}
	return nil
}

func (m *fire) Render(f *rig.Frame, t Tick, env *Env) error {
	f.SetEyes(rig.DragonLeft, m.color)
	f.SetEyes(rig.DragonRight, rig.Black)
	if !t.IsBeat() {
		return nil
	}

	switch {
	case f.Bar(rig.BarLeft).At(m.pos) == m.sentinel:
		if m.last == rig.DragonRight {
			m.breathe(env, rig.DragonLeft)
		}
	case f.Bar(rig.BarCenter).At(m.pos) == m.sentinel:
		if m.last == rig.DragonLeft {
			m.breathe(env, rig.DragonRight)
		}
	}
	return nil
}

func (m *fire) breathe(env *Env, d rig.DragonID) {
	m.last = d
	if env.Bursts == nil {
		return
	}
	if !env.Bursts.Burst(d) {
		log.Debug().Str("dragon", d.String()).Msg("burst not started")
	}
}

func dragonIDs(in []int) ([]rig.DragonID, error) {
	if len(in) == 0 {
		return []rig.DragonID{rig.DragonLeft, rig.DragonRight}, nil
	}
	out := make([]rig.DragonID, 0, len(in))
	for _, d := range in {
		if d < 0 || d >= rig.DragonCount {
			return nil, fmt.Errorf("dragon %d: %w", d, ErrBadParams)
		}
		out = append(out, rig.DragonID(d))
	}
	return out, nil
}
