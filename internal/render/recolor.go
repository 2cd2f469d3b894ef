package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// recolor repaints one group of bars at a time with a solid color, cycling
// through the groups on a musical cadence.
type recolor struct {
	groups   [][]int
	palettes map[int][]rig.Pixel
	palette  []rig.Pixel
	every    string
	pulses   int
	random   bool

	n int
}

func newRecolor(p Params) (Mode, error) {
	m := &recolor{}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *recolor) Name() string { return "recolor" }

func (m *recolor) Update(p Params) error {
	groups := p.Groups
	if len(groups) == 0 {
		groups = [][]int{{0, 2}, {1}}
	}
	for _, g := range groups {
		if len(g) == 0 {
			return fmt.Errorf("recolor: empty group: %w", ErrBadParams)
		}
		for _, b := range g {
			if b < 0 || b >= rig.BarCount {
				return fmt.Errorf("recolor: bar %d: %w", b, ErrBadParams)
			}
		}
	}
	switch p.Every {
	case "", "beat", "half_beat", "quarter_beat", "every_other_beat":
	default:
		return fmt.Errorf("recolor: cadence %q: %w", p.Every, ErrBadParams)
	}
	if p.Pulses < 0 {
		return fmt.Errorf("recolor: pulses %d: %w", p.Pulses, ErrBadParams)
	}

	m.groups = make([][]int, len(groups))
	for i, g := range groups {
		m.groups[i] = append([]int(nil), g...)
	}
	m.palettes = make(map[int][]rig.Pixel, len(p.GroupPalettes))
	for k, v := range p.GroupPalettes {
		m.palettes[k] = append([]rig.Pixel(nil), v...)
	}
	m.palette = append([]rig.Pixel(nil), p.Palette...)
	m.every, m.pulses, m.random = p.Every, p.Pulses, p.Random
	return nil
}

func (m *recolor) due(t Tick) bool {
	if m.pulses > 0 {
		return t.IsPulse() && t.Pulse%uint64(m.pulses) == 0
	}
	switch m.every {
	case "half_beat":
		return t.IsPulse() && t.Pulse%(clock.PulsesPerBeat/2) == 0
	case "quarter_beat":
		return t.IsPulse() && t.Pulse%(clock.PulsesPerBeat/4) == 0
	case "every_other_beat":
		return t.IsBeat() && t.Beat%2 == 0
	}
	return t.IsBeat()
}

func (m *recolor) Render(f *rig.Frame, t Tick, env *Env) error {
	if !m.due(t) {
		return nil
	}
	var g []int
	if m.random {
		g = m.groups[env.Rand.Intn(len(m.groups))]
	} else {
		g = m.groups[m.n%len(m.groups)]
	}
	m.n++

	lead := g[0]
	pal, ok := m.palettes[lead]
	if !ok {
		pal = m.palette
	}
	c := pickDifferent(env.Rand, pal, f.Bars[lead].At(0))
	for _, b := range g {
		f.Bars[b].Fill(c)
	}
	return nil
}
