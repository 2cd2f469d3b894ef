package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-dragonstage/internal/layout"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

const half = rig.WideLength / 2

// square runs a 5-pixel block across the wide surface, two pixels per pulse,
// starting on the first beat after activation.
type square struct {
	color   *rig.Pixel
	started bool
	n       int
}

func newSquare(p Params) (Mode, error) { return &square{color: p.Color}, nil }

func (m *square) Name() string { return "square" }
func (m *square) Update(p Params) error {
	if p.Color != nil {
		m.color = p.Color
	}
	return nil
}
func (m *square) Render(f *rig.Frame, t Tick, env *Env) error {
	if !m.started {
		if !t.IsBeat() {
			return nil
		}
		m.started = true
		if m.color == nil {
			c := randomColor(env.Rand)
			m.color = &c
		}
	} else if t.IsPulse() {
		m.n++
	}
	fillAll(f, rig.Black)
	for k := 0; k < 5; k++ {
		if err := layout.Set(f, (m.n*2+k)%rig.WideLength, *m.color); err != nil {
			return err
		}
	}
	return nil
}

// bounce moves a block one pixel per pulse around the wide surface and
// reverses direction every 96 pulses, restarting from the edge it now leaves.
type bounce struct {
	color  rig.Pixel
	width  int
	px     []rig.Pixel
	dir    int
	synced bool
	n      int
}

func newBounce(p Params) (Mode, error) {
	m := &bounce{px: make([]rig.Pixel, rig.WideLength), dir: -1}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *bounce) Name() string { return "bounce" }
func (m *bounce) Update(p Params) error {
	w := p.Width
	if w == 0 {
		w = 4
	}
	if w < 1 || w >= rig.WideLength {
		return fmt.Errorf("bounce width %d: %w", w, ErrBadParams)
	}
	m.width = w
	m.color = p.color(rig.Red)
	return nil
}
func (m *bounce) Render(f *rig.Frame, t Tick, _ *Env) error {
	if t.IsBeat() {
		m.synced = true
	}
	if !m.synced || !t.IsPulse() {
		return nil
	}
	if m.n%rig.WideLength == 0 {
		m.dir = -m.dir
		for i := range m.px {
			m.px[i] = rig.Black
		}
		start := 0
		if m.dir < 0 {
			start = rig.WideLength - m.width
		}
		for i := start; i < start+m.width; i++ {
			m.px[i] = m.color
		}
	}
	rotate(m.px, m.dir)
	m.n++
	return layout.Publish(f, m.px)
}

// grid scrolls pixels outward from the seam between the two halves of the wide
// surface, spawning a new pair at the seam every beat's worth of pulses.
type grid struct {
	color rig.Pixel
	px    []rig.Pixel
}

func newGrid(p Params) (Mode, error) {
	return &grid{color: p.color(magenta), px: make([]rig.Pixel, rig.WideLength)}, nil
}

func (m *grid) Name() string { return "grid" }
func (m *grid) Update(p Params) error {
	m.color = p.color(magenta)
	return nil
}
func (m *grid) Render(f *rig.Frame, t Tick, _ *Env) error {
	if t.IsPulse() {
		m.advance(t.Pulse)
	}
	return layout.Publish(f, m.px)
}

func (m *grid) advance(pulse uint64) {
	pc := int(pulse % half)
	if pc != 0 && pc%2 == 0 {
		k := pc/2 - 1
		left := m.px[:half-k]
		copy(left, left[1:])
		left[len(left)-1] = rig.Black
		right := m.px[half+k:]
		copy(right[1:], right[:len(right)-1])
		right[0] = rig.Black
	}
	if pulse%24 == 0 {
		m.px[half-1] = m.color
		m.px[half] = m.color
	}
}

// wheel mirrors a quarter palette four times and spins the two halves in
// opposite directions, one step per pulse.
type wheel struct {
	quarter []rig.Pixel
	offset  int
	px      []rig.Pixel
}

func newWheel(p Params) (Mode, error) {
	m := &wheel{px: make([]rig.Pixel, rig.WideLength)}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *wheel) Name() string { return "wheel" }

// Update swaps the palette but keeps the current rotation.
func (m *wheel) Update(p Params) error {
	q, err := quarterPalette(p)
	if err != nil {
		return err
	}
	m.quarter = q
	m.build()
	return nil
}

func (m *wheel) build() {
	q := m.quarter
	base := concat(q, reversed(q), q, reversed(q))
	copy(m.px, base)
	rotate(m.px[:half], -m.offset)
	rotate(m.px[half:], m.offset)
}

func (m *wheel) Render(f *rig.Frame, t Tick, _ *Env) error {
	if t.IsPulse() {
		m.offset = (m.offset + 1) % half
		rotate(m.px[:half], -1)
		rotate(m.px[half:], 1)
	}
	return layout.Publish(f, m.px)
}

// quarterPalette resolves a 24-entry palette, stretching explicit palettes of other lengths.
func quarterPalette(p Params) ([]rig.Pixel, error) {
	const n = rig.WideLength / 4
	src := p.Palette
	if len(src) == 0 {
		name := p.PaletteName
		if name == "" {
			name = "purple"
		}
		named, ok := namedPalettes[name]
		if !ok {
			return nil, fmt.Errorf("palette %q: %w", name, ErrBadParams)
		}
		src = named
	}
	out := make([]rig.Pixel, n)
	for i := range out {
		out[i] = src[i*len(src)/n]
	}
	return out, nil
}
