package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-dragonstage/internal/layout"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// sun draws a sky with a sun in the middle, optionally revealing it beat by beat
// and swinging it up to eight pixels each way.
type sun struct {
	purple, shift, fadeIn bool

	fade     int
	shiftPos int
	shiftDir int
}

func newSun(p Params) (Mode, error) {
	m := &sun{shiftDir: 1}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *sun) Name() string { return "sun" }
func (m *sun) Update(p Params) error {
	m.purple, m.shift = p.PurpleSky, p.BeatShift
	if m.fadeIn && !p.FadeIn {
		m.fade = 0
	}
	m.fadeIn = p.FadeIn
	return nil
}

func (m *sun) Render(f *rig.Frame, t Tick, _ *Env) error {
	if !t.IsBeat() {
		return nil
	}
	sky := skyBlue
	if m.purple {
		sky = skyPurple
	}
	px := concat(sky, halfSun, reversed(halfSun), reversed(sky))
	rotate(px, m.shiftPos)

	var err error
	if m.fadeIn {
		err = m.reveal(f, px)
		m.fade++
	} else {
		err = layout.Publish(f, px)
	}
	if err != nil {
		return err
	}

	if m.shift {
		m.shiftPos += m.shiftDir
		if m.shiftPos%8 == 0 && m.shiftPos != 0 {
			m.shiftDir = -m.shiftDir
		}
	}
	return nil
}

// reveal fills the sky in from the outer ends, then the sun from the center out.
func (m *sun) reveal(f *rig.Frame, px []rig.Pixel) error {
	const n = rig.BarLength
	switch {
	case m.fade <= n:
		left := concat(px[:m.fade], repeat(rig.Black, n-m.fade))
		if err := f.Bar(rig.BarLeft).Replace(left); err != nil {
			return err
		}
		if err := f.Bar(rig.BarRight).Replace(reversed(left)); err != nil {
			return err
		}
		f.Bar(rig.BarCenter).Clear()
	case m.fade < n+n/2+1:
		c := m.fade - n
		halfBar := concat(px[n:n+c], repeat(rig.Black, n/2-c))
		return f.Bar(rig.BarCenter).Replace(concat(halfBar, reversed(halfBar)))
	}
	return nil
}

// train scrolls two trains across the rig, one pixel per beat. Each train's
// last lamp is the sentinel the dragon choreography watches for.
type train struct{ px []rig.Pixel }

func trainPattern() []rig.Pixel {
	body := []rig.Pixel{}
	for i := 0; i < 7; i++ {
		body = append(body, rig.RGB(128, 68, 28), rig.RGB(128, 68, 28), rig.RGB(10, 10, 10))
	}
	body = append(body, repeat(rig.RGB(25, 25, 255), 3)...)
	body = append(body, sentinel)
	return concat(body, repeat(rig.Black, 35), body, repeat(rig.Black, 36))
}

func newTrain(Params) (Mode, error) { return &train{px: trainPattern()}, nil }

func (m *train) Name() string        { return "train" }
func (m *train) Update(Params) error { return nil }
func (m *train) Render(f *rig.Frame, t Tick, _ *Env) error {
	if !t.IsBeat() {
		return nil
	}
	if err := layout.Publish(f, m.px[:rig.WideLength]); err != nil {
		return err
	}
	rotate(m.px, 1)
	return nil
}

// glow breathes one color channel on a triangle wave measured in pulses.
type glow struct {
	ch     int
	peak   int
	period int
	bars   []int
	n      int
}

func newGlow(p Params) (Mode, error) {
	m := &glow{}
	if err := m.Update(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *glow) Name() string { return "glow" }
func (m *glow) Update(p Params) error {
	ch, err := channelIndex(p.Channel)
	if err != nil {
		return err
	}
	period := p.Period
	if period == 0 {
		period = 22
	}
	if period < 2 {
		return fmt.Errorf("glow period %d: %w", period, ErrBadParams)
	}
	peak := p.Max
	if peak == 0 {
		peak = 255
	}
	if peak < 0 || peak > 255 {
		return fmt.Errorf("glow max %d: %w", peak, ErrBadParams)
	}
	bars := p.Bars
	if len(bars) == 0 {
		bars = []int{0, 1, 2}
	}
	for _, b := range bars {
		if b < 0 || b >= rig.BarCount {
			return fmt.Errorf("glow bar %d: %w", b, ErrBadParams)
		}
	}
	m.ch, m.period, m.peak, m.bars = ch, period, peak, append([]int(nil), bars...)
	return nil
}

func (m *glow) Render(f *rig.Frame, t Tick, _ *Env) error {
	v := uint8(glowLevel(m.n, m.period, m.peak))
	var c rig.Pixel
	switch m.ch {
	case 0:
		c.R = v
	case 1:
		c.G = v
	default:
		c.B = v
	}
	fillAll(f, rig.Black)
	for _, b := range m.bars {
		f.Bars[b].Fill(c)
	}
	if t.IsPulse() {
		m.n++
	}
	return nil
}

// glowLevel is a triangle wave: 0 at the start of a period, peak exactly once at period/2.
func glowLevel(counter, period, peak int) int {
	h := period / 2
	c := counter % period
	if c <= h {
		return peak * c / h
	}
	return peak * (period - c) / (period - h)
}

func channelIndex(s string) (int, error) {
	switch s {
	case "r", "red":
		return 0, nil
	case "g", "green":
		return 1, nil
	case "", "b", "blue":
		return 2, nil
	}
	return 0, fmt.Errorf("channel %q: %w", s, ErrBadParams)
}

// noot sweeps orange blocks out and back on the side bars, then hands over to a
// blue and red siren on the center bar, on a 96-pulse cycle.
type noot struct {
	synced bool
	n      int
}

func newNoot(Params) (Mode, error) { return &noot{}, nil }

func (m *noot) Name() string        { return "noot" }
func (m *noot) Update(Params) error { return nil }
func (m *noot) Render(f *rig.Frame, t Tick, _ *Env) error {
	if !m.synced {
		if !t.IsBeat() {
			return nil
		}
		m.synced = true
	}
	phase := m.n % rig.WideLength
	if err := nootSweep(f.Bar(rig.BarLeft), phase, true); err != nil {
		return err
	}
	if err := nootSweep(f.Bar(rig.BarRight), phase, false); err != nil {
		return err
	}

	center := f.Bar(rig.BarCenter)
	if phase > 36 {
		f.Bar(rig.BarLeft).Clear()
		f.Bar(rig.BarRight).Clear()
		m22 := m.n % 22
		for i := 0; i < rig.BarLength; i++ {
			v := uint8(sirenLevel(i, m22))
			p := rig.RGB(v, 0, 0)
			if i < rig.BarLength/2 {
				p = rig.RGB(0, 0, v)
			}
			if err := center.Set(i, p); err != nil {
				return err
			}
		}
	} else {
		center.Clear()
	}

	if t.IsPulse() {
		m.n++
	}
	return nil
}

func sirenLevel(pos, m22 int) int {
	step := (255 / 11) * ((m22 + pos) % 11)
	if m22 < 11 {
		return step
	}
	return 255 - step
}

// nootSweep paints 5-pixel blocks out from one end of b and clears them back.
func nootSweep(b *rig.Buffer, phase int, fromRight bool) error {
	px := b.Pixels()
	if fromRight {
		px = reversed(px)
	}
	block := func(i int, c rig.Pixel) {
		for k := 0; k < 5; k++ {
			px[i*5+k] = c
		}
	}
	switch {
	case phase <= 4:
		block(phase, orange)
	case phase <= 9:
		block(9-phase, rig.Black)
	case phase >= 20 && phase <= 25:
		block(phase-20, orange)
	case phase >= 26 && phase <= 31:
		block(31-phase, rig.Black)
	}
	if fromRight {
		px = reversed(px)
	}
	return b.Replace(px)
}
