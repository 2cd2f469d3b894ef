//go:build !headless

package window

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

var (
	background = color.RGBA{R: 12, G: 12, B: 16, A: 255}
	smokeColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	unlit      = color.RGBA{R: 30, G: 30, B: 34, A: 255}
)

// Run opens the window and blocks until it is closed.
func (w *Window) Run() error {
	ww, wh := w.Size()
	ebiten.SetWindowSize(ww, wh)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(&game{w: w})
}

type game struct{ w *Window }

func (g *game) Update() error {
	if _, closed := g.w.state(); closed {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	snap, _ := g.w.state()
	for b := range snap.Bars {
		for i, p := range snap.Bars[b] {
			fill(screen, g.w.pixelRect(rig.BarID(b), i), p.Color())
		}
	}
	for d := range snap.Dragons {
		dr := snap.Dragons[d]
		fill(screen, g.w.eyeRect(rig.DragonID(d), 0), dr.LeftEye.Color())
		fill(screen, g.w.eyeRect(rig.DragonID(d), 1), dr.RightEye.Color())
		c := unlit
		if dr.Smoke {
			c = smokeColor
		}
		fill(screen, g.w.smokeRect(rig.DragonID(d)), c)
	}
	if g.w.Status != nil {
		_, h := g.w.Size()
		ebitenutil.DebugPrintAt(screen, g.w.Status(), margin*g.w.Scale, h-2*g.w.Scale)
	}
}

func (g *game) Layout(_, _ int) (int, int) { return g.w.Size() }

func fill(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}
