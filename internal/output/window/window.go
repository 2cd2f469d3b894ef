package window

import (
	"errors"
	"image"
	"sync"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// ErrHeadless is returned by Run in builds without a window system.
var ErrHeadless = errors.New("built headless; no window available")

// Stage geometry in cells.
const (
	margin    = 2
	gap       = 2
	barTop    = 7
	barHeight = 2
	eyeSize   = 2
	cellsWide = margin*2 + rig.BarCount*rig.BarLength + (rig.BarCount-1)*gap
	cellsHigh = barTop + barHeight + margin + 2 // status line below the bars
)

// Window draws the rig on the desktop. It is an output adapter; Run must be
// called from the main goroutine.
type Window struct {
	Title string
	Scale int
	// Status, when set, is printed under the bars.
	Status func() string

	mu     sync.Mutex
	snap   rig.Snapshot
	frames uint64
	closed bool
}

func New(scale int) *Window {
	if scale <= 0 {
		scale = 10
	}
	return &Window{Title: "dragonstage", Scale: scale}
}

func (w *Window) Name() string { return "window" }

func (w *Window) Write(s rig.Snapshot) error {
	w.mu.Lock()
	w.snap = s
	w.frames++
	w.mu.Unlock()
	return nil
}

// Close asks a running window to exit.
func (w *Window) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

func (w *Window) state() (rig.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap, w.closed
}

// Size is the canvas size in pixels.
func (w *Window) Size() (int, int) { return cellsWide * w.Scale, cellsHigh * w.Scale }

// pixelRect is the cell of bar pixel i, in canvas pixels.
func (w *Window) pixelRect(b rig.BarID, i int) image.Rectangle {
	x := margin + int(b)*(rig.BarLength+gap) + i
	return cells(x, barTop, 1, barHeight, w.Scale)
}

// eyeRect places the dragons over the outer ends of the side bars.
func (w *Window) eyeRect(d rig.DragonID, eye int) image.Rectangle {
	x := margin + eye*(eyeSize+1)
	if d == rig.DragonRight {
		x = cellsWide - margin - 2*eyeSize - 1 + eye*(eyeSize+1)
	}
	return cells(x, margin, eyeSize, eyeSize, w.Scale)
}

// smokeRect sits under a dragon's eyes.
func (w *Window) smokeRect(d rig.DragonID) image.Rectangle {
	e := w.eyeRect(d, 0)
	return image.Rect(e.Min.X, e.Max.Y+w.Scale, e.Min.X+(2*eyeSize+1)*w.Scale, e.Max.Y+2*w.Scale)
}

func cells(x, y, cw, ch, scale int) image.Rectangle {
	return image.Rect(x*scale, y*scale, (x+cw)*scale, (y+ch)*scale)
}
