package layout

import (
	"fmt"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// The wide surface is the three bars laid end to end: left, center, right.

// Locate maps a wide index (0..95) to its bar and pixel.
func Locate(i int) (rig.BarID, int, error) {
	if i < 0 || i >= rig.WideLength {
		return 0, 0, fmt.Errorf("wide index %d: %w", i, rig.ErrOutOfRange)
	}
	return rig.BarID(i / rig.BarLength), i % rig.BarLength, nil
}

// Index is the inverse of Locate.
func Index(b rig.BarID, px int) int { return int(b)*rig.BarLength + px }

// Split cuts a 96-pixel surface into three bars.
func Split(wide []rig.Pixel) ([rig.BarCount][]rig.Pixel, error) {
	var out [rig.BarCount][]rig.Pixel
	if len(wide) != rig.WideLength {
		return out, fmt.Errorf("split %d pixels: %w", len(wide), rig.ErrLengthMismatch)
	}
	for b := range out {
		out[b] = wide[b*rig.BarLength : (b+1)*rig.BarLength]
	}
	return out, nil
}

// Publish writes a 96-pixel surface into the bars of f.
func Publish(f *rig.Frame, wide []rig.Pixel) error {
	bars, err := Split(wide)
	if err != nil {
		return err
	}
	for b, px := range bars {
		if err := f.Bars[b].Replace(px); err != nil {
			return err
		}
	}
	return nil
}

// Join reads the bars of f back into one surface.
func Join(f *rig.Frame) []rig.Pixel {
	out := make([]rig.Pixel, 0, rig.WideLength)
	for _, b := range f.Bars {
		out = append(out, b.Pixels()...)
	}
	return out
}

// Set paints one wide-surface pixel.
func Set(f *rig.Frame, i int, p rig.Pixel) error {
	b, px, err := Locate(i)
	if err != nil {
		return err
	}
	return f.Bars[b].Set(px, p)
}
