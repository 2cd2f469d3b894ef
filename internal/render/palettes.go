package render

import (
	"math/rand"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// Shared pattern tables. Modes copy these before mutating.

var (
	orange   = rig.RGB(237, 112, 20)
	magenta  = rig.RGB(255, 0, 255)
	sentinel = rig.RGB(107, 107, 107)
)

func repeat(p rig.Pixel, n int) []rig.Pixel {
	out := make([]rig.Pixel, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func concat(parts ...[]rig.Pixel) []rig.Pixel {
	var out []rig.Pixel
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func reversed(in []rig.Pixel) []rig.Pixel {
	out := make([]rig.Pixel, len(in))
	for i, p := range in {
		out[len(in)-1-i] = p
	}
	return out
}

var skyBlue = concat(
	repeat(rig.RGB(0, 191, 255), 8),
	repeat(rig.RGB(135, 206, 235), 8),
	repeat(rig.RGB(135, 206, 250), 6),
	repeat(rig.RGB(173, 216, 230), 6),
	repeat(rig.RGB(176, 224, 230), 4),
)

var skyPurple = concat(
	repeat(rig.RGB(148, 0, 211), 8),
	repeat(rig.RGB(186, 85, 211), 8),
	repeat(rig.RGB(255, 0, 255), 8),
	repeat(rig.RGB(238, 130, 238), 8),
)

var halfSun = concat(
	repeat(rig.RGB(255, 140, 0), 6),
	repeat(rig.RGB(255, 165, 0), 6),
	repeat(rig.RGB(255, 255, 102), 2),
	repeat(rig.RGB(255, 255, 0), 2),
)

var wheelPurple = []rig.Pixel{
	{75, 0, 130}, {128, 0, 128}, {139, 0, 139}, {139, 0, 139},
	{153, 50, 204}, {153, 50, 204}, {148, 0, 211}, {148, 0, 211},
	{138, 43, 226}, {138, 43, 226}, {147, 112, 219}, {147, 112, 219},
	{186, 85, 211}, {186, 85, 211}, {218, 112, 214}, {218, 112, 214},
	{238, 130, 238}, {238, 130, 238}, {221, 160, 221}, {221, 160, 221},
	{216, 191, 216}, {216, 191, 216}, {230, 230, 250}, {230, 230, 250},
}

var wheelOrange = func() []rig.Pixel {
	greens := []uint8{127, 130, 134, 138, 143, 147, 150, 154, 158, 162, 166, 170,
		174, 178, 182, 186, 190, 194, 198, 202, 221, 225, 229, 233}
	out := make([]rig.Pixel, len(greens))
	for i, g := range greens {
		out[i] = rig.RGB(255, g, 66)
	}
	return out
}()

// namedPalettes are the quarter palettes usable by name from a show file.
var namedPalettes = map[string][]rig.Pixel{
	"purple": wheelPurple,
	"orange": wheelOrange,
}

func randomColor(r *rand.Rand) rig.Pixel {
	return rig.RGB(uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)))
}

// pickDifferent draws from palette (or the full color space when empty), avoiding prev
// unless nothing else is available.
func pickDifferent(r *rand.Rand, palette []rig.Pixel, prev rig.Pixel) rig.Pixel {
	if len(palette) == 0 {
		for {
			if c := randomColor(r); c != prev {
				return c
			}
		}
	}
	cand := make([]rig.Pixel, 0, len(palette))
	for _, c := range palette {
		if c != prev {
			cand = append(cand, c)
		}
	}
	if len(cand) == 0 {
		return palette[r.Intn(len(palette))]
	}
	return cand[r.Intn(len(cand))]
}

// rotate shifts px by n positions towards higher indices, wrapping around.
func rotate(px []rig.Pixel, n int) {
	l := len(px)
	if l == 0 {
		return
	}
	n %= l
	if n < 0 {
		n += l
	}
	if n == 0 {
		return
	}
	tmp := make([]rig.Pixel, l)
	for i, p := range px {
		tmp[(i+n)%l] = p
	}
	copy(px, tmp)
}

func fillAll(f *rig.Frame, p rig.Pixel) {
	for _, b := range f.Bars {
		b.Fill(p)
	}
}
