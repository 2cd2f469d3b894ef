package dmx

import (
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// UniverseSize is the number of channels in one DMX universe.
const UniverseSize = 512

// Universe holds channel values; channel n (1-based) lives at index n-1.
type Universe [UniverseSize]byte

// Channel returns the value of 1-based channel n, or 0 when n is out of range.
func (u *Universe) Channel(n int) byte {
	if n < 1 || n > UniverseSize {
		return 0
	}
	return u[n-1]
}

func (u *Universe) set(n int, v byte) { u[n-1] = v }

// Patch of the 2023 rig, 1-based.
const (
	BarsStart    = 1
	BarChannels  = rig.BarLength * 3
	DragonsStart = BarsStart + rig.BarCount*BarChannels // 289

	eyeSlots    = 7 // dimmer, R, G, B, 3 unused
	smokeSlots  = 6 // emit, color select, R, G, B, unused
	dragonSlots = 2*eyeSlots + smokeSlots

	// LastChannel is the highest channel the rig uses.
	LastChannel = DragonsStart + rig.DragonCount*dragonSlots - 1 // 328
)

// DragonStart is the first channel of dragon d's left eye.
func DragonStart(d rig.DragonID) int { return DragonsStart + int(d)*dragonSlots }

// Map writes s into u. Channels past LastChannel are left alone.
func Map(s rig.Snapshot, u *Universe) {
	ch := BarsStart
	for b := range s.Bars {
		for _, p := range s.Bars[b] {
			u.set(ch, p.R)
			u.set(ch+1, p.G)
			u.set(ch+2, p.B)
			ch += 3
		}
	}
	for d := range s.Dragons {
		ch = DragonStart(rig.DragonID(d))
		dr := s.Dragons[d]
		ch = mapEye(u, ch, dr.LeftEye)
		ch = mapEye(u, ch, dr.RightEye)
		mapSmoke(u, ch, dr.Smoke)
	}
}

func mapEye(u *Universe, ch int, p rig.Pixel) int {
	u.set(ch, 255)
	u.set(ch+1, p.R)
	u.set(ch+2, p.G)
	u.set(ch+3, p.B)
	for i := 4; i < eyeSlots; i++ {
		u.set(ch+i, 0)
	}
	return ch + eyeSlots
}

// mapSmoke drives the smoke unit; its LED ring glows green while emitting.
func mapSmoke(u *Universe, ch int, on bool) {
	var v byte
	if on {
		v = 255
	}
	u.set(ch, v)
	u.set(ch+1, 0)
	u.set(ch+2, 0)
	u.set(ch+3, v)
	u.set(ch+4, 0)
	u.set(ch+5, 0)
}
