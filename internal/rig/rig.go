package rig

import "sync"

const (
	BarLength   = 32
	BarCount    = 3
	WideLength  = BarLength * BarCount
	DragonCount = 2
)

type BarID int

const (
	BarLeft BarID = iota
	BarCenter
	BarRight
)

func (b BarID) String() string {
	switch b {
	case BarLeft:
		return "left"
	case BarCenter:
		return "center"
	case BarRight:
		return "right"
	}
	return "bar?"
}

type DragonID int

const (
	DragonLeft DragonID = iota
	DragonRight
)

func (d DragonID) String() string {
	switch d {
	case DragonLeft:
		return "left"
	case DragonRight:
		return "right"
	}
	return "dragon?"
}

// Dragon holds the two eye colors and the smoke flag of one fixture.
type Dragon struct {
	LeftEye  Pixel `json:"left_eye"`
	RightEye Pixel `json:"right_eye"`
	Smoke    bool  `json:"smoke"`
}

// Frame is an off-rig scratch copy that render steps write into.
// Smoke is owned by the actuator path and is not part of a frame.
type Frame struct {
	Bars [BarCount]*Buffer
	Eyes [DragonCount][2]Pixel
}

func NewFrame() *Frame {
	f := &Frame{}
	for i := range f.Bars {
		f.Bars[i] = NewBuffer(BarLength)
	}
	return f
}

func (f *Frame) Bar(b BarID) *Buffer { return f.Bars[b] }

func (f *Frame) SetEyes(d DragonID, p Pixel) { f.Eyes[d] = [2]Pixel{p, p} }

// CopyFrom makes f an exact copy of o.
func (f *Frame) CopyFrom(o *Frame) {
	for i := range f.Bars {
		f.Bars[i].copyFrom(o.Bars[i])
	}
	f.Eyes = o.Eyes
}

// Snapshot is a consistent, immutable copy of the whole rig.
type Snapshot struct {
	Bars    [BarCount][BarLength]Pixel
	Dragons [DragonCount]Dragon
}

// Wide returns the three bars concatenated left, center, right.
func (s Snapshot) Wide() []Pixel {
	out := make([]Pixel, 0, WideLength)
	for i := range s.Bars {
		out = append(out, s.Bars[i][:]...)
	}
	return out
}

// Rig is the shared fixture model. The engine commits whole frames; readers take snapshots.
type Rig struct {
	mu      sync.RWMutex
	bars    [BarCount]*Buffer
	dragons [DragonCount]Dragon
	commits uint64
}

func New() *Rig {
	r := &Rig{}
	for i := range r.bars {
		r.bars[i] = NewBuffer(BarLength)
	}
	return r
}

// Commit publishes bars and eyes from f in one step.
func (r *Rig) Commit(f *Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bars {
		r.bars[i].copyFrom(f.Bars[i])
	}
	for i := range r.dragons {
		r.dragons[i].LeftEye = f.Eyes[i][0]
		r.dragons[i].RightEye = f.Eyes[i][1]
	}
	r.commits++
}

func (r *Rig) SetSmoke(d DragonID, on bool) {
	r.mu.Lock()
	r.dragons[d].Smoke = on
	r.mu.Unlock()
}

func (r *Rig) Smoke(d DragonID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dragons[d].Smoke
}

func (r *Rig) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Snapshot
	for i := range r.bars {
		copy(s.Bars[i][:], r.bars[i].px)
	}
	s.Dragons = r.dragons
	return s
}

// Commits counts frames published so far.
func (r *Rig) Commits() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commits
}
