package render

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

var (
	ErrUnknownMode = errors.New("unknown mode")
	ErrBadParams   = errors.New("bad mode params")
	ErrRenderPanic = errors.New("render step panicked")
)

// Group is a set of fixtures that share one active mode.
type Group int

const (
	Bars Group = iota
	Dragons
)

func (g Group) String() string {
	if g == Dragons {
		return "dragons"
	}
	return "bars"
}

// Tick is what a mode sees on every clock notification. Counters include this tick.
type Tick struct {
	Kind  clock.Kind
	Pulse uint64
	Beat  uint64
}

func (t Tick) IsBeat() bool  { return t.Kind == clock.Beat }
func (t Tick) IsPulse() bool { return t.Kind == clock.Pulse }

// Burster fires smoke without blocking the tick.
type Burster interface {
	Burst(d rig.DragonID) bool
	CancelAll()
}

// Env is shared by all modes during a tick.
type Env struct {
	Rand   *rand.Rand
	Bursts Burster
}

// Params configures a mode. Every mode reads only the fields it knows.
type Params struct {
	Color         *rig.Pixel          `yaml:"color,omitempty"`
	Palette       []rig.Pixel         `yaml:"palette,omitempty"`
	PaletteName   string              `yaml:"palette_name,omitempty"`
	Groups        [][]int             `yaml:"groups,omitempty"`
	GroupPalettes map[int][]rig.Pixel `yaml:"group_palettes,omitempty"`
	Every         string              `yaml:"every,omitempty"`
	Pulses        int                 `yaml:"pulses,omitempty"`
	Random        bool                `yaml:"random,omitempty"`
	Channel       string              `yaml:"channel,omitempty"`
	Max           int                 `yaml:"max,omitempty"`
	Period        int                 `yaml:"period,omitempty"`
	Bars          []int               `yaml:"bars,omitempty"`
	Dragons       []int               `yaml:"dragons,omitempty"`
	Width         int                 `yaml:"width,omitempty"`
	PurpleSky     bool                `yaml:"purple_sky,omitempty"`
	BeatShift     bool                `yaml:"beat_shift,omitempty"`
	FadeIn        bool                `yaml:"fade_in,omitempty"`
	Pattern       string              `yaml:"pattern,omitempty"`
	Sentinel      *rig.Pixel          `yaml:"sentinel,omitempty"`
	Position      *int                `yaml:"position,omitempty"`
}

func (p Params) color(def rig.Pixel) rig.Pixel {
	if p.Color != nil {
		return *p.Color
	}
	return def
}

// Spec names a mode and its parameters for one group.
type Spec struct {
	Mode   string `yaml:"mode"`
	Params Params `yaml:"params,omitempty"`
	// Reset rebuilds mode state whenever the owning cue is entered.
	Reset bool `yaml:"reset,omitempty"`
}

// Selection is the outcome of one cue lookup.
type Selection struct {
	Bars    Spec
	Dragons Spec
	// Cue identifies the matched cue; it changes when a different cue takes over.
	Cue string
}

// Selector maps playback position to modes.
type Selector interface {
	Select(track string, elapsed float64) Selection
	Default() Selection
}

// Mode is one running effect with its private state.
type Mode interface {
	Name() string
	// Update applies new parameters without resetting animation state.
	Update(p Params) error
	// Render writes the next state into f.
	Render(f *rig.Frame, t Tick, env *Env) error
}

// Factory builds fresh mode state.
type Factory func(p Params) (Mode, error)

// Registry maps mode names to factories per group.
type Registry struct{ m [2]map[string]Factory }

func NewRegistry() *Registry {
	return &Registry{m: [2]map[string]Factory{{}, {}}}
}

func (r *Registry) Register(g Group, name string, f Factory) {
	if f == nil || name == "" {
		return
	}
	r.m[g][name] = f
}

func (r *Registry) Get(g Group, name string) (Factory, bool) {
	f, ok := r.m[g][name]
	return f, ok
}

func (r *Registry) List(g Group) []string {
	out := make([]string, 0, len(r.m[g]))
	for k := range r.m[g] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build constructs a mode by name.
func (r *Registry) Build(g Group, s Spec) (Mode, error) {
	f, ok := r.Get(g, s.Mode)
	if !ok {
		return nil, &ModeError{Group: g, Mode: s.Mode, Err: ErrUnknownMode}
	}
	m, err := f(s.Params)
	if err != nil {
		return nil, &ModeError{Group: g, Mode: s.Mode, Err: err}
	}
	return m, nil
}

type ModeError struct {
	Group Group
	Mode  string
	Err   error
}

func (e *ModeError) Error() string { return e.Group.String() + " mode " + e.Mode + ": " + e.Err.Error() }
func (e *ModeError) Unwrap() error { return e.Err }
