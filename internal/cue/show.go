package cue

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-dragonstage/internal/render"
)

var ErrInvalidShow = errors.New("invalid show")

// Window is an open time interval in seconds. An omitted end runs to the end of the track.
type Window struct {
	From float64
	To   float64
}

func (w Window) Contains(t float64) bool { return w.From < t && t < w.To }

// UnmarshalYAML reads [from, to] or [from].
func (w *Window) UnmarshalYAML(n *yaml.Node) error {
	var v []float64
	if err := n.Decode(&v); err != nil {
		return err
	}
	switch len(v) {
	case 1:
		*w = Window{From: v[0], To: math.Inf(1)}
	case 2:
		*w = Window{From: v[0], To: v[1]}
	default:
		return fmt.Errorf("line %d: window wants [from] or [from, to]: %w", n.Line, ErrInvalidShow)
	}
	return nil
}

func (w Window) MarshalYAML() (interface{}, error) {
	if math.IsInf(w.To, 1) {
		return []float64{w.From}, nil
	}
	return []float64{w.From, w.To}, nil
}

// Cue selects modes while the track position falls in any of its windows.
// A cue without windows always matches.
type Cue struct {
	Name    string       `yaml:"name,omitempty"`
	At      []Window     `yaml:"at,omitempty"`
	Bars    *render.Spec `yaml:"bars,omitempty"`
	Dragons *render.Spec `yaml:"dragons,omitempty"`
}

func (c Cue) Matches(t float64) bool {
	if len(c.At) == 0 {
		return true
	}
	for _, w := range c.At {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// Track lists cues in priority order. Its own specs fill in whatever a cue leaves out
// and apply when no cue matches.
type Track struct {
	Name    string       `yaml:"name"`
	Bars    *render.Spec `yaml:"bars,omitempty"`
	Dragons *render.Spec `yaml:"dragons,omitempty"`
	Cues    []Cue        `yaml:"cues"`
}

// Defaults apply to unknown tracks and to anything a track leaves unset.
type Defaults struct {
	Bars    render.Spec `yaml:"bars"`
	Dragons render.Spec `yaml:"dragons"`
}

// Show is the whole cue table for a set.
type Show struct {
	Name     string   `yaml:"name,omitempty"`
	Defaults Defaults `yaml:"default"`
	Tracks   []Track  `yaml:"tracks"`

	index map[string]int
}

// Load reads and validates a show file.
func Load(path string) (*Show, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(b []byte) (*Show, error) {
	var s Show
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes s back out as yaml.
func Save(path string, s *Show) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Empty is a show with no tracks; everything renders the defaults (off).
func Empty() *Show {
	s := &Show{}
	_ = s.init()
	return s
}

func (s *Show) init() error {
	if s.Defaults.Bars.Mode == "" {
		s.Defaults.Bars.Mode = "off"
	}
	if s.Defaults.Dragons.Mode == "" {
		s.Defaults.Dragons.Mode = "off"
	}
	s.index = make(map[string]int, len(s.Tracks))
	for i, tr := range s.Tracks {
		if tr.Name == "" {
			return fmt.Errorf("track %d has no name: %w", i, ErrInvalidShow)
		}
		if _, dup := s.index[tr.Name]; dup {
			return fmt.Errorf("track %q listed twice: %w", tr.Name, ErrInvalidShow)
		}
		s.index[tr.Name] = i
		for j, c := range tr.Cues {
			for _, w := range c.At {
				if w.From < 0 || !(w.From < w.To) {
					return fmt.Errorf("track %q cue %d: window [%v, %v]: %w", tr.Name, j, w.From, w.To, ErrInvalidShow)
				}
			}
			for _, sp := range []*render.Spec{c.Bars, c.Dragons} {
				if sp != nil && sp.Mode == "" {
					return fmt.Errorf("track %q cue %d: spec without mode: %w", tr.Name, j, ErrInvalidShow)
				}
			}
		}
	}
	return nil
}

// Check reports mode names the registry does not know. Unknown modes are not
// fatal: the engine falls back to the defaults when it meets them.
func (s *Show) Check(reg *render.Registry) []error {
	var errs []error
	check := func(where string, g render.Group, sp *render.Spec) {
		if sp == nil {
			return
		}
		if _, ok := reg.Get(g, sp.Mode); !ok {
			errs = append(errs, fmt.Errorf("%s: %s mode %q: %w", where, g, sp.Mode, render.ErrUnknownMode))
		}
	}
	check("default", render.Bars, &s.Defaults.Bars)
	check("default", render.Dragons, &s.Defaults.Dragons)
	for _, tr := range s.Tracks {
		check(tr.Name, render.Bars, tr.Bars)
		check(tr.Name, render.Dragons, tr.Dragons)
		for j, c := range tr.Cues {
			where := tr.Name + " cue " + strconv.Itoa(j)
			check(where, render.Bars, c.Bars)
			check(where, render.Dragons, c.Dragons)
		}
	}
	return errs
}

func (s *Show) Default() render.Selection {
	return render.Selection{Bars: s.Defaults.Bars, Dragons: s.Defaults.Dragons, Cue: "default"}
}

// Select returns the first cue of track whose windows contain elapsed.
func (s *Show) Select(track string, elapsed float64) render.Selection {
	i, ok := s.index[track]
	if !ok {
		return s.Default()
	}
	tr := &s.Tracks[i]
	sel := render.Selection{
		Bars:    pick(tr.Bars, &s.Defaults.Bars),
		Dragons: pick(tr.Dragons, &s.Defaults.Dragons),
		Cue:     tr.Name,
	}
	for j, c := range tr.Cues {
		if !c.Matches(elapsed) {
			continue
		}
		sel.Bars = pick(c.Bars, &sel.Bars)
		sel.Dragons = pick(c.Dragons, &sel.Dragons)
		sel.Cue = tr.Name + "/" + c.id(j)
		return sel
	}
	return sel
}

// Tracks lists the track names in file order.
func (s *Show) TrackNames() []string {
	out := make([]string, len(s.Tracks))
	for i, tr := range s.Tracks {
		out[i] = tr.Name
	}
	return out
}

func (c Cue) id(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return strconv.Itoa(i)
}

func pick(sp, fallback *render.Spec) render.Spec {
	if sp != nil {
		return *sp
	}
	return *fallback
}
