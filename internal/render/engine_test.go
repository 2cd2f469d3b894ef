package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
	diag "github.com/coreman2200/funtimes-dragonstage/internal/diagnostics"
	"github.com/coreman2200/funtimes-dragonstage/internal/playback"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

type fakeSelector struct {
	tracks map[string]Selection
	def    Selection
}

func (s *fakeSelector) Select(track string, _ float64) Selection {
	if sel, ok := s.tracks[track]; ok {
		return sel
	}
	return s.def
}
func (s *fakeSelector) Default() Selection { return s.def }

type fakePlayback struct {
	cur playback.Current
	ok  bool
}

func (p *fakePlayback) Current() (playback.Current, bool) { return p.cur, p.ok }

func (p *fakePlayback) play(track string, elapsed float64) {
	p.cur, p.ok = playback.Current{Deck: playback.DeckA, Track: track, Elapsed: elapsed}, true
}

type fakeBurster struct {
	bursts   []rig.DragonID
	canceled int
}

func (b *fakeBurster) Burst(d rig.DragonID) bool {
	b.bursts = append(b.bursts, d)
	return true
}
func (b *fakeBurster) CancelAll() { b.canceled++ }

type harness struct {
	e     *Engine
	rig   *rig.Rig
	sel   *fakeSelector
	pb    *fakePlayback
	diags []diag.Diagnostic
}

func newHarness(t *testing.T, reg *Registry) *harness {
	t.Helper()
	if reg == nil {
		reg = Builtins()
	}
	h := &harness{
		rig: rig.New(),
		sel: &fakeSelector{
			tracks: map[string]Selection{},
			def:    Selection{Bars: Spec{Mode: "off"}, Dragons: Spec{Mode: "off"}, Cue: "default"},
		},
		pb: &fakePlayback{},
	}
	e, err := NewEngine(Options{
		Registry: reg,
		Selector: h.sel,
		Playback: h.pb,
		Rig:      h.rig,
		Seed:     7,
		OnDiag:   func(d diag.Diagnostic) { h.diags = append(h.diags, d) },
	})
	require.NoError(t, err)
	h.e = e
	return h
}

func (h *harness) pulses(n int) {
	for i := 0; i < n; i++ {
		h.e.OnPulse()
	}
}

// coded returns the emitted diagnostics with the given code.
func (h *harness) coded(code string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range h.diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func (h *harness) barMode() Mode { return h.e.slots[Bars].mode }

func allBars(s rig.Snapshot, p rig.Pixel) bool {
	for _, px := range s.Wide() {
		if px != p {
			return false
		}
	}
	return true
}

func TestNewEngineRequiresCollaborators(t *testing.T) {
	_, err := NewEngine(Options{Registry: Builtins()})
	assert.Error(t, err)
}

func TestEngineNoTrackRendersDefault(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.tracks["Biggie"] = Selection{Bars: Spec{Mode: "steady"}, Cue: "Biggie/0"}

	h.pb.play("Biggie", 10)
	h.e.OnBeat()
	require.True(t, allBars(h.rig.Snapshot(), rig.White))

	h.pb.play(playback.NoTrack, 0)
	h.e.OnBeat()
	assert.True(t, allBars(h.rig.Snapshot(), rig.Black), "N/A track must render the default")

	h.pb.play("Biggie", 10)
	h.e.OnBeat()
	h.pb.ok = false
	h.e.OnBeat()
	assert.True(t, allBars(h.rig.Snapshot(), rig.Black), "no master deck must render the default")
}

func TestEngineUnknownTrackRendersDefault(t *testing.T) {
	h := newHarness(t, nil)
	h.pb.play("Never Heard Of It", 42)
	h.pulses(3)
	h.e.OnBeat()
	assert.True(t, allBars(h.rig.Snapshot(), rig.Black))
	assert.Equal(t, "default", h.e.Status().Cue)
}

func TestEngineInvalidElapsedRendersDefault(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.tracks["Noot"] = Selection{Bars: Spec{Mode: "steady"}}
	h.pb.play("Noot", -3)
	h.e.OnBeat()
	assert.True(t, allBars(h.rig.Snapshot(), rig.Black))
}

func TestEngineSameSelectionKeepsModeState(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.tracks["Lost Woods"] = Selection{Bars: Spec{Mode: "glow", Params: Params{Channel: "b"}}, Cue: "Lost Woods/0"}
	h.pb.play("Lost Woods", 1)

	h.pulses(1)
	first := h.barMode()
	h.pulses(4)
	require.Same(t, first, h.barMode(), "re-selecting the same spec must not rebuild")
	assert.Equal(t, 5, h.barMode().(*glow).n)
	assert.Equal(t, "glow", h.e.Status().Bars)
}

func TestEngineParamUpdateKeepsWheelRotation(t *testing.T) {
	h := newHarness(t, nil)
	sel := Selection{Bars: Spec{Mode: "wheel", Params: Params{PaletteName: "purple"}}, Cue: "Junkyard/0"}
	h.sel.tracks["Junkyard"] = sel
	h.pb.play("Junkyard", 30)
	h.pulses(3)
	w := h.barMode().(*wheel)
	require.Equal(t, 3, w.offset)

	sel.Bars.Params.PaletteName = "orange"
	h.sel.tracks["Junkyard"] = sel
	h.pulses(1)
	require.Same(t, w, h.barMode())
	assert.Equal(t, 4, w.offset)
	assert.Equal(t, wheelOrange[0], w.quarter[0])
}

func TestEngineResetCueRebuilds(t *testing.T) {
	h := newHarness(t, nil)
	spec := Spec{Mode: "glow", Reset: true}
	h.sel.tracks["Amberina"] = Selection{Bars: spec, Cue: "Amberina/a"}
	h.pb.play("Amberina", 1)
	h.pulses(3)
	first := h.barMode()

	h.sel.tracks["Amberina"] = Selection{Bars: spec, Cue: "Amberina/b"}
	h.pulses(1)
	assert.NotSame(t, first, h.barMode())
	assert.Equal(t, 1, h.barMode().(*glow).n)
}

func TestEngineForceRebuilds(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.tracks["Noot"] = Selection{Bars: Spec{Mode: "glow"}}
	h.pb.play("Noot", 2)
	h.pulses(2)
	first := h.barMode()
	h.e.Force()
	h.pulses(1)
	assert.NotSame(t, first, h.barMode())
}

func TestEngineUnknownModeFallsBack(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.tracks["Milestones"] = Selection{Bars: Spec{Mode: "lasers"}, Cue: "Milestones/0"}
	h.pb.play("Milestones", 5)
	h.pulses(3)

	assert.Equal(t, "off", h.e.Status().Bars)
	assert.True(t, allBars(h.rig.Snapshot(), rig.Black))
	got := h.coded(diag.ModeUnavailable)
	require.Len(t, got, 1, "fallback is reported once per selection, not per tick")
	assert.Equal(t, "bars", got[0].Group)
	assert.Equal(t, "lasers", got[0].Requested)
	assert.Equal(t, "off", got[0].Mode)
	assert.Equal(t, "Milestones/0", got[0].Cue)
	assert.Equal(t, "Milestones", got[0].Track)
}

func TestEngineBadParamsFallBack(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.tracks["Noot"] = Selection{Bars: Spec{Mode: "glow", Params: Params{Channel: "ultraviolet"}}}
	h.pb.play("Noot", 2)
	h.e.OnBeat()
	assert.Equal(t, "off", h.e.Status().Bars)
	require.Len(t, h.coded(diag.ModeUnavailable), 1)
}

func TestEngineFallbackIgnoresForeignParams(t *testing.T) {
	h := newHarness(t, nil)
	h.sel.def.Bars = Spec{Mode: "steady"}
	red, blue := rig.Red, rig.RGB(0, 0, 255)
	h.pb.play("X", 1)

	h.sel.tracks["X"] = Selection{Bars: Spec{Mode: "lasers", Params: Params{Color: &red}}, Cue: "X/0"}
	h.pulses(1)
	assert.Equal(t, "steady", h.e.Status().Bars)
	assert.True(t, allBars(h.rig.Snapshot(), rig.White))

	h.sel.tracks["X"] = Selection{Bars: Spec{Mode: "lasers", Params: Params{Color: &blue}}, Cue: "X/1"}
	h.pulses(2)
	assert.Equal(t, "steady", h.e.Status().Bars)
	assert.True(t, allBars(h.rig.Snapshot(), rig.White), "default keeps its own params")
	assert.Len(t, h.coded(diag.ModeUnavailable), 2, "each new request is retried and reported once")
}

func TestEngineFallbackRetriesWhenParamsAreFixed(t *testing.T) {
	h := newHarness(t, nil)
	h.pb.play("Noot", 2)
	h.sel.tracks["Noot"] = Selection{Bars: Spec{Mode: "glow", Params: Params{Channel: "ultraviolet"}}}
	h.pulses(1)
	assert.Equal(t, "off", h.e.Status().Bars)

	h.sel.tracks["Noot"] = Selection{Bars: Spec{Mode: "glow", Params: Params{Channel: "b"}}}
	h.pulses(1)
	assert.Equal(t, "glow", h.e.Status().Bars)
	assert.False(t, h.e.slots[Bars].fallback)
	started := h.coded(diag.ModeChanged)
	require.NotEmpty(t, started)
	last := started[len(started)-1]
	assert.Equal(t, "glow", last.Mode)
	assert.Equal(t, "bars", last.Group)
	assert.Equal(t, diag.Info, last.Severity)
}

// flaky paints red once and panics on every later render.
type flaky struct{ calls int }

func (m *flaky) Name() string        { return "flaky" }
func (m *flaky) Update(Params) error { return nil }
func (m *flaky) Render(f *rig.Frame, _ Tick, _ *Env) error {
	m.calls++
	if m.calls > 1 {
		panic("index out of range")
	}
	fillAll(f, rig.Red)
	return nil
}

func TestEngineRenderPanicKeepsPreviousFrame(t *testing.T) {
	reg := Builtins()
	reg.Register(Bars, "flaky", func(Params) (Mode, error) { return &flaky{}, nil })
	h := newHarness(t, reg)
	h.sel.tracks["Thunderdome"] = Selection{
		Bars:    Spec{Mode: "flaky"},
		Dragons: Spec{Mode: "eyes", Params: Params{Color: &rig.Red}},
	}
	h.pb.play("Thunderdome", 3)

	h.e.OnBeat()
	require.True(t, allBars(h.rig.Snapshot(), rig.Red))

	assert.NotPanics(t, func() { h.e.OnBeat() })
	snap := h.rig.Snapshot()
	assert.True(t, allBars(snap, rig.Red), "failed step must leave the committed bars untouched")
	assert.Equal(t, rig.Red, snap.Dragons[rig.DragonLeft].LeftEye, "other group still renders")
	assert.Equal(t, uint64(1), h.e.Status().Faults)
	failed := h.coded(diag.RenderFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, diag.Err, failed[0].Severity)
	assert.Equal(t, "flaky", failed[0].Mode)
}

func TestEngineCommitsDragonEyes(t *testing.T) {
	h := newHarness(t, nil)
	green := rig.RGB(0, 255, 0)
	h.sel.tracks["Biggie"] = Selection{Bars: Spec{Mode: "off"}, Dragons: Spec{Mode: "eyes", Params: Params{Color: &green, Dragons: []int{1}}}}
	h.pb.play("Biggie", 1)
	h.e.OnBeat()
	snap := h.rig.Snapshot()
	assert.Equal(t, rig.Black, snap.Dragons[rig.DragonLeft].LeftEye)
	assert.Equal(t, green, snap.Dragons[rig.DragonRight].LeftEye)
	assert.Equal(t, green, snap.Dragons[rig.DragonRight].RightEye)
}

func TestEngineCountsTicks(t *testing.T) {
	h := newHarness(t, nil)
	src := clock.New()
	h.e.Attach(src)
	for i := 0; i < clock.PulsesPerBeat; i++ {
		src.Pulse()
	}
	st := h.e.Status()
	assert.Equal(t, uint64(clock.PulsesPerBeat), st.Pulses)
	assert.Equal(t, uint64(1), st.Beats)
	assert.Equal(t, uint64(clock.PulsesPerBeat+1), h.rig.Commits())
}
