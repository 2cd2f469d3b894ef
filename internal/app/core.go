package app

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/actuator"
	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
	"github.com/coreman2200/funtimes-dragonstage/internal/config"
	"github.com/coreman2200/funtimes-dragonstage/internal/cue"
	"github.com/coreman2200/funtimes-dragonstage/internal/output"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/dmx"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/fake"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/strip"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/window"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/ws"
	"github.com/coreman2200/funtimes-dragonstage/internal/playback"
	"github.com/coreman2200/funtimes-dragonstage/internal/render"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
	"github.com/coreman2200/funtimes-dragonstage/internal/transport"
)

// Core is everything one running show needs, wired together.
type Core struct {
	Cfg    *config.Config
	Show   *cue.Show
	Reg    *render.Registry
	Rig    *rig.Rig
	Fact   *playback.Fact
	Bursts *actuator.Scheduler
	Eng    *render.Engine
	Clock  *clock.Clock

	Visualizer *ws.Visualizer
	Window     *window.Window // nil unless enabled
	Fake       *fake.Adapter  // nil unless output.log_every > 0
	Loop       *output.Loop

	transport *transport.Server
}

// Options override what InitCore would otherwise build from the config.
type Options struct {
	// Show replaces loading cfg.Show from disk.
	Show *cue.Show
	// Fact is shared with a caller that scripts playback.
	Fact *playback.Fact
	// NoHardware skips DMX, strip and window adapters.
	NoHardware bool
}

// InitCore builds the rig, engine, clock and outputs from cfg. Nothing runs until Run.
func InitCore(cfg *config.Config, o Options) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := render.Builtins()

	show := o.Show
	if show == nil {
		s, err := cue.Load(cfg.Show)
		if err != nil {
			return nil, fmt.Errorf("load show: %w", err)
		}
		show = s
	}
	for _, err := range show.Check(reg) {
		log.Warn().Err(err).Str("show", show.Name).Msg("show references a mode that is not built in; it will fall back to off")
	}

	fact := o.Fact
	if fact == nil {
		fact = playback.NewFact()
	}

	r := rig.New()
	bursts := actuator.NewScheduler(r, cfg.BurstDuration())
	vis := ws.New()

	eng, err := render.NewEngine(render.Options{
		Registry: reg,
		Selector: show,
		Playback: fact,
		Rig:      r,
		Bursts:   bursts,
		Seed:     cfg.Seed,
		OnDiag:   vis.PushDiag,
	})
	if err != nil {
		return nil, err
	}
	vis.Status = func() any { return eng.Status() }

	clk := clock.New()
	eng.Attach(clk)

	c := &Core{
		Cfg:        cfg,
		Show:       show,
		Reg:        reg,
		Rig:        r,
		Fact:       fact,
		Bursts:     bursts,
		Eng:        eng,
		Clock:      clk,
		Visualizer: vis,
		transport:  transport.New(fact),
	}
	adapters := []output.Adapter{vis}
	if cfg.Output.LogEvery > 0 {
		c.Fake = fake.New(cfg.Output.LogEvery)
		adapters = append(adapters, c.Fake)
	}
	if !o.NoHardware {
		adapters = append(adapters, c.hardware()...)
	}
	c.Loop = output.NewLoop(r, cfg.Output.RefreshHz, adapters...)

	log.Info().
		Str("show", show.Name).
		Int("tracks", len(show.TrackNames())).
		Str("clock", cfg.Clock.Source).
		Strs("outputs", names(adapters)).
		Msg("core ready")
	return c, nil
}

// hardware opens the physical outputs. A device that fails to open is
// skipped with a warning so the show still runs on the rest.
func (c *Core) hardware() []output.Adapter {
	var out []output.Adapter
	oc := c.Cfg.Output
	if oc.DMX.Driver != "" {
		a, err := dmx.Open(oc.DMX.Driver, oc.DMX.Port, oc.DMX.Target, oc.DMX.Universe)
		if err != nil {
			log.Warn().Err(err).Str("driver", oc.DMX.Driver).Msg("DMX init failed; continuing without it")
		} else {
			out = append(out, a)
		}
	}
	if oc.Strip.Enabled {
		s, err := strip.Open(strip.Options{
			Port:       oc.Strip.Port,
			Count:      oc.Strip.Count,
			Brightness: oc.Strip.Brightness,
			WhiteCap:   oc.Strip.WhiteCap,
			Console:    oc.Strip.Console,
		})
		if err != nil {
			log.Warn().Err(err).Msg("strip init failed; continuing without it")
		} else {
			out = append(out, s)
		}
	}
	if oc.Window.Enabled {
		c.Window = window.New(oc.Window.Scale)
		c.Window.Status = c.statusLine
		out = append(out, c.Window)
	}
	return out
}

// Routes mounts the playback push API and the visualizer on mux.
func (c *Core) Routes(mux *http.ServeMux) {
	c.transport.Routes(mux)
	c.Visualizer.Routes(mux)
}

func (c *Core) statusLine() string {
	s := c.Eng.Status()
	return fmt.Sprintf("%s @ %.1fs  cue %s  bars %s  dragons %s  %.0f bpm",
		s.Track, s.Elapsed, s.Cue, s.Bars, s.Dragons, c.Clock.BPM())
}

func names(as []output.Adapter) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Name())
	}
	return out
}
