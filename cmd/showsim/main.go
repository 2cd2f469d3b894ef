package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/app"
	"github.com/coreman2200/funtimes-dragonstage/internal/config"
	"github.com/coreman2200/funtimes-dragonstage/internal/playback"
	"github.com/coreman2200/funtimes-dragonstage/internal/transport"
)

// showsim plays one track through the engine without hardware, advancing the
// playback position in real time and logging every cue change.
func main() {
	var (
		showPath = flag.String("show", "shows/2023.yaml", "show file")
		track    = flag.String("track", "", "track to play (default: first in the show)")
		start    = flag.Float64("start", 0, "start position in seconds")
		duration = flag.Duration("duration", 30*time.Second, "how long to run")
		speed    = flag.Float64("speed", 1, "playback speed multiplier")
		bpm      = flag.Float64("bpm", 120, "tempo of the internal clock")
		every    = flag.Int("every", 44, "log a frame summary every N output frames")
		addr     = flag.String("addr", "", "serve the visualizer and push API here, e.g. :8080")
		seed     = flag.Int64("seed", 0, "random seed; 0 picks one")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	cfg.Show = *showPath
	cfg.Clock.BPM = *bpm
	cfg.Seed = *seed
	cfg.Output.LogEvery = *every

	fact := playback.NewFact()
	core, err := app.InitCore(cfg, app.Options{Fact: fact, NoHardware: true})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	name := *track
	if name == "" {
		names := core.Show.TrackNames()
		if len(names) == 0 {
			log.Fatal().Str("show", *showPath).Msg("show has no tracks")
		}
		name = names[0]
	}
	if err := fact.Load(playback.DeckA, name, *start); err != nil {
		log.Fatal().Err(err).Msg("load track")
	}
	_ = fact.SetMaster(playback.DeckA)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	if *addr != "" {
		mux := http.NewServeMux()
		core.Routes(mux)
		srv := &http.Server{Addr: *addr, Handler: transport.WithCORS(mux), ReadTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", *addr).Msg("visualizer")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server")
			}
		}()
		defer srv.Close()
	}

	go advance(ctx, core, fact, *start, *speed)

	log.Info().Str("track", name).Float64("start", *start).Dur("duration", *duration).Msg("simulating")
	if err := core.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("outputs")
	}
	s := core.Eng.Status()
	log.Info().Uint64("pulses", s.Pulses).Uint64("beats", s.Beats).Uint64("faults", s.Faults).Msg("done")
}

// advance moves the deck forward like a playing turntable and reports cue changes.
func advance(ctx context.Context, core *app.Core, fact *playback.Fact, pos, speed float64) {
	const step = 100 * time.Millisecond
	tick := time.NewTicker(step)
	defer tick.Stop()
	lastCue := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			pos += step.Seconds() * speed
			if err := fact.Seek(playback.DeckA, pos); err != nil {
				log.Error().Err(err).Msg("seek")
				return
			}
			if s := core.Eng.Status(); s.Cue != lastCue {
				lastCue = s.Cue
				log.Info().Float64("at", s.Elapsed).Str("cue", s.Cue).Str("bars", s.Bars).Str("dragons", s.Dragons).Msg("cue")
			}
		}
	}
}
