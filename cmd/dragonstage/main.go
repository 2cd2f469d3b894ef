package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/coreman2200/funtimes-dragonstage/internal/app"
	"github.com/coreman2200/funtimes-dragonstage/internal/clock"
	"github.com/coreman2200/funtimes-dragonstage/internal/config"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/dmx"
	"github.com/coreman2200/funtimes-dragonstage/internal/output/window"
	"github.com/coreman2200/funtimes-dragonstage/internal/transport"
)

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		showPath   = flag.String("show", "", "show file (overrides config)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		clockSrc   = flag.String("clock", "", "tick source: midi | internal")
		midiPort   = flag.String("midi-port", "", "MIDI input carrying the DJ clock")
		bpm        = flag.Float64("bpm", 0, "tempo of the internal clock")
		dmxDriver  = flag.String("dmx", "", "DMX output: enttec | artnet")
		dmxPort    = flag.String("dmx-port", "", "serial device for enttec")
		dmxTarget  = flag.String("dmx-target", "", "host[:port] for artnet")
		withWindow = flag.Bool("window", false, "open the desktop preview window")
		simOnly    = flag.Bool("sim-only", false, "no hardware outputs; browser visualizer only")
		logLevel   = flag.String("log-level", "", "debug | info | warn | error")
		listPorts  = flag.Bool("list-ports", false, "print MIDI inputs and serial ports, then exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if *listPorts {
		printPorts()
		return
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults and flags")
		cfg = config.Default()
	}
	cfg.Show = firstNonEmpty(*showPath, cfg.Show)
	cfg.HTTP.Addr = firstNonEmpty(*addr, cfg.HTTP.Addr)
	cfg.Clock.Source = firstNonEmpty(*clockSrc, cfg.Clock.Source)
	cfg.Clock.Port = firstNonEmpty(*midiPort, cfg.Clock.Port)
	cfg.Clock.BPM = firstNonZeroFloat(*bpm, cfg.Clock.BPM)
	cfg.Output.DMX.Driver = firstNonEmpty(*dmxDriver, cfg.Output.DMX.Driver)
	cfg.Output.DMX.Port = firstNonEmpty(*dmxPort, cfg.Output.DMX.Port)
	cfg.Output.DMX.Target = firstNonEmpty(*dmxTarget, cfg.Output.DMX.Target)
	cfg.Output.Window.Enabled = cfg.Output.Window.Enabled || *withWindow
	cfg.LogLevel = firstNonEmpty(*logLevel, cfg.LogLevel)

	if cfg.LogLevel != "" {
		lvl, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level; keeping info")
		} else {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	core, err := app.InitCore(cfg, app.Options{NoHardware: *simOnly})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	core.Routes(mux)
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      transport.WithCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run show & server ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := core.Run(ctx); err != nil {
			log.Warn().Err(err).Msg("outputs closed with errors")
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Str("show", core.Show.Name).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// The preview window owns the main goroutine until it is closed.
	if core.Window != nil {
		err := core.Window.Run()
		switch {
		case errors.Is(err, window.ErrHeadless):
			log.Warn().Msg("window requested, but this build is headless")
		case err != nil:
			log.Error().Err(err).Msg("window")
		default:
			stop()
		}
	}

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	<-done
}

func printPorts() {
	fmt.Println("MIDI inputs:")
	for _, p := range clock.InPorts() {
		fmt.Println("  " + p)
	}
	fmt.Println("Serial ports:")
	ports, err := dmx.SerialPorts()
	if err != nil {
		fmt.Println("  error:", err)
	}
	for _, p := range ports {
		fmt.Println("  " + p)
	}
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func firstNonZeroFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
