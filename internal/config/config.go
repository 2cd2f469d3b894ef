package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ClockCfg struct {
	Source string  `yaml:"source"` // "midi" | "internal"
	Port   string  `yaml:"port,omitempty"`
	BPM    float64 `yaml:"bpm,omitempty"`
}

type HTTPCfg struct {
	Addr string `yaml:"addr"`
}

type DMXCfg struct {
	Driver   string `yaml:"driver"`           // "enttec" | "artnet" | "" (off)
	Port     string `yaml:"port,omitempty"`   // serial device for enttec, e.g. /dev/ttyUSB0
	Target   string `yaml:"target,omitempty"` // host[:port] for artnet
	Universe int    `yaml:"universe,omitempty"`
}

type StripCfg struct {
	Enabled    bool    `yaml:"enabled"`
	Port       string  `yaml:"port,omitempty"` // spireg name; "" picks the first bus
	Count      int     `yaml:"count,omitempty"`
	Brightness float64 `yaml:"brightness,omitempty"`
	WhiteCap   float64 `yaml:"white_cap,omitempty"`
	Console    bool    `yaml:"console,omitempty"` // render to the terminal instead of SPI
}

type WindowCfg struct {
	Enabled bool `yaml:"enabled"`
	Scale   int  `yaml:"scale,omitempty"`
}

type OutputCfg struct {
	RefreshHz float64   `yaml:"refresh_hz"`
	DMX       DMXCfg    `yaml:"dmx"`
	Strip     StripCfg  `yaml:"strip"`
	Window    WindowCfg `yaml:"window"`
	LogEvery  int       `yaml:"log_every,omitempty"` // fake adapter summary cadence; 0 disables
}

type BurstCfg struct {
	DurationMs int `yaml:"duration_ms"`
}

type Config struct {
	Show     string    `yaml:"show"`
	Seed     int64     `yaml:"seed,omitempty"`
	LogLevel string    `yaml:"log_level,omitempty"`
	Clock    ClockCfg  `yaml:"clock"`
	HTTP     HTTPCfg   `yaml:"http"`
	Output   OutputCfg `yaml:"output"`
	Burst    BurstCfg  `yaml:"burst"`
}

// Default is what runs when no config file is given.
func Default() *Config {
	return &Config{
		Show:  "shows/2023.yaml",
		Clock: ClockCfg{Source: "internal", BPM: 120},
		HTTP:  HTTPCfg{Addr: ":8080"},
		Output: OutputCfg{
			RefreshHz: 44,
			Strip:     StripCfg{Count: 96, Brightness: 0.5, WhiteCap: 0.85},
			Window:    WindowCfg{Scale: 10},
		},
		Burst: BurstCfg{DurationMs: 1000},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Clock.Source {
	case "internal", "midi":
	default:
		return fmt.Errorf("clock.source %q: want midi or internal", c.Clock.Source)
	}
	if c.Clock.Source == "midi" && c.Clock.Port == "" {
		return fmt.Errorf("clock.port is required for a midi clock")
	}
	if c.Clock.BPM < 0 || c.Clock.BPM > 400 {
		return fmt.Errorf("clock.bpm %v out of range", c.Clock.BPM)
	}
	switch c.Output.DMX.Driver {
	case "":
	case "enttec":
		if c.Output.DMX.Port == "" {
			return fmt.Errorf("output.dmx.port is required for enttec")
		}
	case "artnet":
		if c.Output.DMX.Target == "" {
			return fmt.Errorf("output.dmx.target is required for artnet")
		}
		if c.Output.DMX.Universe < 0 || c.Output.DMX.Universe > 0x7FFF {
			return fmt.Errorf("output.dmx.universe %d out of range", c.Output.DMX.Universe)
		}
	default:
		return fmt.Errorf("output.dmx.driver %q: want enttec or artnet", c.Output.DMX.Driver)
	}
	if c.Output.RefreshHz <= 0 {
		return fmt.Errorf("output.refresh_hz must be positive")
	}
	if s := c.Output.Strip; s.WhiteCap < 0 || s.WhiteCap > 1 || s.Brightness < 0 || s.Brightness > 1 {
		return fmt.Errorf("output.strip brightness and white_cap must be within 0..1")
	}
	if c.Burst.DurationMs < 0 {
		return fmt.Errorf("burst.duration_ms must not be negative")
	}
	return nil
}

func (c *Config) BurstDuration() time.Duration {
	return time.Duration(c.Burst.DurationMs) * time.Millisecond
}
