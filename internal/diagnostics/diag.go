package diagnostics

import (
	"time"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes emitted by the show engine.
const (
	ModeChanged     = "MODE.CHANGED"
	ModeUnavailable = "MODE.UNAVAILABLE"
	ParamsRejected  = "PARAMS.REJECTED"
	RenderFailed    = "RENDER.FAILED"
)

// Diagnostic is one operator-facing event about a fixture group: which mode it
// runs, which cue put it there, and where playback was at the time.
type Diagnostic struct {
	Time     time.Time `json:"time"`
	Severity Severity  `json:"severity"`
	Code     string    `json:"code"`
	Summary  string    `json:"summary"`
	Detail   string    `json:"detail,omitempty"`

	Group string `json:"group,omitempty"`
	Mode  string `json:"mode,omitempty"`
	// Requested is the mode the cue asked for when Mode is a stand-in.
	Requested string  `json:"requested,omitempty"`
	Cue       string  `json:"cue,omitempty"`
	Track     string  `json:"track,omitempty"`
	Elapsed   float64 `json:"elapsed,omitempty"`
	Pulse     uint64  `json:"pulse,omitempty"`
	Beat      uint64  `json:"beat,omitempty"`
}

func (s Severity) level() zerolog.Level {
	switch s {
	case Err:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

// Log writes d to l at its severity with the group context as fields.
func (d Diagnostic) Log(l zerolog.Logger) {
	ev := l.WithLevel(d.Severity.level()).Str("code", d.Code)
	if d.Group != "" {
		ev = ev.Str("group", d.Group)
	}
	if d.Mode != "" {
		ev = ev.Str("mode", d.Mode)
	}
	if d.Requested != "" {
		ev = ev.Str("requested", d.Requested)
	}
	if d.Cue != "" {
		ev = ev.Str("cue", d.Cue)
	}
	if d.Track != "" {
		ev = ev.Str("track", d.Track).Float64("elapsed", d.Elapsed)
	}
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	ev.Msg(d.Summary)
}
