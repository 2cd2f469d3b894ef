package clock

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI realtime status bytes.
const (
	midiClock    = 0xF8
	midiStart    = 0xFA
	midiContinue = 0xFB
	midiStop     = 0xFC
)

// ListenMIDI feeds clock messages from the named input port into c.
// A driver must be registered by the caller (e.g. a blank import of rtmididrv).
func ListenMIDI(port string, c *Clock) (stop func(), err error) {
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("midi in %q: %w", port, err)
	}
	stop, err = gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		handleRealtime(c, msg.Bytes())
	}, gomidi.UseTimeCode(), gomidi.HandleError(func(err error) {
		log.Warn().Err(err).Str("port", port).Msg("midi input error")
	}))
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", port, err)
	}
	log.Info().Str("port", in.String()).Msg("listening for MIDI clock")
	return stop, nil
}

// InPorts lists the available MIDI inputs.
func InPorts() []string {
	var out []string
	for _, p := range gomidi.GetInPorts() {
		out = append(out, p.String())
	}
	return out
}

func handleRealtime(c *Clock, b []byte) {
	if len(b) == 0 {
		return
	}
	switch b[0] {
	case midiClock:
		c.Pulse()
	case midiStart:
		c.Start()
	case midiStop:
		c.Stop()
	case midiContinue:
		// phase is kept across a pause
	}
}
