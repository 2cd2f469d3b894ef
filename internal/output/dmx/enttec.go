package dmx

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// Enttec USB Pro message framing.
const (
	enttecStart    = 0x7E
	enttecEnd      = 0xE7
	enttecLabelDMX = 6
)

// Enttec writes universes to an Enttec DMX USB Pro widget.
type Enttec struct {
	w    io.WriteCloser
	port string
	buf  []byte
}

// OpenEnttec opens the widget's serial device, e.g. /dev/ttyUSB0.
func OpenEnttec(port string) (*Enttec, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: 250000, DataBits: 8, StopBits: serial.TwoStopBits, Parity: serial.NoParity})
	if err != nil {
		return nil, fmt.Errorf("open enttec %q: %w", port, err)
	}
	log.Info().Str("port", port).Msg("enttec output")
	return NewEnttec(p, port), nil
}

// NewEnttec wraps an already open writer.
func NewEnttec(w io.WriteCloser, port string) *Enttec {
	return &Enttec{w: w, port: port, buf: make([]byte, 0, UniverseSize+6)}
}

// SerialPorts lists candidate devices for the widget.
func SerialPorts() ([]string, error) { return serial.GetPortsList() }

func (e *Enttec) Name() string { return "enttec" }

func (e *Enttec) Send(u *Universe) error {
	e.buf = enttecFrame(e.buf[:0], u)
	if _, err := e.w.Write(e.buf); err != nil {
		return fmt.Errorf("enttec %s: %w", e.port, err)
	}
	return nil
}

func (e *Enttec) Close() error { return e.w.Close() }

// enttecFrame appends a "send DMX" message: start, label, length (LE), start code 0,
// channels, end.
func enttecFrame(dst []byte, u *Universe) []byte {
	n := len(u) + 1
	dst = append(dst, enttecStart, enttecLabelDMX, byte(n&0xFF), byte(n>>8), 0x00)
	dst = append(dst, u[:]...)
	return append(dst, enttecEnd)
}
