package dmx

import (
	"fmt"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// Sender delivers a whole universe to the wire.
type Sender interface {
	Name() string
	Send(u *Universe) error
	Close() error
}

// Adapter maps snapshots onto a universe and hands it to a Sender.
type Adapter struct {
	s Sender
	u Universe
}

func NewAdapter(s Sender) *Adapter { return &Adapter{s: s} }

// Open builds the adapter for a configured driver ("enttec" or "artnet").
func Open(driver, port, target string, universe int) (*Adapter, error) {
	var (
		s   Sender
		err error
	)
	switch driver {
	case "enttec":
		s, err = OpenEnttec(port)
	case "artnet":
		s, err = DialArtNet(target, universe)
	default:
		return nil, fmt.Errorf("dmx driver %q: want enttec or artnet", driver)
	}
	if err != nil {
		return nil, err
	}
	return NewAdapter(s), nil
}

func (a *Adapter) Name() string { return "dmx/" + a.s.Name() }

func (a *Adapter) Write(s rig.Snapshot) error {
	Map(s, &a.u)
	return a.s.Send(&a.u)
}

func (a *Adapter) Close() error {
	// Blackout before letting go of the widget.
	a.u = Universe{}
	_ = a.s.Send(&a.u)
	return a.s.Close()
}
