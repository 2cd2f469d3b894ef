package strip

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// Options configure the monitor strip.
type Options struct {
	Port       string // spireg name; "" picks the first bus
	Count      int    // LEDs on the strip; the 96 bar pixels are stretched to fit
	Brightness float64
	WhiteCap   float64
	Console    bool
}

// nrzled refuses any bus speed other than 2.5MHz.
const spiFreq = 2500 * physic.KiloHertz

func (o *Options) defaults() {
	if o.Count <= 0 {
		o.Count = rig.WideLength
	}
	if o.Brightness <= 0 || o.Brightness > 1 {
		o.Brightness = 1
	}
}

// Strip mirrors the three bars onto a WS281x strip driven over SPI, or onto the
// terminal when no SPI bus is present.
type Strip struct {
	opts   Options
	drawer display.Drawer
	port   spi.PortCloser
	img    *image.NRGBA
	rgb    []byte
	onSPI  bool
}

// Open initializes the host and the strip driver.
func Open(o Options) (*Strip, error) {
	o.defaults()
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	if o.Console {
		return New(screen.New(o.Count), nil, o), nil
	}
	p, err := spireg.Open(o.Port)
	if err != nil {
		log.Warn().Err(err).Str("port", o.Port).Msg("no SPI port; mirroring strip to the console")
		return New(screen.New(o.Count), nil, o), nil
	}
	d, err := NewSPI(p, o)
	if err != nil {
		p.Close()
		return nil, err
	}
	log.Info().Str("port", p.String()).Int("count", o.Count).Msg("spi strip output")
	return d, nil
}

// NewSPI drives an nrzled strip over an already open port.
func NewSPI(p spi.PortCloser, o Options) (*Strip, error) {
	o.defaults()
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: o.Count,
		Channels:  3,
		Freq:      spiFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	s := New(d, p, o)
	s.onSPI = true
	return s, nil
}

// New wraps any drawer, e.g. a console screen.
func New(d display.Drawer, p spi.PortCloser, o Options) *Strip {
	o.defaults()
	return &Strip{
		opts:   o,
		drawer: d,
		port:   p,
		img:    image.NewNRGBA(image.Rect(0, 0, o.Count, 1)),
		rgb:    make([]byte, o.Count*3),
	}
}

func (s *Strip) Name() string {
	if s.onSPI {
		return "strip/spi"
	}
	return "strip/console"
}

func (s *Strip) Write(snap rig.Snapshot) error {
	wide := snap.Wide()
	for i := 0; i < s.opts.Count; i++ {
		p := wide[i*len(wide)/s.opts.Count]
		s.rgb[i*3], s.rgb[i*3+1], s.rgb[i*3+2] = p.R, p.G, p.B
	}
	scale(s.rgb, s.opts.Brightness)
	whiteCap(s.rgb, s.opts.WhiteCap)
	for i := 0; i < s.opts.Count; i++ {
		s.img.SetNRGBA(i, 0, color.NRGBA{R: s.rgb[i*3], G: s.rgb[i*3+1], B: s.rgb[i*3+2], A: 255})
	}
	return s.drawer.Draw(s.drawer.Bounds(), s.img, image.Point{})
}

// Amps is the estimated draw of the last frame written.
func (s *Strip) Amps() float64 { return estimateAmps(s.rgb) }

func (s *Strip) Close() error {
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
