package rig

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pixel is one RGB light value. Equality is exact per channel.
type Pixel struct{ R, G, B uint8 }

var (
	Black = Pixel{}
	White = Pixel{255, 255, 255}
	Red   = Pixel{255, 0, 0}
)

func RGB(r, g, b uint8) Pixel { return Pixel{R: r, G: g, B: b} }

func (p Pixel) IsBlack() bool { return p == Black }

// Color is p as an opaque image color.
func (p Pixel) Color() color.RGBA { return color.RGBA{R: p.R, G: p.G, B: p.B, A: 255} }

func (p Pixel) String() string { return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B) }

// UnmarshalYAML accepts either [r, g, b] or "#rrggbb".
func (p *Pixel) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var ch []int
		if err := n.Decode(&ch); err != nil {
			return err
		}
		if len(ch) != 3 {
			return fmt.Errorf("pixel: want 3 channels, got %d (line %d)", len(ch), n.Line)
		}
		for _, c := range ch {
			if c < 0 || c > 255 {
				return fmt.Errorf("pixel: channel %d out of 0..255 (line %d)", c, n.Line)
			}
		}
		*p = Pixel{uint8(ch[0]), uint8(ch[1]), uint8(ch[2])}
		return nil
	case yaml.ScalarNode:
		return p.parseHex(n.Value)
	}
	return fmt.Errorf("pixel: unsupported yaml node (line %d)", n.Line)
}

func (p Pixel) MarshalYAML() (interface{}, error) { return p.String(), nil }

func (p *Pixel) parseHex(s string) error {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fmt.Errorf("pixel: bad hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("pixel: bad hex color %q: %w", s, err)
	}
	*p = Pixel{uint8(v >> 16), uint8(v >> 8), uint8(v)}
	return nil
}
