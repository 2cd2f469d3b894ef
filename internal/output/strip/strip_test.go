package strip

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

func TestWhiteCap(t *testing.T) {
	rgb := []byte{255, 255, 255, 10, 20, 30}
	whiteCap(rgb, 0.5)
	sum := int(rgb[0]) + int(rgb[1]) + int(rgb[2])
	assert.InDelta(t, 383, sum, 2)
	assert.Equal(t, rgb[0], rgb[2], "hue kept")
	assert.Equal(t, []byte{10, 20, 30}, rgb[3:], "dim LEDs untouched")

	full := []byte{255, 255, 255}
	whiteCap(full, 1)
	assert.Equal(t, []byte{255, 255, 255}, full, "cap of 1 disables the limiter")
}

func TestScale(t *testing.T) {
	rgb := []byte{200, 100, 0}
	scale(rgb, 0.5)
	assert.Equal(t, []byte{100, 50, 0}, rgb)
	scale(rgb, 0)
	assert.Equal(t, []byte{0, 0, 0}, rgb)
}

func TestEstimateAmps(t *testing.T) {
	assert.InDelta(t, 0.060, estimateAmps([]byte{255, 255, 255}), 1e-9)
}

func TestSPIStripWrites(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSPI(spitest.NewRecordRaw(&buf), Options{Brightness: 1})
	require.NoError(t, err)
	assert.Equal(t, "strip/spi", s.Name())
	buf.Reset()

	var snap rig.Snapshot
	snap.Bars[rig.BarLeft][0] = rig.Red
	snap.Bars[rig.BarRight][31] = rig.RGB(0, 0, 200)
	require.NoError(t, s.Write(snap))
	assert.NotZero(t, buf.Len(), "frame reached the bus")

	assert.Equal(t, color.NRGBA{R: 255, A: 255}, s.img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 200, A: 255}, s.img.NRGBAAt(rig.WideLength-1, 0))
	require.NoError(t, s.Close())
}

func TestShortStripSamplesBars(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSPI(spitest.NewRecordRaw(&buf), Options{Count: 48, Brightness: 0.5, WhiteCap: 0.9})
	require.NoError(t, err)

	var snap rig.Snapshot
	snap.Bars[rig.BarLeft][2] = rig.White
	require.NoError(t, s.Write(snap))
	got := s.img.NRGBAAt(1, 0)
	assert.Equal(t, uint8(128), got.R, "pixel 1 of 48 shows bar pixel 2 at half brightness")
	assert.Equal(t, got.R, got.B)
	assert.Greater(t, s.Amps(), 0.0)
}

func TestSPIStripOpensWithZeroOptions(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSPI(spitest.NewRecordRaw(&buf), Options{})
	require.NoError(t, err, "the bus speed nrzled requires is fixed, not configured")
	assert.Equal(t, rig.WideLength, s.opts.Count)
	require.NoError(t, s.Write(rig.Snapshot{}))
}
