package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadOverlaysDefaults(t *testing.T) {
	c, err := Load(write(t, `
clock:
  source: midi
  port: "Traktor Virtual Output"
output:
  dmx:
    driver: artnet
    target: 10.0.0.50
    universe: 1
burst:
  duration_ms: 750
`))
	require.NoError(t, err)
	assert.Equal(t, "midi", c.Clock.Source)
	assert.Equal(t, 120.0, c.Clock.BPM, "unset fields keep defaults")
	assert.Equal(t, 44.0, c.Output.RefreshHz)
	assert.Equal(t, "shows/2023.yaml", c.Show)
	assert.Equal(t, 750*time.Millisecond, c.BurstDuration())
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"unknown clock":  "clock: {source: ntp}",
		"midi w/o port":  "clock: {source: midi}",
		"enttec w/o dev": "output: {dmx: {driver: enttec}}",
		"bad driver":     "output: {dmx: {driver: sacn}}",
		"white cap":      "output: {strip: {white_cap: 2}}",
		"refresh":        "output: {refresh_hz: -1}",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Seed = 42
	c.Output.Strip.Enabled = true
	require.NoError(t, Save(p, c))
	back, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
