package diagnostics

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCarriesGroupContext(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	Diagnostic{
		Severity:  Warn,
		Code:      ModeUnavailable,
		Summary:   "mode unavailable; default used",
		Group:     "bars",
		Mode:      "off",
		Requested: "lasers",
		Cue:       "Milestones/0",
		Track:     "Milestones",
		Elapsed:   5,
	}.Log(l)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, ModeUnavailable, got["code"])
	assert.Equal(t, "lasers", got["requested"])
	assert.Equal(t, "Milestones/0", got["cue"])
	assert.EqualValues(t, 5, got["elapsed"])
	assert.Equal(t, "mode unavailable; default used", got["message"])
	assert.NotContains(t, got, "detail")
}

func TestSeverityLevels(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, Err.level())
	assert.Equal(t, zerolog.WarnLevel, Warn.level())
	assert.Equal(t, zerolog.InfoLevel, Info.level())
	assert.Equal(t, zerolog.InfoLevel, Severity("").level())
}
