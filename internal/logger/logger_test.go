package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
	}
	return events
}

func TestInfoCarriesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	l.Info("detector", "octave built", map[string]interface{}{"octave": 2, "levels": 6})

	events := decodeLines(t, &buf)
	require.Len(t, events, 1)
	assert.Equal(t, "info", events[0]["level"])
	assert.Equal(t, "detector", events[0]["component"])
	assert.Equal(t, "octave built", events[0]["message"])
	assert.EqualValues(t, 2, events[0]["octave"])
	assert.EqualValues(t, 6, events[0]["levels"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.WarnLevel)

	l.Debug("cli", "hidden", nil)
	l.Info("cli", "hidden", nil)
	l.Warning("cli", "shown", nil)
	l.Error("cli", errors.New("boom"), map[string]interface{}{"path": "x.png"})

	events := decodeLines(t, &buf)
	require.Len(t, events, 2)
	assert.Equal(t, "warn", events[0]["level"])
	assert.Equal(t, "error", events[1]["level"])
	assert.Equal(t, "boom", events[1]["error"])
	assert.Equal(t, "x.png", events[1]["path"])
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.DebugLevel)

	zl := l.Component("sift")
	zl.Debug().Int("level", 3).Msg("level built")

	events := decodeLines(t, &buf)
	require.Len(t, events, 1)
	assert.Equal(t, "sift", events[0]["component"])
	assert.EqualValues(t, 3, events[0]["level"])
}

func TestConsoleWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf, zerolog.InfoLevel)

	l.Warning("cli", "fewer octaves than requested", map[string]interface{}{"built": 2})

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "fewer octaves than requested")
	assert.Contains(t, out, "built=2")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
