package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestInitWithWriter(t *testing.T) {
	t.Cleanup(func() { Init("info", false) })

	var buf bytes.Buffer
	InitWithWriter("warn", false, &buf)

	WithComponent("daemon").Info().Msg("filtered")
	WithComponent("daemon").Warn().Str("socket", "/tmp/nicotine.sock").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "daemon", entry["component"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "/tmp/nicotine.sock", entry["socket"])
}
