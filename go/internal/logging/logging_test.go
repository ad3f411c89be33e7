package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/turnclock/go/internal/config"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestSetup_JSONLevelFilter(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	closer, err := setup(config.LogConfig{Level: "warn", Format: "json"}, &buf, false)
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Str("code", "abc").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "abc", entry["code"])
	assert.Equal(t, "shown", entry["message"])
}

func TestSetup_ConsoleAndFile(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "turnclock.log")

	closer, err := setup(config.LogConfig{Level: "debug", Format: "console", File: path}, &buf, false)
	require.NoError(t, err)

	log.Debug().Str("code", "xyz").Msg("to both sinks")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "to both sinks")
	assert.Contains(t, buf.String(), "code=xyz")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to both sinks"`)
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreGlobals(t)

	_, err := setup(config.LogConfig{Level: "loud", Format: "json"}, &bytes.Buffer{}, false)
	assert.ErrorContains(t, err, "invalid log level")
}
