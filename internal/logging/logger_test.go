package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log, closer, err := New(Options{Writer: buf, Level: "info", Component: "api"})
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Str("siteKey", "abc").Msg("theme saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "theme saved", entry["message"])
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, "abc", entry["siteKey"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNew_RespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log, _, err := New(Options{Writer: buf, Level: "WARN"})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Debug().Msg("hidden")
	assert.Empty(t, strings.TrimSpace(buf.String()))

	log.Error().Err(errors.New("boom")).Msg("shown")
	assert.Contains(t, buf.String(), "boom")
}

func TestNew_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	log, _, err := New(Options{Writer: buf, Format: "console"})
	require.NoError(t, err)

	log.Info().Msg("hello")
	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "formsmith.log")
	log, closer, err := New(Options{File: path, Format: "console"})
	require.NoError(t, err)

	log.Warn().Msg("to disk")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to disk")
	assert.NotContains(t, string(data), "\x1b[", "no color codes in files")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNew_InvalidOptions(t *testing.T) {
	_, closer, err := New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
	assert.NotNil(t, closer)

	_, _, err = New(Options{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}
