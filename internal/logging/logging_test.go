package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "/x").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"path":"/x"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("", FormatConsole, &buf)
	require.NoError(t, err)

	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), "ready")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", FormatJSON, nil)
	assert.Error(t, err)

	_, err = New("info", "xml", nil)
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, closer, err := OpenFile("debug", path)
	require.NoError(t, err)
	logger.Debug().Msg("to file")
	require.NoError(t, closer.Close())
}

func TestIsTerminalOnlyForTTYs(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	file, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)
	defer file.Close()
	assert.False(t, isTerminal(file))
}
