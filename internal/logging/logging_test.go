package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("TINT"))
	assert.Equal(t, FormatText, ParseFormat("human"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat("whatever"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNewHandlerJSONWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTTY(&buf))

	log := slog.New(NewHandler(&buf, FormatAuto, slog.LevelInfo))
	log.Debug("hidden")
	log.Info("captured", "id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "captured", rec["msg"])
	assert.EqualValues(t, 7, rec["id"])
}

func TestNewHandlerForcedText(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, FormatText, slog.LevelInfo)).Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestOptionsLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Options{Interactive: true}.level())
	assert.Equal(t, slog.LevelInfo, Options{}.level())
	assert.Equal(t, slog.LevelWarn, Options{Level: "warn", Interactive: true}.level())
}

func TestNewHandlerTextWithoutColourOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, FormatText, slog.LevelInfo)).Info("plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestSetupLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "daemon.log")
	closer, err := Setup(Options{Format: FormatJSON, File: path})
	require.NoError(t, err)

	slog.Debug("below level")
	slog.Info("to file", "entries", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec), "exactly one JSON record")
	assert.Equal(t, "to file", rec["msg"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		t.Errorf("log file mode %v is readable by others", info.Mode().Perm())
	}

	// Reopening appends.
	closer, err = Setup(Options{Format: FormatJSON, File: path})
	require.NoError(t, err)
	slog.Info("again")
	require.NoError(t, closer.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestSetupStderrCloserIsSafe(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	closer, err := Setup(Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}
