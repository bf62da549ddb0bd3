package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestHandlerSplitsByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(slog.LevelDebug, &stdout, &stderr))

	logger.Debug("uploading", "jingles", 3)
	logger.Error("crc mismatch")

	assert.Contains(t, stdout.String(), "uploading")
	assert.Contains(t, stdout.String(), "jingles=3")
	assert.NotContains(t, stdout.String(), "crc mismatch")
	assert.Contains(t, stderr.String(), "crc mismatch")
	assert.NotContains(t, stderr.String(), "uploading")
}

func TestHandlerLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(slog.LevelWarn, &stdout, &stderr)).With("port", "/dev/ttyACM0")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "port=/dev/ttyACM0")
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scjingle.log")
	logger, closers, err := SetupLogger("debug", path)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Debug("to file")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	raw := NewRaw(&buf)
	raw.Log(true, []byte("jingle crc\r"))
	raw.Log(false, nil)
	raw.Log(false, []byte("> "))

	out := buf.String()
	assert.Contains(t, out, `H->C 11 bytes: "jingle crc\r"`)
	assert.Contains(t, out, `C->H 2 bytes: "> "`)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))

	NewRaw(nil).Log(true, []byte("dropped"))
}
