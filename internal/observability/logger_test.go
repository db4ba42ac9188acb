package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{" warn ", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"verbose", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.DebugLevel)

	logger.Info("Fetch failed", "url", "https://example.com", "attempt", 1, "error", errors.New("boom"))

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "Fetch failed", event["message"])
	assert.Equal(t, "https://example.com", event["url"])
	assert.Equal(t, float64(1), event["attempt"])
	assert.Equal(t, "boom", event["error"])
}

func TestLoggerOddFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.DebugLevel)

	logger.Warn("odd", "dangling")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "(missing)", event["dangling"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.InfoLevel)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
}

func TestNewLoggerWithFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "scalper.log")

	logger, err := NewLogger(Options{
		LogPath:       path,
		LogLevel:      "info",
		MaxSizeMB:     1,
		Console:       &console,
		DisableColors: true,
	})
	require.NoError(t, err)

	logger.Info("Batch completed", "items", 3)
	require.NoError(t, logger.Close())

	assert.FileExists(t, path)
	assert.Contains(t, console.String(), "Batch completed")
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger(Options{LogLevel: "loud"})
	assert.Error(t, err)
}
