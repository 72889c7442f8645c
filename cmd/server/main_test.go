package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/study-buddy/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{LogFormat: "json", LogLevel: slog.LevelInfo})

	logger.Debug("hidden")
	logger.Info("shown", slog.Int("n", 1))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "study-buddy", entry["service"])
	assert.Equal(t, float64(1), entry["n"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{LogFormat: "text", LogLevel: slog.LevelDebug})

	logger.Debug("visible")

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=visible"), out)
	assert.Contains(t, out, "service=study-buddy")
}
