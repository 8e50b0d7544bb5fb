package slogx

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))

	// Unknown or empty levels fall back to info.
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNewInstallsDefault(t *testing.T) {
	logger := New(Config{Service: "identity-service", Level: "debug", Format: "text"})
	assert.NotNil(t, logger)
	assert.Same(t, logger, slog.Default())
}
