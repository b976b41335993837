package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("BUBBLEPOINT_ADDR", "")
	t.Setenv("BUBBLEPOINT_LOG_LEVEL", "")
	t.Setenv("BUBBLEPOINT_LOG_FORMAT", "")

	cfg := FromEnv()
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BUBBLEPOINT_ADDR", "127.0.0.1:8081")
	t.Setenv("BUBBLEPOINT_LOG_LEVEL", "DEBUG")
	t.Setenv("BUBBLEPOINT_LOG_FORMAT", "JSON")

	cfg := FromEnv()
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}
