package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, cfg.Hybrid)
}

func TestLoadConfigHybrid(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("hybrid: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Hybrid)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("hybird: true\n"))
	require.Error(t, err)
}

func TestSetProperty(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Set("HYBRID", "true"))
	assert.True(t, cfg.Hybrid)
	require.NoError(t, cfg.Set("hybrid", "false"))
	assert.False(t, cfg.Hybrid)
}

func TestSetRejectsUnknownProperty(t *testing.T) {
	var cfg Config
	assert.Error(t, cfg.Set("JIT", "true"))
	assert.Error(t, cfg.Set("HYBRID", "perhaps"))
}
