package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: test-token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Bot.Token)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Queue.MaxSize)
	assert.Equal(t, 1000, cfg.Normalizer.CacheSize)
	assert.Equal(t, 10, cfg.Normalizer.FlushIntervalMin)
	assert.InDelta(t, 0.8, cfg.Normalizer.Threshold, 1e-9)
	assert.False(t, cfg.Normalizer.CaseSensitive)
	assert.True(t, cfg.Normalizer.NormalizeWhitespace)
	assert.Equal(t, "The queue is full.", cfg.Messages.QueueFull)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: test-token
queue:
  max_size: 50
normalizer:
  cache_size: 200
  threshold: 0.9
  case_sensitive: true
search:
  settings:
    max_retries: 5
    enable_fallbacks: false
validation:
  settings:
    duplicate_threshold: 0.7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Queue.MaxSize)
	assert.Equal(t, 200, cfg.Normalizer.CacheSize)
	assert.InDelta(t, 0.9, cfg.Normalizer.Threshold, 1e-9)
	assert.True(t, cfg.Normalizer.CaseSensitive)
	assert.Equal(t, 5, cfg.Search.Settings["max_retries"])
	assert.Equal(t, false, cfg.Search.Settings["enable_fallbacks"])
	assert.Equal(t, 0.7, cfg.Validation.Settings["duplicate_threshold"])
}

func TestLoadMissingToken(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-client")

	path := writeConfig(t, `
bot:
  token: file-token
spotify:
  client_id: file-client
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "env-client", cfg.Spotify.ClientID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidQueueSize(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: test-token
queue:
  max_size: 10000
`)

	_, err := Load(path)
	assert.Error(t, err)
}
