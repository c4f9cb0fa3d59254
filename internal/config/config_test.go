package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "livedash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.HTTPPort)
	assert.False(t, cfg.Server.HTTP3Enabled())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "https://api.twitch.tv/helix", cfg.Twitch.APIBaseURL)
	assert.Equal(t, []string{"user:read:email", "user:read:broadcast"}, cfg.Twitch.Scopes)
	assert.Equal(t, "https://youtube.googleapis.com/", cfg.YouTube.Endpoint)

	assert.Equal(t, "/api/twitch", cfg.Watch.Twitch.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Watch.Twitch.Interval)
	assert.Equal(t, "propagate", cfg.Watch.Twitch.ErrorPolicy)
	assert.Equal(t, "/api/youtube", cfg.Watch.YouTube.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Watch.YouTube.Interval)
	assert.Equal(t, "propagate", cfg.Watch.YouTube.ErrorPolicy)
	assert.Equal(t, "/api/status", cfg.Watch.Detail.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Watch.Detail.Interval)
	assert.Equal(t, "log", cfg.Watch.Detail.ErrorPolicy)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 8080
logging:
  level: debug
  format: text
metrics:
  enabled: false
twitch:
  client_id: abc
  user_id: "42"
watch:
  base_url: http://dash.local:8080
  detail:
    interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "abc", cfg.Twitch.ClientID)
	assert.Equal(t, "42", cfg.Twitch.UserID)
	assert.Equal(t, "http://dash.local:8080", cfg.Watch.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Watch.Detail.Interval)
	// untouched keys keep their defaults
	assert.Equal(t, "/api/status", cfg.Watch.Detail.Endpoint)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LIVEDASH_TWITCH_CLIENT_SECRET", "s3cret")
	t.Setenv("LIVEDASH_YOUTUBE_API_KEY", "yt-key")
	t.Setenv("LIVEDASH_SERVER_HTTP_PORT", "6000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Twitch.ClientSecret)
	assert.Equal(t, "yt-key", cfg.YouTube.APIKey)
	assert.Equal(t, 6000, cfg.Server.HTTPPort)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
watch:
  twitch:
    error_policy: retry
`)

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error_policy")
}

func TestRequireCredentials(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.RequireCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twitch.client_id")
	assert.Contains(t, err.Error(), "youtube.channel_id")

	cfg.Twitch.ClientID = "id"
	cfg.Twitch.ClientSecret = "secret"
	cfg.Twitch.UserID = "1"
	cfg.YouTube.APIKey = "key"
	cfg.YouTube.ChannelID = "UC1"
	assert.NoError(t, cfg.RequireCredentials())
}
