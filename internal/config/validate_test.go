package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfigValidate(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	require.NoError(t, os.WriteFile(key, []byte("key"), 0o600))

	tests := []struct {
		name    string
		config  ServerConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:   "plain http",
			config: ServerConfig{HTTPPort: 5000, ShutdownTimeout: time.Second},
		},
		{
			name:    "invalid port",
			config:  ServerConfig{HTTPPort: 70000, ShutdownTimeout: time.Second},
			wantErr: true,
			errMsg:  "invalid HTTP port",
		},
		{
			name:    "zero shutdown timeout",
			config:  ServerConfig{HTTPPort: 5000},
			wantErr: true,
			errMsg:  "shutdown_timeout",
		},
		{
			name:    "cert without key",
			config:  ServerConfig{HTTPPort: 5000, ShutdownTimeout: time.Second, TLSCertFile: cert},
			wantErr: true,
			errMsg:  "must be set together",
		},
		{
			name: "cert files not found",
			config: ServerConfig{
				HTTPPort: 5000, ShutdownTimeout: time.Second, HTTP3Port: 5443,
				TLSCertFile: "/nonexistent/cert.pem", TLSKeyFile: "/nonexistent/key.pem",
				MaxIncomingStreams: 10,
			},
			wantErr: true,
			errMsg:  "TLS certificate file not found",
		},
		{
			name: "same port for both listeners",
			config: ServerConfig{
				HTTPPort: 5000, ShutdownTimeout: time.Second, HTTP3Port: 5000,
				TLSCertFile: cert, TLSKeyFile: key, MaxIncomingStreams: 10,
			},
			wantErr: true,
			errMsg:  "must differ",
		},
		{
			name: "http3 enabled",
			config: ServerConfig{
				HTTPPort: 5000, ShutdownTimeout: time.Second, HTTP3Port: 5443,
				TLSCertFile: cert, TLSKeyFile: key, MaxIncomingStreams: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedisConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  RedisConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:   "disabled skips checks",
			config: RedisConfig{Enabled: false},
		},
		{
			name: "valid config",
			config: RedisConfig{
				Enabled:      true,
				Addresses:    []string{"localhost:6379"},
				MaxRetries:   3,
				PoolSize:     10,
				MinIdleConns: 1,
			},
		},
		{
			name:    "missing addresses",
			config:  RedisConfig{Enabled: true, PoolSize: 10},
			wantErr: true,
			errMsg:  "at least one Redis address is required",
		},
		{
			name:    "negative DB",
			config:  RedisConfig{Enabled: true, Addresses: []string{"localhost:6379"}, DB: -1, PoolSize: 10},
			wantErr: true,
			errMsg:  "invalid Redis database number",
		},
		{
			name:    "min idle conns greater than pool size",
			config:  RedisConfig{Enabled: true, Addresses: []string{"localhost:6379"}, PoolSize: 2, MinIdleConns: 5},
			wantErr: true,
			errMsg:  "min_idle_conns cannot be greater than pool_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfigValidate(t *testing.T) {
	assert.NoError(t, (&LoggingConfig{Level: "info", Format: "json", Output: "stdout"}).Validate())
	assert.Error(t, (&LoggingConfig{Level: "loud", Format: "json", Output: "stdout"}).Validate())
	assert.Error(t, (&LoggingConfig{Level: "info", Format: "xml", Output: "stdout"}).Validate())
	assert.Error(t, (&LoggingConfig{Level: "info", Format: "text", Output: "/tmp/x.log"}).Validate())
	assert.NoError(t, (&LoggingConfig{Level: "info", Format: "text", Output: "/tmp/x.log", MaxSize: 10}).Validate())
}

func TestPollerConfigValidate(t *testing.T) {
	valid := PollerConfig{Enabled: true, Endpoint: "/api/twitch", Interval: 5 * time.Second, ErrorPolicy: "propagate"}
	assert.NoError(t, valid.Validate())

	disabled := PollerConfig{Enabled: false}
	assert.NoError(t, disabled.Validate())

	relative := valid
	relative.Endpoint = "api/twitch"
	assert.ErrorContains(t, relative.Validate(), "absolute path")

	noInterval := valid
	noInterval.Interval = 0
	assert.ErrorContains(t, noInterval.Validate(), "interval")

	badPolicy := valid
	badPolicy.ErrorPolicy = "ignore"
	assert.ErrorContains(t, badPolicy.Validate(), "error_policy")
}

func TestWatchConfigValidate(t *testing.T) {
	p := PollerConfig{Enabled: true, Endpoint: "/api/status", Interval: time.Second, ErrorPolicy: "log"}
	w := WatchConfig{BaseURL: "http://localhost:5000", RequestTimeout: time.Second, Twitch: p, YouTube: p, Detail: p}
	assert.NoError(t, w.Validate())

	w.BaseURL = "localhost:5000"
	assert.Error(t, w.Validate())

	w.BaseURL = "http://localhost:5000"
	w.Detail.ErrorPolicy = "nope"
	assert.ErrorContains(t, w.Validate(), "detail poller")
}

func TestTwitchConfigValidate(t *testing.T) {
	tw := TwitchConfig{
		APIBaseURL:  "https://api.twitch.tv/helix",
		AuthBaseURL: "https://id.twitch.tv/oauth2",
		RedirectURI: "http://localhost:5000/callback",
		Timeout:     time.Second,
		RateLimit:   1,
		RateBurst:   1,
	}
	assert.NoError(t, tw.Validate())

	tw.RateLimit = 0
	assert.ErrorContains(t, tw.Validate(), "rate_limit")

	tw.RateLimit = 1
	tw.AuthBaseURL = "ftp://id.twitch.tv"
	assert.ErrorContains(t, tw.Validate(), "auth_base_url")

	tw.AuthBaseURL = "https://id.twitch.tv/oauth2"
	tw.RedirectURI = "http://localhost:5000"
	assert.ErrorContains(t, tw.Validate(), "redirect_uri needs a path")

	tw.RedirectURI = "http://localhost:5000/"
	assert.NoError(t, tw.Validate())

	tw.RedirectURI = "localhost:5000/callback"
	assert.ErrorContains(t, tw.Validate(), "redirect_uri")
}
