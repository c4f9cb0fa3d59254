package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Twitch.Validate(); err != nil {
		return fmt.Errorf("twitch config: %w", err)
	}

	if err := c.YouTube.Validate(); err != nil {
		return fmt.Errorf("youtube config: %w", err)
	}

	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	return nil
}

// RequireCredentials checks the secrets the backend needs to reach the
// upstream platforms. Only the backend and the auth helper call it; the
// terminal dashboard talks to the backend and needs none of them.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Twitch.ClientID == "" {
		missing = append(missing, "twitch.client_id")
	}
	if c.Twitch.ClientSecret == "" {
		missing = append(missing, "twitch.client_secret")
	}
	if c.Twitch.UserID == "" {
		missing = append(missing, "twitch.user_id")
	}
	if c.YouTube.APIKey == "" {
		missing = append(missing, "youtube.api_key")
	}
	if c.YouTube.ChannelID == "" {
		missing = append(missing, "youtube.channel_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", s.HTTPPort)
	}

	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	if (s.TLSCertFile == "") != (s.TLSKeyFile == "") {
		return fmt.Errorf("tls_cert_file and tls_key_file must be set together")
	}

	if !s.HTTP3Enabled() {
		return nil
	}

	if s.HTTP3Port < 1 || s.HTTP3Port > 65535 {
		return fmt.Errorf("invalid HTTP3 port: %d", s.HTTP3Port)
	}

	if s.HTTP3Port == s.HTTPPort {
		return fmt.Errorf("http_port and http3_port must differ")
	}

	if _, err := os.Stat(s.TLSCertFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS certificate file not found: %s", s.TLSCertFile)
	}

	if _, err := os.Stat(s.TLSKeyFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS key file not found: %s", s.TLSKeyFile)
	}

	if s.MaxIncomingStreams <= 0 {
		return fmt.Errorf("max_incoming_streams must be positive")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if len(r.Addresses) == 0 {
		return fmt.Errorf("at least one Redis address is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", r.DB)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if r.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive")
	}

	if r.MinIdleConns < 0 {
		return fmt.Errorf("min_idle_conns cannot be negative")
	}

	if r.MinIdleConns > r.PoolSize {
		return fmt.Errorf("min_idle_conns cannot be greater than pool_size")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", m.Port)
		}

		if m.Path == "" {
			return fmt.Errorf("metrics path cannot be empty")
		}
	}

	return nil
}

func (t *TwitchConfig) Validate() error {
	if err := validateBaseURL("api_base_url", t.APIBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("auth_base_url", t.AuthBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("redirect_uri", t.RedirectURI); err != nil {
		return err
	}
	if u, _ := url.Parse(t.RedirectURI); u.Path == "" {
		return fmt.Errorf("redirect_uri needs a path, e.g. %q", strings.TrimRight(t.RedirectURI, "/")+"/callback")
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if t.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if t.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive")
	}
	return nil
}

func (y *YouTubeConfig) Validate() error {
	if err := validateBaseURL("endpoint", y.Endpoint); err != nil {
		return err
	}
	if y.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if y.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if y.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive")
	}
	return nil
}

func (w *WatchConfig) Validate() error {
	if err := validateBaseURL("base_url", w.BaseURL); err != nil {
		return err
	}

	if w.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}

	pollers := map[string]*PollerConfig{
		"twitch":  &w.Twitch,
		"youtube": &w.YouTube,
		"detail":  &w.Detail,
	}
	for name, p := range pollers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s poller: %w", name, err)
		}
	}

	return nil
}

func (p *PollerConfig) Validate() error {
	if !p.Enabled {
		return nil
	}

	if !strings.HasPrefix(p.Endpoint, "/") {
		return fmt.Errorf("endpoint must be an absolute path: %q", p.Endpoint)
	}

	if p.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	if p.ErrorPolicy != "log" && p.ErrorPolicy != "propagate" {
		return fmt.Errorf("error_policy must be 'log' or 'propagate'")
	}

	return nil
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL: %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", name, raw)
	}
	return nil
}
