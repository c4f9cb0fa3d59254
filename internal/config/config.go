package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// LIVEDASH_TWITCH_CLIENT_SECRET overrides twitch.client_secret.
const EnvPrefix = "LIVEDASH"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Twitch  TwitchConfig  `mapstructure:"twitch"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DebugEndpoints  bool          `mapstructure:"debug_endpoints"`

	// HTTP/3 listener, started only when both TLS files are set.
	HTTP3Port          int           `mapstructure:"http3_port"`
	TLSCertFile        string        `mapstructure:"tls_cert_file"`
	TLSKeyFile         string        `mapstructure:"tls_key_file"`
	MaxIncomingStreams int64         `mapstructure:"max_incoming_streams"`
	MaxIdleTimeout     time.Duration `mapstructure:"max_idle_timeout"`
}

// HTTP3Enabled reports whether the QUIC listener should be started.
func (s *ServerConfig) HTTP3Enabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

// RedisConfig configures the OAuth token store. When disabled, tokens live
// in memory and are lost on restart.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`   // json or text
	Output     string `mapstructure:"output"`   // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// TwitchConfig holds Helix API and OAuth settings.
type TwitchConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	AccessToken  string        `mapstructure:"access_token"`
	RefreshToken string        `mapstructure:"refresh_token"`
	UserID       string        `mapstructure:"user_id"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	AuthBaseURL  string        `mapstructure:"auth_base_url"`
	RedirectURI  string        `mapstructure:"redirect_uri"`
	Scopes       []string      `mapstructure:"scopes"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second
	RateBurst    int           `mapstructure:"rate_burst"`
}

// YouTubeConfig holds Data API settings. Endpoint is the API root; request
// paths start with youtube/v3/.
type YouTubeConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	ChannelID string        `mapstructure:"channel_id"`
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
}

// WatchConfig configures the terminal dashboard and its three pollers.
type WatchConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	StaleAfter     time.Duration `mapstructure:"stale_after"`
	Twitch         PollerConfig  `mapstructure:"twitch"`
	YouTube        PollerConfig  `mapstructure:"youtube"`
	Detail         PollerConfig  `mapstructure:"detail"`
}

// PollerConfig parametrizes one polling loop.
type PollerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoint    string        `mapstructure:"endpoint"`
	Interval    time.Duration `mapstructure:"interval"`
	ErrorPolicy string        `mapstructure:"error_policy"` // log or propagate
}

// Load reads configuration from configPath (optional), the environment and
// built-in defaults, in increasing order of precedence for env over file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.http_port", 5000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug_endpoints", false)
	v.SetDefault("server.http3_port", 5443)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")
	v.SetDefault("server.max_incoming_streams", 100)
	v.SetDefault("server.max_idle_timeout", "30s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "livedash:")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 1)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Twitch defaults
	v.SetDefault("twitch.client_id", "")
	v.SetDefault("twitch.client_secret", "")
	v.SetDefault("twitch.access_token", "")
	v.SetDefault("twitch.refresh_token", "")
	v.SetDefault("twitch.user_id", "")
	v.SetDefault("twitch.api_base_url", "https://api.twitch.tv/helix")
	v.SetDefault("twitch.auth_base_url", "https://id.twitch.tv/oauth2")
	v.SetDefault("twitch.redirect_uri", "http://localhost:5000/callback")
	v.SetDefault("twitch.scopes", []string{"user:read:email", "user:read:broadcast"})
	v.SetDefault("twitch.timeout", "10s")
	v.SetDefault("twitch.rate_limit", 10)
	v.SetDefault("twitch.rate_burst", 5)

	// YouTube defaults
	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.channel_id", "")
	v.SetDefault("youtube.endpoint", "https://youtube.googleapis.com/")
	v.SetDefault("youtube.timeout", "10s")
	v.SetDefault("youtube.rate_limit", 1)
	v.SetDefault("youtube.rate_burst", 2)

	// Watch defaults
	v.SetDefault("watch.base_url", "http://localhost:5000")
	v.SetDefault("watch.request_timeout", "8s")
	v.SetDefault("watch.stale_after", "1m")
	v.SetDefault("watch.twitch.enabled", true)
	v.SetDefault("watch.twitch.endpoint", "/api/twitch")
	v.SetDefault("watch.twitch.interval", "5s")
	v.SetDefault("watch.twitch.error_policy", "propagate")
	v.SetDefault("watch.youtube.enabled", true)
	v.SetDefault("watch.youtube.endpoint", "/api/youtube")
	v.SetDefault("watch.youtube.interval", "10s")
	v.SetDefault("watch.youtube.error_policy", "propagate")
	v.SetDefault("watch.detail.enabled", true)
	v.SetDefault("watch.detail.endpoint", "/api/status")
	v.SetDefault("watch.detail.interval", "10s")
	v.SetDefault("watch.detail.error_policy", "log")
}
