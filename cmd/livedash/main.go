package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/livedash/internal/config"
	"github.com/zsiec/livedash/internal/health"
	"github.com/zsiec/livedash/internal/logger"
	"github.com/zsiec/livedash/internal/server"
	"github.com/zsiec/livedash/internal/status"
	"github.com/zsiec/livedash/internal/tokens"
	"github.com/zsiec/livedash/internal/twitch"
	"github.com/zsiec/livedash/internal/youtube"
	"github.com/zsiec/livedash/pkg/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "configs/livedash.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireCredentials(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithField("version", version.GetInfo().Short()).Info("Starting livedash server")
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthMgr := health.NewManager(log)

	store, redisClient := openTokenStore(ctx, &cfg.Redis, log)
	if redisClient != nil {
		healthMgr.Register(health.NewRedisChecker(redisClient))
	}
	healthMgr.Register(health.NewTokenChecker(store))

	tw, err := twitch.New(ctx, cfg.Twitch, store, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Twitch client")
	}
	yt, err := youtube.New(ctx, cfg.YouTube, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create YouTube client")
	}
	statuses := status.NewService(tw, yt, logger.WithComponent(log, "status"))

	// Start metrics server if enabled
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics, log)
	}

	srv := server.New(&cfg.Server, log, statuses, healthMgr)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	// Start server
	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("Server error")
	}

	// Cleanup
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis connection")
		}
	}

	log.Info("Server shutdown complete")
}

// openTokenStore returns the Redis token store when Redis is enabled, and an
// in-memory store otherwise. Tokens in memory are lost on restart and are
// re-seeded from the configured access and refresh tokens.
func openTokenStore(ctx context.Context, cfg *config.RedisConfig, log *logrus.Logger) (tokens.Store, *redis.Client) {
	if !cfg.Enabled {
		log.Warn("Redis disabled, Twitch tokens are kept in memory")
		return tokens.NewMemoryStore(tokens.Token{}), nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Addresses[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	log.Info("Connected to Redis successfully")

	return tokens.NewRedisStore(redisClient, cfg.KeyPrefix, log), redisClient
}

// startMetricsServer starts the Prometheus metrics server
func startMetricsServer(cfg config.MetricsConfig, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("Starting metrics server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Error("Metrics server error")
	}
}
