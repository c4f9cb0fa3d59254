// Command livedash-auth runs the Twitch authorization-code flow once and
// stores the resulting token pair where the server will find it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/livedash/internal/config"
	"github.com/zsiec/livedash/internal/logger"
	"github.com/zsiec/livedash/internal/tokens"
	"github.com/zsiec/livedash/internal/twitch"
	"github.com/zsiec/livedash/pkg/version"
)

type result struct {
	tok tokens.Token
	err error
}

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "configs/livedash.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "livedash-auth: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Twitch.ClientID == "" || cfg.Twitch.ClientSecret == "" {
		return fmt.Errorf("twitch.client_id and twitch.client_secret are required")
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	redirect, err := url.Parse(cfg.Twitch.RedirectURI)
	if err != nil || redirect.Host == "" {
		return fmt.Errorf("invalid twitch.redirect_uri %q", cfg.Twitch.RedirectURI)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, &cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := twitch.New(ctx, cfg.Twitch, store, log)
	if err != nil {
		return err
	}

	state := uuid.NewString()
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.Handle(redirect.Path, client.CallbackHandler(state, func(tok tokens.Token, err error) {
		results <- result{tok: tok, err: err}
	}))

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- result{err: fmt.Errorf("callback server: %w", err)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Println("Open this URL in a browser to authorize livedash:")
	fmt.Println()
	fmt.Println("  " + client.AuthorizeURL(state))
	fmt.Println()
	fmt.Printf("Waiting for the redirect on %s ...\n", cfg.Twitch.RedirectURI)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-results:
		if res.err != nil {
			return res.err
		}
		fmt.Printf("Tokens saved. The access token expires %s.\n", res.tok.ExpiresAt.Format(time.RFC1123))
		if !cfg.Redis.Enabled {
			// Memory store: print them so they can go into the environment.
			fmt.Printf("\nLIVEDASH_TWITCH_ACCESS_TOKEN=%s\nLIVEDASH_TWITCH_REFRESH_TOKEN=%s\n",
				res.tok.AccessToken, res.tok.RefreshToken)
		}
		return nil
	}
}

func openStore(ctx context.Context, cfg *config.RedisConfig, log *logrus.Logger) (tokens.Store, func(), error) {
	if !cfg.Enabled {
		return tokens.NewMemoryStore(tokens.Token{}), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addresses[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis connection")
		}
	}
	return tokens.NewRedisStore(client, cfg.KeyPrefix, log), closeFn, nil
}
