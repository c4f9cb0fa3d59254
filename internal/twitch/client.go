// Package twitch is a small Helix API client for one broadcaster account.
package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	twitchoauth "golang.org/x/oauth2/twitch"
	"golang.org/x/time/rate"

	"github.com/zsiec/livedash/internal/config"
	"github.com/zsiec/livedash/internal/logger"
	"github.com/zsiec/livedash/internal/metrics"
	"github.com/zsiec/livedash/internal/tokens"
	"github.com/zsiec/livedash/pkg/version"
)

const (
	apiLabel     = "twitch"
	authAPILabel = "twitch_auth"

	maxResponseBytes = 1 << 20
)

// Client calls Helix on behalf of one user. The access token is refreshed
// once when a request comes back 401.
type Client struct {
	cfg      config.TwitchConfig
	oauth    *oauth2.Config
	http     *http.Client
	authHTTP *http.Client
	limiter  *rate.Limiter
	store    tokens.Store
	logger   *logrus.Logger
	sampled  *logger.SampledLogger
	now      func() time.Time

	mu    sync.Mutex
	token tokens.Token
}

// New creates a client. The initial token comes from the store, or from the
// configured access/refresh tokens when the store is empty.
func New(ctx context.Context, cfg config.TwitchConfig, store tokens.Store, log *logrus.Logger) (*Client, error) {
	if store == nil {
		store = tokens.NewMemoryStore(tokens.Token{})
	}
	tok, err := tokens.LoadOr(ctx, store, tokens.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load twitch tokens: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	userAgent := version.GetInfo().UserAgent()
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauthEndpoint(cfg.AuthBaseURL),
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
		},
		http:     metrics.NewUpstreamClient(apiLabel, userAgent, cfg.Timeout),
		authHTTP: metrics.NewUpstreamClient(authAPILabel, userAgent, cfg.Timeout),
		limiter:  rate.NewLimiter(limit, burst),
		store:    store,
		logger:   log,
		sampled:  logger.NewPollLogger(logger.NewLogrusAdapter(logger.WithComponent(log, "twitch"))),
		now:      time.Now,
		token:    tok,
	}, nil
}

// Token returns the token pair currently in use.
func (c *Client) Token() tokens.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// User returns the authenticated user, or nil when Helix returns no data.
func (c *Client) User(ctx context.Context) (*User, error) {
	var resp usersResponse
	if err := c.get(ctx, "/users", nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// FollowerTotal returns the broadcaster's follower count.
func (c *Client) FollowerTotal(ctx context.Context) (int64, error) {
	var resp followersResponse
	q := url.Values{"broadcaster_id": {c.cfg.UserID}}
	if err := c.get(ctx, "/channels/followers", q, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// LiveStream returns the broadcaster's live stream, or nil when offline.
func (c *Client) LiveStream(ctx context.Context) (*Stream, error) {
	var resp streamsResponse
	q := url.Values{"user_id": {c.cfg.UserID}}
	if err := c.get(ctx, "/streams", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	used := c.Token()
	status, body, err := c.do(ctx, path, query, used.AccessToken)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if rerr := c.refreshAfter(ctx, used); rerr != nil {
			c.sampled.Logf(logrus.ErrorLevel, logger.CategoryTokenRefresh, map[string]interface{}{
				"path":  path,
				"error": rerr.Error(),
			}, "Twitch token refresh failed")
		} else {
			status, body, err = c.do(ctx, path, query, c.Token().AccessToken)
			if err != nil {
				return err
			}
		}
	}

	if status < 200 || status > 299 {
		return newAPIError(path, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("twitch %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values, accessToken string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("twitch %s: rate limiter: %w", path, err)
	}

	u := strings.TrimRight(c.cfg.APIBaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("twitch %s: build request: %w", path, err)
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("twitch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("twitch %s: read response: %w", path, err)
	}
	return resp.StatusCode, body, nil
}

func newAPIError(path string, status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Path: path}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		apiErr.Message = er.Message
	}
	return apiErr
}

// refreshAfter refreshes the token unless another request already replaced
// the one that got rejected.
func (c *Client) refreshAfter(ctx context.Context, rejected tokens.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.AccessToken != rejected.AccessToken {
		return nil
	}
	return c.refreshLocked(ctx)
}

// RefreshToken exchanges the refresh token for a new pair and persists it.
func (c *Client) RefreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Client) refreshLocked(ctx context.Context) error {
	if c.token.RefreshToken == "" {
		metrics.IncrementTokenRefresh("failure")
		return fmt.Errorf("%w: no refresh token", ErrRefresh)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.IncrementTokenRefresh("failure")
		return fmt.Errorf("%w: rate limiter: %w", ErrRefresh, err)
	}

	// Without an access token the source goes straight to the token
	// endpoint with grant_type=refresh_token.
	src := c.oauth.TokenSource(c.authContext(ctx), &oauth2.Token{RefreshToken: c.token.RefreshToken})
	ot, err := src.Token()
	if err != nil {
		metrics.IncrementTokenRefresh("failure")
		return fmt.Errorf("%w: %w", ErrRefresh, err)
	}

	next := c.tokenFrom(ot)
	if next.RefreshToken == "" {
		next.RefreshToken = c.token.RefreshToken
	}
	c.token = next
	metrics.IncrementTokenRefresh("success")

	if err := c.store.Save(ctx, next); err != nil {
		c.logger.WithError(err).Warn("Failed to persist refreshed Twitch tokens")
	}
	c.logger.WithField("expires_at", next.ExpiresAt).Info("Twitch access token refreshed")
	return nil
}

// AuthorizeURL is the page the user visits to grant access.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a token pair, adopts it and
// saves it to the store.
func (c *Client) ExchangeCode(ctx context.Context, code string) (tokens.Token, error) {
	if code == "" {
		return tokens.Token{}, fmt.Errorf("%w: missing authorization code", ErrRefresh)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return tokens.Token{}, fmt.Errorf("%w: rate limiter: %w", ErrRefresh, err)
	}

	ot, err := c.oauth.Exchange(c.authContext(ctx), code)
	if err != nil {
		return tokens.Token{}, fmt.Errorf("%w: %w", ErrRefresh, err)
	}

	tok := c.tokenFrom(ot)
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	if err := c.store.Save(ctx, tok); err != nil {
		return tok, fmt.Errorf("failed to save tokens: %w", err)
	}
	return tok, nil
}

// authContext makes the oauth2 package use the instrumented auth client.
func (c *Client) authContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.authHTTP)
}

func (c *Client) tokenFrom(ot *oauth2.Token) tokens.Token {
	return tokens.Token{
		AccessToken:  ot.AccessToken,
		RefreshToken: ot.RefreshToken,
		Scopes:       scopesOf(ot),
		ExpiresAt:    ot.Expiry,
		UpdatedAt:    c.now(),
	}
}

// scopesOf reads the granted scopes. Twitch sends them as a JSON array.
func scopesOf(ot *oauth2.Token) []string {
	switch v := ot.Extra("scope").(type) {
	case []interface{}:
		scopes := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				scopes = append(scopes, str)
			}
		}
		return scopes
	case string:
		return strings.Fields(v)
	default:
		return nil
	}
}

// oauthEndpoint is the Twitch endpoint rooted at base.
func oauthEndpoint(base string) oauth2.Endpoint {
	ep := twitchoauth.Endpoint
	if base = strings.TrimRight(base, "/"); base != "" {
		ep.AuthURL = base + "/authorize"
		ep.TokenURL = base + "/token"
	}
	return ep
}

// IsUnauthorized reports whether err is a 401 from Helix.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
