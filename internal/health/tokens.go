package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zsiec/livedash/internal/tokens"
)

// TokenChecker reports whether a usable Twitch token pair is stored.
type TokenChecker struct {
	store tokens.Store
	now   func() time.Time
}

// NewTokenChecker creates a checker over the token store.
func NewTokenChecker(store tokens.Store) *TokenChecker {
	return &TokenChecker{store: store, now: time.Now}
}

// Name returns the name of the checker.
func (t *TokenChecker) Name() string { return "twitch_tokens" }

// Check reports degraded unless a refresh token is stored and the access
// token is current.
func (t *TokenChecker) Check(ctx context.Context) error {
	tok, err := t.store.Load(ctx)
	if errors.Is(err, tokens.ErrNotFound) {
		return fmt.Errorf("%w: no stored tokens, run livedash-auth", ErrDegraded)
	}
	if err != nil {
		return err
	}
	if tok.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token stored", ErrDegraded)
	}
	if tok.Expired(t.now()) {
		// Refreshed on the next 401.
		return fmt.Errorf("%w: access token expired %s", ErrDegraded, humanize.Time(tok.ExpiresAt))
	}
	return nil
}
