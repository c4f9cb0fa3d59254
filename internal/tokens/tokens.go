// Package tokens persists the Twitch OAuth token pair across restarts.
package tokens

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no stored tokens")

// Token is an OAuth access/refresh token pair.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Scopes       []string  `json:"scopes,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the access token is past its expiry. Tokens
// without an expiry never report expired.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Store loads and saves the current token pair.
type Store interface {
	Load(ctx context.Context) (Token, error)
	Save(ctx context.Context, tok Token) error
}

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu  sync.RWMutex
	tok *Token
}

// NewMemoryStore returns a store seeded with initial when it carries an
// access token.
func NewMemoryStore(initial Token) *MemoryStore {
	s := &MemoryStore{}
	if initial.AccessToken != "" {
		s.tok = &initial
	}
	return s
}

// Load returns the saved token or ErrNotFound.
func (s *MemoryStore) Load(ctx context.Context) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tok == nil {
		return Token{}, ErrNotFound
	}
	return *s.tok, nil
}

// Save replaces the saved token.
func (s *MemoryStore) Save(ctx context.Context, tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.UpdatedAt.IsZero() {
		tok.UpdatedAt = time.Now()
	}
	s.tok = &tok
	return nil
}

// LoadOr returns the stored token, or fallback when the store is empty.
func LoadOr(ctx context.Context, s Store, fallback Token) (Token, error) {
	tok, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	return tok, err
}
