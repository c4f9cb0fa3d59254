package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "livedash:"

const twitchKey = "twitch:tokens"

// RedisStore keeps the token pair as one JSON value in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *logrus.Logger
}

// NewRedisStore creates a store keeping the token pair under keyPrefix.
func NewRedisStore(client *redis.Client, keyPrefix string, logger *logrus.Logger) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		key:    keyPrefix + twitchKey,
		logger: logger,
	}
}

// Key is the Redis key holding the tokens.
func (s *RedisStore) Key() string { return s.key }

// Load reads the token pair. A missing key is ErrNotFound.
func (s *RedisStore) Load(ctx context.Context) (Token, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Token{}, ErrNotFound
	}
	if err != nil {
		return Token{}, fmt.Errorf("failed to load tokens: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return Token{}, fmt.Errorf("failed to decode stored tokens: %w", err)
	}
	return tok, nil
}

// Save writes the token pair as JSON.
func (s *RedisStore) Save(ctx context.Context, tok Token) error {
	if tok.UpdatedAt.IsZero() {
		tok.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"key":        s.key,
		"expires_at": tok.ExpiresAt,
	}).Debug("Stored Twitch tokens")
	return nil
}
