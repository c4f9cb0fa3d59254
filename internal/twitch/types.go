package twitch

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized is wrapped by APIError for 401 responses that survived
	// a token refresh.
	ErrUnauthorized = errors.New("twitch: unauthorized")
	// ErrRefresh means the token endpoint rejected a refresh or code
	// exchange.
	ErrRefresh = errors.New("twitch: token request failed")
)

// APIError is a non-2xx Helix response.
type APIError struct {
	Status  int
	Path    string
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("twitch %s: HTTP %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("twitch %s: HTTP %d", e.Path, e.Status)
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// User is a Helix user.
type User struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	BroadcasterType string    `json:"broadcaster_type"`
	Description     string    `json:"description"`
	ProfileImageURL string    `json:"profile_image_url"`
	ViewCount       int64     `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stream is a live broadcast.
type Stream struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserLogin   string    `json:"user_login"`
	GameName    string    `json:"game_name"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	ViewerCount int64     `json:"viewer_count"`
	StartedAt   time.Time `json:"started_at"`
}

type usersResponse struct {
	Data []User `json:"data"`
}

type streamsResponse struct {
	Data []Stream `json:"data"`
}

type followersResponse struct {
	Total int64 `json:"total"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}
