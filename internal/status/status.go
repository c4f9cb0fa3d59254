// Package status builds the JSON snapshots served to dashboards.
package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zsiec/livedash/internal/twitch"
	"github.com/zsiec/livedash/internal/youtube"
)

// ErrNoChannel means the YouTube API returned no channel for the configured
// id.
var ErrNoChannel = errors.New("no channel data")

const placeholder = "-"

// TwitchStatus is served at /api/twitch and /api/status.
type TwitchStatus struct {
	DisplayName  string `json:"display_name"`
	Login        string `json:"login"`
	Followers    int64  `json:"followers"`
	ViewsTotal   int64  `json:"views_total"`
	StreamOnline bool   `json:"stream_online"`
	ViewerCount  int64  `json:"viewer_count"`
	Title        string `json:"title"`
}

// YouTubeStatus is served at /api/youtube. Counts are the API's decimal
// strings.
type YouTubeStatus struct {
	Subscribers          string `json:"subscribers"`
	ViewsTotal           string `json:"views_total"`
	Title                string `json:"title"`
	Thumbnail            string `json:"thumbnail"`
	LatestVideoTitle     string `json:"latest_video_title"`
	LatestVideoThumbnail string `json:"latest_video_thumbnail"`
}

// TwitchAPI is the subset of the Helix client the service uses.
type TwitchAPI interface {
	User(ctx context.Context) (*twitch.User, error)
	FollowerTotal(ctx context.Context) (int64, error)
	LiveStream(ctx context.Context) (*twitch.Stream, error)
}

// YouTubeAPI is the subset of the Data API client the service uses.
type YouTubeAPI interface {
	Channel(ctx context.Context) (*youtube.Channel, error)
	LatestVideo(ctx context.Context) (*youtube.Video, error)
}

// UpstreamError marks a failure of one of the platform APIs.
type UpstreamError struct {
	API string
	Err error
}

// Error implements error.
func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.API, e.Err) }
// Unwrap returns the client error.
func (e *UpstreamError) Unwrap() error { return e.Err }

// Service assembles status snapshots from the platform clients.
type Service struct {
	twitch  TwitchAPI
	youtube YouTubeAPI
	logger  *logrus.Entry
}

// NewService creates a service over the Twitch and YouTube clients.
func NewService(tw TwitchAPI, yt YouTubeAPI, logger *logrus.Entry) *Service {
	return &Service{twitch: tw, youtube: yt, logger: logger}
}

// Twitch queries the user, follower total and live stream. Missing user
// fields fall back to "-".
func (s *Service) Twitch(ctx context.Context) (*TwitchStatus, error) {
	user, err := s.twitch.User(ctx)
	if err != nil {
		return nil, &UpstreamError{API: "twitch", Err: err}
	}
	followers, err := s.twitch.FollowerTotal(ctx)
	if err != nil {
		return nil, &UpstreamError{API: "twitch", Err: err}
	}
	stream, err := s.twitch.LiveStream(ctx)
	if err != nil {
		return nil, &UpstreamError{API: "twitch", Err: err}
	}

	st := &TwitchStatus{
		DisplayName: placeholder,
		Login:       placeholder,
		Followers:   followers,
		Title:       placeholder,
	}
	if user != nil {
		st.DisplayName = orPlaceholder(user.DisplayName)
		st.Login = orPlaceholder(user.Login)
		st.ViewsTotal = user.ViewCount
	}
	if stream != nil {
		st.StreamOnline = true
		st.ViewerCount = stream.ViewerCount
		st.Title = orPlaceholder(stream.Title)
	}
	return st, nil
}

// YouTube queries channel statistics and the latest upload. A missing
// channel is ErrNoChannel. A failed latest-upload lookup is logged and
// rendered as no upload.
func (s *Service) YouTube(ctx context.Context) (*YouTubeStatus, error) {
	channel, err := s.youtube.Channel(ctx)
	if err != nil {
		return nil, &UpstreamError{API: "youtube", Err: err}
	}
	if channel == nil {
		return nil, ErrNoChannel
	}

	video, err := s.youtube.LatestVideo(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Latest YouTube upload lookup failed")
		video = nil
	}

	st := &YouTubeStatus{
		Subscribers:          orZero(channel.Statistics.SubscriberCount),
		ViewsTotal:           orZero(channel.Statistics.ViewCount),
		Title:                orPlaceholder(channel.Snippet.Title),
		Thumbnail:            channel.Snippet.Thumbnails.High(),
		LatestVideoTitle:     placeholder,
		LatestVideoThumbnail: "",
	}
	if video != nil {
		st.LatestVideoTitle = video.Snippet.Title
		st.LatestVideoThumbnail = video.Snippet.Thumbnails.High()
	}
	return st, nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
