// Package youtube reads channel statistics and the latest upload from the
// YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/zsiec/livedash/internal/config"
	"github.com/zsiec/livedash/internal/metrics"
	"github.com/zsiec/livedash/pkg/version"
)

const apiLabel = "youtube"

// APIError is a non-2xx Data API response.
type APIError struct {
	Status  int
	Path    string
	Reason  string
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("youtube %s: HTTP %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("youtube %s: HTTP %d", e.Path, e.Status)
}

// Thumbnails maps a size name ("default", "medium", "high") to its URL.
type Thumbnails map[string]string

// High returns the "high" thumbnail URL, or "" when absent.
func (t Thumbnails) High() string {
	return t["high"]
}

func thumbnailsOf(d *ytapi.ThumbnailDetails) Thumbnails {
	t := Thumbnails{}
	if d == nil {
		return t
	}
	for name, th := range map[string]*ytapi.Thumbnail{
		"default": d.Default,
		"medium":  d.Medium,
		"high":    d.High,
	} {
		if th != nil && th.Url != "" {
			t[name] = th.Url
		}
	}
	return t
}

// Channel is a channel resource with the statistics and snippet parts.
type Channel struct {
	ID      string
	Snippet struct {
		Title       string
		Description string
		CustomURL   string
		Thumbnails  Thumbnails
	}
	// Counts are decimal strings, "" when the part is missing.
	Statistics struct {
		ViewCount       string
		SubscriberCount string
		VideoCount      string
	}
}

// Video is a search result for an upload.
type Video struct {
	ID struct {
		Kind    string
		VideoID string
	}
	Snippet struct {
		Title       string
		PublishedAt time.Time
		Thumbnails  Thumbnails
	}
}

// Client queries one channel with an API key.
type Client struct {
	cfg     config.YouTubeConfig
	service *ytapi.Service
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// New creates a client for cfg.ChannelID. Requests carry cfg.APIKey and are
// recorded in the upstream request metrics.
func New(ctx context.Context, cfg config.YouTubeConfig, log *logrus.Logger) (*Client, error) {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	httpClient := metrics.NewUpstreamClient(apiLabel, version.GetInfo().UserAgent(), cfg.Timeout)
	httpClient.Transport = &transport.APIKey{Key: cfg.APIKey, Transport: httpClient.Transport}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.Endpoint, "/")+"/"))
	}
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &Client{
		cfg:     cfg,
		service: service,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log,
	}, nil
}

// Channel returns the configured channel, or nil when the response has no
// items.
func (c *Client) Channel(ctx context.Context) (*Channel, error) {
	const path = "/channels"
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("youtube %s: rate limiter: %w", path, err)
	}

	resp, err := c.service.Channels.List([]string{"statistics", "snippet"}).
		Id(c.cfg.ChannelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.apiError(path, err)
	}
	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, nil
	}

	item := resp.Items[0]
	ch := &Channel{ID: item.Id}
	if sn := item.Snippet; sn != nil {
		ch.Snippet.Title = sn.Title
		ch.Snippet.Description = sn.Description
		ch.Snippet.CustomURL = sn.CustomUrl
		ch.Snippet.Thumbnails = thumbnailsOf(sn.Thumbnails)
	}
	if st := item.Statistics; st != nil {
		ch.Statistics.ViewCount = strconv.FormatUint(st.ViewCount, 10)
		ch.Statistics.SubscriberCount = strconv.FormatUint(st.SubscriberCount, 10)
		ch.Statistics.VideoCount = strconv.FormatUint(st.VideoCount, 10)
	}
	return ch, nil
}

// LatestVideo returns the channel's most recent upload, or nil when the
// channel has none.
func (c *Client) LatestVideo(ctx context.Context) (*Video, error) {
	const path = "/search"
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("youtube %s: rate limiter: %w", path, err)
	}

	resp, err := c.service.Search.List([]string{"snippet"}).
		ChannelId(c.cfg.ChannelID).
		Order("date").
		MaxResults(1).
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.apiError(path, err)
	}
	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, nil
	}

	item := resp.Items[0]
	v := &Video{}
	if id := item.Id; id != nil {
		v.ID.Kind = id.Kind
		v.ID.VideoID = id.VideoId
	}
	if sn := item.Snippet; sn != nil {
		v.Snippet.Title = sn.Title
		v.Snippet.Thumbnails = thumbnailsOf(sn.Thumbnails)
		if t, err := time.Parse(time.RFC3339, sn.PublishedAt); err == nil {
			v.Snippet.PublishedAt = t
		}
	}
	return v, nil
}

// apiError converts a googleapi.Error into an APIError. Transport failures
// are wrapped unchanged.
func (c *Client) apiError(path string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("youtube %s: %w", path, err)
	}

	apiErr := &APIError{Status: gerr.Code, Path: path, Message: gerr.Message}
	if len(gerr.Errors) > 0 {
		apiErr.Reason = gerr.Errors[0].Reason
	}
	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"status": apiErr.Status,
		"reason": apiErr.Reason,
	}).Debug("YouTube API returned an error")
	return apiErr
}
