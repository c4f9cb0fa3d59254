package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zsiec/livedash/pkg/version"
)

// maxBodyBytes caps a status snapshot body.
const maxBodyBytes = 1 << 20

// Snapshot is one decoded status resource.
type Snapshot map[string]any

// Fetcher retrieves the snapshot served at endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) (Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, endpoint string) (Snapshot, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, endpoint string) (Snapshot, error) {
	return f(ctx, endpoint)
}

// HTTPFetcher fetches snapshots from a status backend over HTTP.
type HTTPFetcher struct {
	baseURL   *url.URL
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher for the absolute baseURL. timeout bounds
// each request.
func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &HTTPFetcher{
		baseURL:   u,
		client:    &http.Client{Timeout: timeout},
		userAgent: version.GetInfo().UserAgent(),
	}, nil
}

// URL resolves endpoint against the base URL.
func (f *HTTPFetcher) URL(endpoint string) string {
	return f.baseURL.String() + "/" + strings.TrimLeft(endpoint, "/")
}

// Fetch issues a GET and decodes the body as a JSON object with numbers kept
// as their literal text.
func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint string) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w: %s returned %d", ErrFetch, ErrBadStatus, endpoint, resp.StatusCode)
	}

	return DecodeSnapshot(body)
}

// DecodeSnapshot parses a JSON object. Anything else is ErrMalformed.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is %T, not an object", ErrMalformed, raw)
	}
	return Snapshot(obj), nil
}

// SnapshotOf encodes v as JSON and decodes it back as a Snapshot, so a
// payload built in-process projects exactly like one fetched over HTTP.
func SnapshotOf(v any) (Snapshot, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeSnapshot(b)
}
