package metrics

import (
	"net/http"
	"time"
)

// UpstreamTransport records every round trip with RecordUpstreamRequest and
// stamps the User-Agent header.
type UpstreamTransport struct {
	API       string
	UserAgent string
	Base      http.RoundTripper
}

// NewUpstreamClient returns an http.Client whose requests are recorded
// under api.
func NewUpstreamClient(api, userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &UpstreamTransport{API: api, UserAgent: userAgent},
	}
}

// RoundTrip implements http.RoundTripper.
func (t *UpstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.UserAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	status := 0
	if err == nil {
		status = resp.StatusCode
	}
	RecordUpstreamRequest(t.API, status, time.Since(start).Seconds())
	return resp, err
}
