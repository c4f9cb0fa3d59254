package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/livedash/internal/metrics"
)

func newFetcher(t *testing.T, h http.HandlerFunc) *HTTPFetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	f, err := NewHTTPFetcher(srv.URL+"/", time.Second)
	require.NoError(t, err)
	return f
}

func TestHTTPFetcherDecodesObject(t *testing.T) {
	f := newFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/twitch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "livedash/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"followers": 120, "stream_online": true, "title": "Hello"}`))
	})

	snap, err := f.Fetch(context.Background(), "/api/twitch")
	require.NoError(t, err)
	assert.Equal(t, json.Number("120"), snap["followers"])
	assert.Equal(t, true, snap["stream_online"])
	assert.Equal(t, "Hello", snap["title"])
}

func TestHTTPFetcherBadStatus(t *testing.T) {
	f := newFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	})

	_, err := f.Fetch(context.Background(), "/api/youtube")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPFetcherMalformed(t *testing.T) {
	bodies := map[string]string{
		"array":     `[1, 2, 3]`,
		"string":    `"ok"`,
		"truncated": `{"followers": `,
		"html":      `<html></html>`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := f.Fetch(context.Background(), "/api/status")
			assert.ErrorIs(t, err, ErrMalformed)
			assert.NotErrorIs(t, err, ErrFetch)
		})
	}
}

func TestHTTPFetcherNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	f, err := NewHTTPFetcher(srv.URL, 200*time.Millisecond)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), "/api/twitch")
	assert.ErrorIs(t, err, ErrFetch)
	assert.NotErrorIs(t, err, ErrBadStatus)
}

// blockingServer holds every request until the client goes away. started
// receives once per request.
func blockingServer(t *testing.T) (*httptest.Server, <-chan struct{}) {
	t.Helper()
	started := make(chan struct{}, 8)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return srv, started
}

func TestHTTPFetcherCanceledInFlight(t *testing.T) {
	srv, started := blockingServer(t)
	f, err := NewHTTPFetcher(srv.URL, 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err = f.Fetch(ctx, "/api/twitch")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, metrics.OutcomeCanceled, outcome(err))
}

func TestNewHTTPFetcherRejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPFetcher("localhost:5000", time.Second)
	assert.Error(t, err)

	f, err := NewHTTPFetcher("http://localhost:5000/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api/status", f.URL("/api/status"))
	assert.Equal(t, "http://localhost:5000/api/status", f.URL("api/status"))
}
