package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "livedash/test", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusTeapot)
	}))

	client := NewUpstreamClient("transport_test", "livedash/test", time.Second)
	teapots := upstreamRequestsTotal.WithLabelValues("transport_test", "418")
	failures := upstreamRequestsTotal.WithLabelValues("transport_test", "error")
	before, beforeErr := testutil.ToFloat64(teapots), testutil.ToFloat64(failures)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "overridden")
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "overridden", req.Header.Get("User-Agent"), "caller's request is not mutated")
	assert.Equal(t, before+1, testutil.ToFloat64(teapots))

	srv.Close()
	_, err = client.Get(srv.URL)
	require.Error(t, err)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failures))
}
