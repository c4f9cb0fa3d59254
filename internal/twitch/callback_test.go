package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/livedash/internal/tokens"
)

type callbackResult struct {
	tok   tokens.Token
	err   error
	calls int
}

func (r *callbackResult) done(tok tokens.Token, err error) {
	r.tok, r.err = tok, err
	r.calls++
}

func callback(h http.Handler, query string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
	return rr
}

func TestCallbackExchangesCodeAndSaves(t *testing.T) {
	f := newFakeTwitch(t)
	store := tokens.NewMemoryStore(tokens.Token{})
	c := newTestClient(t, f.config(), store)

	var res callbackResult
	h := c.CallbackHandler("xyz", res.done)

	rr := callback(h, "code=the-code&state=xyz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tokens saved")

	require.Equal(t, 1, res.calls)
	require.NoError(t, res.err)
	assert.Equal(t, "code-token", res.tok.AccessToken)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "code-refresh", saved.RefreshToken)

	rr = callback(h, "code=the-code&state=xyz")
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, 1, res.calls)
}

func TestCallbackRejectsWrongState(t *testing.T) {
	f := newFakeTwitch(t)
	c := newTestClient(t, f.config(), nil)

	var res callbackResult
	h := c.CallbackHandler("xyz", res.done)

	rr := callback(h, "code=the-code&state=other")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, res.calls, "flow stays open")
	assert.Equal(t, int32(0), f.refreshes.Load())
}

func TestCallbackReportsDeniedAccess(t *testing.T) {
	f := newFakeTwitch(t)
	c := newTestClient(t, f.config(), nil)

	var res callbackResult
	h := c.CallbackHandler("", res.done)

	rr := callback(h, "error=access_denied&error_description=The+user+denied+you+access")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Authorization failed")
	require.Equal(t, 1, res.calls)
	assert.ErrorIs(t, res.err, ErrRefresh)
	assert.Contains(t, res.err.Error(), "access_denied")
}

func TestCallbackExchangeFailure(t *testing.T) {
	f := newFakeTwitch(t)
	f.refreshFails = true
	c := newTestClient(t, f.config(), nil)

	var res callbackResult
	rr := callback(c.CallbackHandler("", res.done), "code=the-code")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, 1, res.calls)
	assert.Error(t, res.err)
}
