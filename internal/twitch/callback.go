package twitch

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/zsiec/livedash/internal/tokens"
)

// ErrStateMismatch means the callback's state parameter does not match the
// one sent to the authorize page.
var ErrStateMismatch = errors.New("oauth state mismatch")

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>livedash authorization</title></head>
<body>
{{- if .Err}}
<h1>Authorization failed</h1>
<p>{{.Err}}</p>
{{- else}}
<h1>Tokens saved</h1>
<p>The access and refresh tokens are stored. You can close this window.</p>
{{- end}}
</body>
</html>
`))

// CallbackHandler completes the authorization-code flow at the redirect URI.
// It exchanges the code, saves the tokens and calls done exactly once with
// the outcome; later requests get 410 Gone.
func (c *Client) CallbackHandler(state string, done func(tokens.Token, error)) http.Handler {
	var (
		mu       sync.Mutex
		finished bool
	)
	finish := func(tok tokens.Token, err error) {
		mu.Lock()
		first := !finished
		finished = true
		mu.Unlock()
		if first {
			done(tok, err)
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		already := finished
		mu.Unlock()
		if already {
			http.Error(w, "authorization already completed", http.StatusGone)
			return
		}

		q := r.URL.Query()
		if state != "" && q.Get("state") != state {
			// Stray requests leave the flow open.
			c.logger.WithField("remote", r.RemoteAddr).Warn("Rejected OAuth callback with unexpected state")
			renderCallback(w, http.StatusBadRequest, ErrStateMismatch)
			return
		}
		if reason := q.Get("error"); reason != "" {
			err := fmt.Errorf("%w: %s: %s", ErrRefresh, reason, q.Get("error_description"))
			renderCallback(w, http.StatusBadRequest, err)
			finish(tokens.Token{}, err)
			return
		}

		tok, err := c.ExchangeCode(r.Context(), q.Get("code"))
		if err != nil {
			c.logger.WithError(err).Error("Failed to exchange authorization code")
			renderCallback(w, http.StatusBadGateway, err)
			finish(tok, err)
			return
		}

		c.logger.WithField("expires_at", tok.ExpiresAt).Info("Twitch authorization completed")
		renderCallback(w, http.StatusOK, nil)
		finish(tok, nil)
	})
}

func renderCallback(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackPage.Execute(w, struct{ Err error }{err})
}
