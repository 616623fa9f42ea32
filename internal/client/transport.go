package client

import (
	"net/http"
	"sync"
)

// tokenSource hands the transport the current access token and performs a
// refresh when asked. Session implements it.
type tokenSource interface {
	accessToken() string
	refresh() error
}

// authTransport injects the bearer token into every request and transparently
// retries once after a refresh when the server answers 401. Concurrent 401s
// collapse into a single refresh call; the token observed before waiting is
// compared afterwards so followers reuse the leader's result instead of
// refreshing again.
type authTransport struct {
	base   http.RoundTripper
	source tokenSource

	mu sync.Mutex // serializes refresh attempts
}

func newAuthTransport(base http.RoundTripper, source tokenSource) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, source: source}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.source.accessToken()
	if token == "" {
		return t.base.RoundTrip(req)
	}

	attempt := req.Clone(req.Context())
	attempt.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Retrying needs a rewindable body
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	newToken, err := t.refreshToken(token)
	if err != nil || newToken == "" || newToken == token {
		return resp, nil
	}
	resp.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+newToken)

	return t.base.RoundTrip(retry)
}

// refreshToken performs a single-flight refresh. staleToken is the token the
// caller saw fail; if another goroutine already replaced it, that newer token
// is returned without a second refresh round trip.
func (t *authTransport) refreshToken(staleToken string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current := t.source.accessToken(); current != staleToken {
		return current, nil
	}

	if err := t.source.refresh(); err != nil {
		return "", err
	}
	return t.source.accessToken(), nil
}
