package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource supplies bearer tokens for outgoing requests and can be told
// to drop a token the server has rejected. *Manager satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	Invalidate()
}

// Transport injects a bearer token into each request. When Spotify answers
// 401 the cached token is invalidated and the request is retried exactly
// once with a freshly refreshed token.
type Transport struct {
	// Source provides and invalidates tokens. Usually a *Manager.
	Source TokenSource

	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Source.Token(req.Context())
	if err != nil {
		return nil, err
	}

	resp, err := t.send(req, token)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// Requests with a non-replayable body cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}
	resp.Body.Close()

	t.Source.Invalidate()
	token, err = t.Source.Token(req.Context())
	if err != nil {
		return nil, err
	}
	return t.send(req, token)
}

// send issues a clone of req with the token's Authorization header set.
func (t *Transport) send(req *http.Request, token *oauth2.Token) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	token.SetAuthHeader(clone)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
