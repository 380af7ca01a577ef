package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeSource hands out sequenced tokens and counts invalidations.
type fakeSource struct {
	tokens      []string
	calls       int
	invalidated int
}

func (s *fakeSource) Token(ctx context.Context) (*oauth2.Token, error) {
	idx := s.calls
	if idx >= len(s.tokens) {
		idx = len(s.tokens) - 1
	}
	s.calls++
	return &oauth2.Token{AccessToken: s.tokens[idx], TokenType: "Bearer"}, nil
}

func (s *fakeSource) Invalidate() {
	s.invalidated++
}

func TestTransportSetsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := &http.Client{Transport: &Transport{Source: &fakeSource{tokens: []string{"tok-1"}}}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestTransportRetriesOnceAfter401(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		if len(auths) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	source := &fakeSource{tokens: []string{"tok-stale", "tok-fresh"}}
	client := &http.Client{Transport: &Transport{Source: source}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, source.invalidated)
	require.Len(t, auths, 2)
	assert.Equal(t, "Bearer tok-stale", auths[0])
	assert.Equal(t, "Bearer tok-fresh", auths[1])
}

func TestTransportDoesNotRetryTwice(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	source := &fakeSource{tokens: []string{"tok-1", "tok-2", "tok-3"}}
	client := &http.Client{Transport: &Transport{Source: source}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, requests)
	assert.Equal(t, 1, source.invalidated)
}

func TestTransportReplaysBodyOnRetry(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	source := &fakeSource{tokens: []string{"tok-1", "tok-2"}}
	client := &http.Client{Transport: &Transport{Source: source}}

	resp, err := client.Post(srv.URL, "application/json", bytes.NewReader([]byte(`{"uris":[]}`)))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
}

func TestTransportSkipsRetryForNonReplayableBody(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	source := &fakeSource{tokens: []string{"tok-1", "tok-2"}}
	transport := &Transport{Source: source}

	// Build a request whose body cannot be replayed
	req, err := http.NewRequest(http.MethodPut, srv.URL, io.NopCloser(bytes.NewReader([]byte("x"))))
	require.NoError(t, err)
	req.GetBody = nil

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, requests)
}
