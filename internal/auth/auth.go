// Package auth owns the Spotify OAuth credential lifecycle: obtain a token
// via the authorization-code flow, persist it, refresh it lazily before it
// expires, and invalidate it when Spotify rejects it.
package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrNotAuthenticated is returned when no token has been obtained yet.
// The operator needs to run the login flow.
var ErrNotAuthenticated = errors.New("auth: not logged in to Spotify")

// Authenticator is the part of the Spotify OAuth helper the manager uses.
// *spotifyauth.Authenticator satisfies it.
type Authenticator interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// Manager caches the current token pair in memory, refreshes it through the
// refresh-token grant when it expires, and writes every new pair (including
// rotated refresh tokens) through to the store.
type Manager struct {
	auth  Authenticator
	store TokenStore

	mu    sync.Mutex
	token *oauth2.Token
}

// NewManager creates a Manager on top of an authenticator and a token store.
func NewManager(auth Authenticator, store TokenStore) *Manager {
	return &Manager{auth: auth, store: store}
}

// AuthURL returns the Spotify authorize URL for the given CSRF state.
func (m *Manager) AuthURL(state string) string {
	return m.auth.AuthURL(state)
}

// Exchange trades an authorization code for a token pair and persists it.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	token, err := m.auth.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(err, "exchanging authorization code")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setToken(token)
}

// Token returns a valid access token, loading the persisted pair on first
// use and refreshing through the refresh-token grant when expired.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil {
		stored, err := m.store.Load()
		if err != nil {
			if errors.Is(err, ErrNoToken) {
				return nil, ErrNotAuthenticated
			}
			return nil, err
		}
		m.token = stored
	}

	if m.token.Valid() {
		return m.token, nil
	}

	if m.token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	refreshed, err := m.auth.RefreshToken(ctx, m.token)
	if err != nil {
		return nil, errors.Wrap(err, "refreshing token")
	}

	// Spotify may rotate the refresh token; keep the old one when it doesn't.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = m.token.RefreshToken
	}

	if err := m.setToken(refreshed); err != nil {
		return nil, err
	}
	return m.token, nil
}

// Invalidate expires the cached access token so the next Token call goes
// through the refresh grant. Called after Spotify answers 401.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != nil {
		m.token.Expiry = time.Now().Add(-time.Minute)
	}
}

// HasToken reports whether a token pair is available, in memory or persisted.
func (m *Manager) HasToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != nil {
		return true
	}
	_, err := m.store.Load()
	return err == nil
}

// Logout drops the cached token and removes the persisted pair.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return m.store.Clear()
}

// Client returns an HTTP client that injects bearer tokens and retries a
// rejected request once after refreshing.
func (m *Manager) Client() *http.Client {
	return &http.Client{
		Transport: &Transport{Source: m},
		Timeout:   15 * time.Second,
	}
}

// setToken caches and persists a new token pair. Callers hold m.mu.
func (m *Manager) setToken(token *oauth2.Token) error {
	m.token = token
	if err := m.store.Save(token); err != nil {
		return errors.Wrap(err, "persisting token")
	}
	return nil
}
