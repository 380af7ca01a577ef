package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeAuthenticator counts refresh calls and hands out sequenced tokens.
type fakeAuthenticator struct {
	refreshCalls  int
	exchangeCalls int
	refreshToken  *oauth2.Token
	refreshErr    error
	exchangeToken *oauth2.Token
}

func (f *fakeAuthenticator) AuthURL(state string, opts ...oauth2.AuthCodeOption) string {
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (f *fakeAuthenticator) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.exchangeCalls++
	return f.exchangeToken, nil
}

func (f *fakeAuthenticator) RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshToken, nil
}

// memoryStore is an in-memory TokenStore.
type memoryStore struct {
	token     *oauth2.Token
	saveCalls int
}

func (s *memoryStore) Load() (*oauth2.Token, error) {
	if s.token == nil {
		return nil, ErrNoToken
	}
	return s.token, nil
}

func (s *memoryStore) Save(token *oauth2.Token) error {
	s.saveCalls++
	s.token = token
	return nil
}

func (s *memoryStore) Clear() error {
	s.token = nil
	return nil
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func expiredToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-stale",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}
}

func TestTokenReturnsStoredValidToken(t *testing.T) {
	fa := &fakeAuthenticator{}
	store := &memoryStore{token: validToken()}
	m := NewManager(fa, store)

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Zero(t, fa.refreshCalls)
}

func TestTokenRefreshesExpiredTokenOnce(t *testing.T) {
	fa := &fakeAuthenticator{
		refreshToken: &oauth2.Token{
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
			Expiry:       time.Now().Add(time.Hour),
		},
	}
	store := &memoryStore{token: expiredToken()}
	m := NewManager(fa, store)

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	assert.Equal(t, 1, fa.refreshCalls)

	// A second call reuses the refreshed token
	token, err = m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	assert.Equal(t, 1, fa.refreshCalls)
}

func TestTokenPersistsRefreshedToken(t *testing.T) {
	fa := &fakeAuthenticator{
		refreshToken: &oauth2.Token{
			AccessToken: "access-2",
			Expiry:      time.Now().Add(time.Hour),
		},
	}
	store := &memoryStore{token: expiredToken()}
	m := NewManager(fa, store)

	_, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "access-2", store.token.AccessToken)
}

func TestTokenKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	// Spotify usually omits refresh_token in the refresh response
	fa := &fakeAuthenticator{
		refreshToken: &oauth2.Token{
			AccessToken: "access-2",
			Expiry:      time.Now().Add(time.Hour),
		},
	}
	store := &memoryStore{token: expiredToken()}
	m := NewManager(fa, store)

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", token.RefreshToken)
}

func TestTokenWithoutStoredToken(t *testing.T) {
	m := NewManager(&fakeAuthenticator{}, &memoryStore{})

	_, err := m.Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestTokenWithoutRefreshToken(t *testing.T) {
	store := &memoryStore{token: &oauth2.Token{
		AccessToken: "access-stale",
		Expiry:      time.Now().Add(-time.Hour),
	}}
	m := NewManager(&fakeAuthenticator{}, store)

	_, err := m.Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestInvalidateForcesRefresh(t *testing.T) {
	fa := &fakeAuthenticator{
		refreshToken: &oauth2.Token{
			AccessToken: "access-2",
			Expiry:      time.Now().Add(time.Hour),
		},
	}
	store := &memoryStore{token: validToken()}
	m := NewManager(fa, store)

	_, err := m.Token(context.Background())
	require.NoError(t, err)
	require.Zero(t, fa.refreshCalls)

	m.Invalidate()

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	assert.Equal(t, 1, fa.refreshCalls)
}

func TestExchangePersistsToken(t *testing.T) {
	fa := &fakeAuthenticator{exchangeToken: validToken()}
	store := &memoryStore{}
	m := NewManager(fa, store)

	require.NoError(t, m.Exchange(context.Background(), "the-code"))
	assert.Equal(t, 1, fa.exchangeCalls)
	assert.NotNil(t, store.token)
	assert.True(t, m.HasToken())
}

func TestLogoutClearsToken(t *testing.T) {
	store := &memoryStore{token: validToken()}
	m := NewManager(&fakeAuthenticator{}, store)

	require.True(t, m.HasToken())
	require.NoError(t, m.Logout())
	assert.False(t, m.HasToken())
	assert.Nil(t, store.token)
}
