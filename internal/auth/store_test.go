package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("spotifydeck-test", "oauth-token")

	token := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}

	require.NoError(t, store.Save(token))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestKeyringStoreLoadWithoutToken(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("spotifydeck-test", "oauth-token-missing")

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestKeyringStoreClear(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("spotifydeck-test", "oauth-token-clear")

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "x"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	// Clearing again is not an error
	assert.NoError(t, store.Clear())
}
