package auth

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned by a TokenStore when no token has been saved yet.
var ErrNoToken = errors.New("auth: no stored token")

// TokenStore persists the OAuth token pair between runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
	Clear() error
}

// KeyringStore stores the token as JSON in the system keyring, alongside the
// other spotifydeck secrets.
type KeyringStore struct {
	Service string
	Account string
}

// NewKeyringStore creates a keyring-backed token store.
func NewKeyringStore(service, account string) *KeyringStore {
	return &KeyringStore{Service: service, Account: account}
}

// Load reads and decodes the stored token.
func (s *KeyringStore) Load() (*oauth2.Token, error) {
	data, err := keyring.Get(s.Service, s.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoToken
		}
		return nil, errors.Wrap(err, "reading token from keyring")
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, errors.Wrap(err, "decoding stored token")
	}
	return &token, nil
}

// Save encodes and stores the token.
func (s *KeyringStore) Save(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "encoding token")
	}

	// Delete first to avoid "already exists" errors on update
	_ = keyring.Delete(s.Service, s.Account)
	if err := keyring.Set(s.Service, s.Account, string(data)); err != nil {
		return errors.Wrap(err, "writing token to keyring")
	}
	return nil
}

// Clear removes the stored token.
func (s *KeyringStore) Clear() error {
	err := keyring.Delete(s.Service, s.Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "deleting token from keyring")
	}
	return nil
}
