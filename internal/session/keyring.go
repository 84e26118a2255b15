package session

import (
	"errors"

	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/zalando/go-keyring"
)

// KeyringStore keeps session values in the operating system keychain,
// one service per profile.
type KeyringStore struct {
	service string
}

func NewKeyringStore(profile string) *KeyringStore {
	return &KeyringStore{service: meta.CLIName + ":" + profile}
}

func (s *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *KeyringStore) Set(key, value string) error {
	return keyring.Set(s.service, key, value)
}

func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// NewStore builds the Store named by backend ("file" or "keyring").
func NewStore(backend, configDir, profile string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(BuildDefaultSessionFilePath(configDir, profile)), nil
	case "keyring":
		return NewKeyringStore(profile), nil
	default:
		return nil, errors.New(`invalid session backend "` + backend + `", must be one of [file keyring]`)
	}
}
