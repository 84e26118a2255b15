// Package session persists the storefront login session (bearer token and
// the buyer id used by buyer-scoped flows) and exposes it to outbound calls
// through a TokenSource.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// TokenKey is the store key holding the bearer token.
	TokenKey = "token"
	// BuyerIDKey is the store key holding the logged in buyer id.
	BuyerIDKey = "buyerId"
)

var (
	// ErrNotFound is returned by a Store when the key has no value.
	ErrNotFound = errors.New("session value not found")
	// ErrNoToken is returned by a Provider when no bearer token is available.
	ErrNoToken = errors.New("no session token available")
)

// Store is a string key/value store scoped to one profile.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// TokenSource yields the bearer token attached to every storefront request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (s StaticToken) Token(_ context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Provider resolves the token once, preferring an explicit override
// (flag, env or config) over the persisted session, and serves the cached
// value afterwards. The token only changes at login, which happens in a
// separate process invocation.
type Provider struct {
	store    Store
	override string

	once  sync.Once
	token string
	err   error
}

// NewProvider returns a Provider over store. A non-empty override wins.
func NewProvider(store Store, override string) *Provider {
	return &Provider{
		store:    store,
		override: strings.TrimSpace(override),
	}
}

func (p *Provider) Token(_ context.Context) (string, error) {
	p.once.Do(func() {
		if p.override != "" {
			p.token = p.override
			return
		}
		if p.store == nil {
			p.err = ErrNoToken
			return
		}
		token, err := p.store.Get(TokenKey)
		switch {
		case errors.Is(err, ErrNotFound):
			p.err = ErrNoToken
		case err != nil:
			p.err = fmt.Errorf("failed to read session token: %w", err)
		case strings.TrimSpace(token) == "":
			p.err = ErrNoToken
		default:
			p.token = token
		}
	})
	return p.token, p.err
}

// BuyerID returns the persisted buyer id, if any.
func (p *Provider) BuyerID() (string, error) {
	if p.store == nil {
		return "", ErrNotFound
	}
	return p.store.Get(BuyerIDKey)
}

// Login persists a new session. An empty buyerID removes any stale value.
func Login(store Store, token, buyerID string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	if err := store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	if buyerID = strings.TrimSpace(buyerID); buyerID != "" {
		if err := store.Set(BuyerIDKey, buyerID); err != nil {
			return fmt.Errorf("failed to store buyer id: %w", err)
		}
		return nil
	}
	if err := store.Delete(BuyerIDKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to clear buyer id: %w", err)
	}
	return nil
}

// Logout removes every persisted session value.
func Logout(store Store) error {
	var errs []error
	for _, key := range []string{TokenKey, BuyerIDKey} {
		if err := store.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
