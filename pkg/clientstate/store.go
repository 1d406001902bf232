// Package clientstate persists the per-visitor storefront keys (cart,
// wishlist and the auth markers) that a browser would otherwise keep in
// local storage. Every write replaces the whole value for a key.
package clientstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Key names one persisted value for a visitor session.
type Key string

const (
	KeyCart       Key = "cart"
	KeyWishlist   Key = "wishlist"
	KeyIsLoggedIn Key = "isLoggedIn"
	KeyAuthToken  Key = "authToken"
	KeyUserName   Key = "userName"
	KeyUserEmail  Key = "userEmail"
)

// AuthKeys are cleared on logout or when a request is rejected as unauthorized.
var AuthKeys = []Key{KeyIsLoggedIn, KeyAuthToken, KeyUserName, KeyUserEmail}

// ErrMissingSession is returned when an operation is attempted without a visitor session id.
var ErrMissingSession = errors.New("visitor session id is required")

// Store reads and writes whole values per (session, key).
type Store interface {
	Load(ctx context.Context, session string, key Key) (string, bool, error)
	Save(ctx context.Context, session string, key Key, value string) error
	Delete(ctx context.Context, session string, keys ...Key) error
}

// LoadJSON decodes the stored value into dst. It reports false when nothing is stored.
func LoadJSON(ctx context.Context, store Store, session string, key Key, dst any) (bool, error) {
	raw, ok, err := store.Load(ctx, session, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes value and overwrites the stored key.
func SaveJSON(ctx context.Context, store Store, session string, key Key, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Save(ctx, session, key, string(payload))
}

// AuthState is the login marker set persisted alongside the cart.
type AuthState struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	Token      string `json:"-"`
	UserName   string `json:"user_name,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
}

// SaveAuth writes the four auth keys for a visitor.
func SaveAuth(ctx context.Context, store Store, session string, state AuthState) error {
	values := map[Key]string{
		KeyIsLoggedIn: fmt.Sprintf("%t", state.IsLoggedIn),
		KeyAuthToken:  state.Token,
		KeyUserName:   state.UserName,
		KeyUserEmail:  state.UserEmail,
	}
	for _, key := range AuthKeys {
		if err := store.Save(ctx, session, key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// LoadAuth reads the auth keys. Missing keys yield a logged-out state.
func LoadAuth(ctx context.Context, store Store, session string) (AuthState, error) {
	var state AuthState
	for _, key := range AuthKeys {
		value, ok, err := store.Load(ctx, session, key)
		if err != nil {
			return AuthState{}, err
		}
		if !ok {
			continue
		}
		switch key {
		case KeyIsLoggedIn:
			state.IsLoggedIn = value == "true"
		case KeyAuthToken:
			state.Token = value
		case KeyUserName:
			state.UserName = value
		case KeyUserEmail:
			state.UserEmail = value
		}
	}
	return state, nil
}

// ClearAuth removes the auth keys and leaves cart and wishlist untouched.
func ClearAuth(ctx context.Context, store Store, session string) error {
	return store.Delete(ctx, session, AuthKeys...)
}

func validSession(session string) error {
	if strings.TrimSpace(session) == "" {
		return ErrMissingSession
	}
	return nil
}
