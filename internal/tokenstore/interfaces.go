package tokenstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when no token has been stored yet.
	ErrNotFound = errors.New("token not found")

	// ErrMalformedRecord is returned by Load when the stored record cannot be parsed.
	ErrMalformedRecord = errors.New("malformed token record")

	// ErrReadOnly is returned by Save on backends that cannot be written.
	ErrReadOnly = errors.New("token storage is read-only")
)

// TokenStore loads and saves a single bearer token.
type TokenStore interface {
	// Load returns the stored token, or ErrNotFound if there is none.
	Load(ctx context.Context) (string, error)

	// Save persists the token, overwriting any previous value.
	Save(ctx context.Context, token string) error
}
