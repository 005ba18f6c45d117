package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/florianilch/gamenote/internal/igdb"
	"github.com/florianilch/gamenote/internal/tokenstore"
)

// Authenticator acquires a fresh bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

// PersistentToken holds the session's bearer token and keeps the token store in sync.
// The store is only written after a successful authentication.
type PersistentToken struct {
	auth  Authenticator
	store tokenstore.TokenStore

	mu      sync.Mutex
	current string
}

// Compile-time check to ensure PersistentToken implements igdb.TokenProvider
var _ igdb.TokenProvider = (*PersistentToken)(nil)

// NewPersistentToken creates a PersistentToken.
// No I/O is performed until the first Token call.
func NewPersistentToken(auth Authenticator, store tokenstore.TokenStore) (*PersistentToken, error) {
	if auth == nil {
		return nil, fmt.Errorf("missing authenticator")
	}
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}

	return &PersistentToken{
		auth:  auth,
		store: store,
	}, nil
}

// Token returns the cached token, loading it from the store on first use.
// If the store has none, a new token is acquired and saved.
func (p *PersistentToken) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != "" {
		return p.current, nil
	}

	token, err := p.store.Load(ctx)
	switch {
	case err == nil:
		p.current = token
		return token, nil
	case errors.Is(err, tokenstore.ErrNotFound):
		slog.InfoContext(ctx, "no cached token, authenticating")
		return p.refreshLocked(ctx)
	default:
		return "", fmt.Errorf("loading cached token: %w", err)
	}
}

// Refresh acquires a new token, persists it and makes it current.
func (p *PersistentToken) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.refreshLocked(ctx)
}

func (p *PersistentToken) refreshLocked(ctx context.Context) (string, error) {
	token, err := p.auth.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	if err := p.store.Save(ctx, token); err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}

	p.current = token
	slog.DebugContext(ctx, "token refreshed and persisted")
	return token, nil
}
