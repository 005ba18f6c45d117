package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/florianilch/gamenote/internal/igdb"
	"github.com/florianilch/gamenote/internal/twitchauth"
)

// App is the per-invocation session: it owns the token state and the search client.
// Nothing is shared between invocations except the persisted token.
type App struct {
	cfg    *Config
	token  *PersistentToken
	search *igdb.Client
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// I/O deferred to first Token() call
	token, err := newPersistentToken(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token source: %w", err)
	}

	search, err := igdb.NewClient(cfg.Credentials.ClientID, token,
		igdb.WithEndpoint(cfg.API.SearchURL),
		igdb.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		igdb.WithLimit(cfg.Search.Limit),
		igdb.WithReauthOnAnyError(cfg.Search.ReauthOnAnyError),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	return &App{
		cfg:    cfg,
		token:  token,
		search: search,
	}, nil
}

// Search looks up games by title.
func (a *App) Search(ctx context.Context, query string) ([]igdb.Game, error) {
	slog.DebugContext(ctx, "searching", "query", query, "limit", a.cfg.Search.Limit)

	games, err := a.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "search finished", "results", len(games))
	return games, nil
}

// Authenticate forces a new token and persists it.
func (a *App) Authenticate(ctx context.Context) error {
	if _, err := a.token.Refresh(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "token refreshed", "storage", a.cfg.Auth.Storage)
	return nil
}

// newPersistentToken creates a PersistentToken from application configuration.
// No I/O is performed until the token is first requested.
func newPersistentToken(cfg *Config) (*PersistentToken, error) {
	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	auth, err := twitchauth.New(cfg.Credentials.ClientID, cfg.Credentials.ClientSecret,
		twitchauth.WithTokenURL(cfg.API.AuthURL),
		twitchauth.WithTimeout(cfg.API.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	return NewPersistentToken(auth, store)
}
