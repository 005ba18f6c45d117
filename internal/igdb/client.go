// Package igdb searches the IGDB games endpoint, re-authenticating at most once
// when the bearer token turns out to be stale.
package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the IGDB games endpoint.
	DefaultEndpoint = "https://api.igdb.com/v4/games"

	// DefaultLimit caps the number of results per search.
	DefaultLimit = 15

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second

	// maxReauthentications bounds the retry path per Search call.
	maxReauthentications = 1

	maxResponseBytes = 10 << 20
)

var tracer = otel.Tracer("github.com/florianilch/gamenote/internal/igdb")

// TokenProvider hands out the current bearer token and replaces it on demand.
type TokenProvider interface {
	// Token returns the current token, acquiring one if none is cached.
	Token(ctx context.Context) (string, error)

	// Refresh acquires and persists a new token and returns it.
	Refresh(ctx context.Context) (string, error)
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the games endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets the HTTP client used for searches.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLimit sets the maximum number of results.
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithReauthOnAnyError treats every failed request as a stale token,
// not just rejected ones.
func WithReauthOnAnyError(enabled bool) Option {
	return func(c *Client) {
		c.reauthOnAnyError = enabled
	}
}

// Client searches IGDB for games.
type Client struct {
	httpClient       *http.Client
	clientID         string
	tokens           TokenProvider
	endpoint         string
	limit            int
	reauthOnAnyError bool
}

// NewClient creates a Client that authorizes requests with tokens from the given provider.
func NewClient(clientID string, tokens TokenProvider, opts ...Option) (*Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("missing client id")
	}
	if tokens == nil {
		return nil, fmt.Errorf("missing token provider")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		clientID:   clientID,
		tokens:     tokens,
		endpoint:   DefaultEndpoint,
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Search returns the games matching query.
//
// A rejected token triggers one refresh and one retried request. An empty result
// list is terminal and leaves the token alone.
func (c *Client) Search(ctx context.Context, query string) ([]Game, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	ctx, span := tracer.Start(ctx, "igdb.Search", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("igdb.limit", c.limit))

	body, err := buildQuery(query, c.limit)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining token: %w", err)
	}

	for reauths := 0; ; reauths++ {
		games, err := c.do(ctx, token, body)
		if err == nil {
			span.SetAttributes(attribute.Int("igdb.results", len(games)))
			if len(games) == 0 {
				return nil, ErrNoResultsFound
			}
			return games, nil
		}

		if !c.shouldReauthenticate(ctx, err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			return nil, err
		}
		if reauths >= maxReauthentications {
			span.RecordError(err)
			span.SetStatus(codes.Error, "token rejected after refresh")
			return nil, fmt.Errorf("%w: refreshed token rejected: %w", ErrAuthTokenRefreshFailed, err)
		}

		slog.InfoContext(ctx, "search rejected, refreshing token", "error", err)
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "token refresh failed")
			return nil, err
		}
	}
}

func (c *Client) shouldReauthenticate(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrAuthRejected) {
		return true
	}
	return c.reauthOnAnyError
}

// do performs a single search request and classifies the response.
func (c *Client) do(ctx context.Context, token, query string) ([]Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	return decodeGames(data)
}

// decodeGames accepts a JSON array of games. A JSON object carrying "message"
// is the API's way of rejecting the token with a 2xx status.
func decodeGames(data []byte) ([]Game, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedResponse)
	}

	switch data[0] {
	case '[':
		var games []Game
		if err := json.Unmarshal(data, &games); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		return games, nil
	case '{':
		var failure struct {
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(data, &failure); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		if failure.Message != nil {
			return nil, fmt.Errorf("%w: %s", ErrAuthRejected, *failure.Message)
		}
	}
	return nil, ErrUnexpectedResponse
}
