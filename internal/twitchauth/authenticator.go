package twitchauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrAuthTokenRefreshFailed reports that no bearer token could be obtained.
var ErrAuthTokenRefreshFailed = errors.New("auth token refresh failed")

// DefaultTimeout bounds a single token request.
const DefaultTimeout = 10 * time.Second

var tracer = otel.Tracer("github.com/florianilch/gamenote/internal/twitchauth")

// Option configures an Authenticator.
type Option func(*config)

type config struct {
	endpoint      oauth2.Endpoint
	baseTransport http.RoundTripper
	timeout       time.Duration
}

// WithTokenURL overrides the authority endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *config) {
		c.endpoint.TokenURL = tokenURL
	}
}

// WithTransport sets a custom base transport for token requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *config) {
		c.baseTransport = transport
	}
}

// WithTimeout bounds each token request. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Authenticator exchanges client credentials for bearer tokens.
// Every call issues a new token; Twitch keeps earlier tokens valid until they expire.
type Authenticator struct {
	oauthConfig *clientcredentials.Config
	httpClient  *http.Client
}

// New creates an Authenticator for the given client credentials.
func New(clientID, clientSecret string, opts ...Option) (*Authenticator, error) {
	if clientID == "" {
		return nil, fmt.Errorf("missing client id")
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("missing client secret")
	}

	cfg := &config{
		endpoint:      Endpoint,
		baseTransport: http.DefaultTransport,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Authenticator{
		oauthConfig: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     cfg.endpoint.TokenURL,
			AuthStyle:    cfg.endpoint.AuthStyle,
		},
		httpClient: &http.Client{
			Timeout: cfg.timeout,
			Transport: &queryParamsTransport{
				base: cfg.baseTransport,
			},
		},
	}, nil
}

// Authenticate requests a fresh access token. Any failure, including a response
// without access_token, is reported as ErrAuthTokenRefreshFailed.
func (a *Authenticator) Authenticate(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "twitchauth.Authenticate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	// oauth2 picks up the HTTP client from the context
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.oauthConfig.Token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token request failed")

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			slog.ErrorContext(ctx, "token endpoint rejected credentials",
				"status", retrieveErr.Response.StatusCode,
				"error_code", retrieveErr.ErrorCode)
		}
		return "", fmt.Errorf("%w: %w", ErrAuthTokenRefreshFailed, err)
	}
	if token.AccessToken == "" {
		span.SetStatus(codes.Error, "empty access token")
		return "", fmt.Errorf("%w: empty access_token", ErrAuthTokenRefreshFailed)
	}

	slog.DebugContext(ctx, "acquired access token", "expiry", token.Expiry)
	return token.AccessToken, nil
}

// queryParamsTransport moves oauth2's form-encoded token request parameters
// into the URL query string, which is the shape Twitch documents.
// The oauth2 package guarantees this transport only receives token endpoint requests.
type queryParamsTransport struct {
	base http.RoundTripper
}

// Compile-time check that queryParamsTransport implements http.RoundTripper.
var _ http.RoundTripper = (*queryParamsTransport)(nil)

// RoundTrip rewrites the request so the parameters travel in the query and the body is empty.
func (t *queryParamsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		// Consumed entirely; the cloned request carries no body.
		defer func() { _ = req.Body.Close() }()
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
	}

	formData, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing form data: %w", err)
	}

	newReq := req.Clone(req.Context())
	query := newReq.URL.Query()
	for key, values := range formData {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	newReq.URL.RawQuery = query.Encode()
	newReq.Body = http.NoBody
	newReq.ContentLength = 0
	newReq.Header.Del("Content-Type")

	return t.base.RoundTrip(newReq)
}
