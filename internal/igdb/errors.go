package igdb

import (
	"errors"

	"github.com/florianilch/gamenote/internal/twitchauth"
)

var (
	// ErrEmptyQuery is returned before any request when the query is blank.
	ErrEmptyQuery = errors.New("no query entered")

	// ErrNoResultsFound is returned when IGDB answers with an empty list. It is terminal.
	ErrNoResultsFound = errors.New("no results found")

	// ErrAuthRejected marks a response that rejected the bearer token, either by
	// HTTP status or by a {"message": ...} body.
	ErrAuthRejected = errors.New("authorization rejected")

	// ErrRequestFailed marks transport errors and unexpected HTTP statuses.
	ErrRequestFailed = errors.New("search request failed")

	// ErrUnexpectedResponse marks a successful response that is neither a result list
	// nor an auth failure.
	ErrUnexpectedResponse = errors.New("unexpected search response")

	// ErrAuthTokenRefreshFailed is returned when re-authentication fails or the
	// refreshed token is rejected as well.
	ErrAuthTokenRefreshFailed = twitchauth.ErrAuthTokenRefreshFailed
)
