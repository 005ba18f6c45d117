package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/gamenote/internal/igdb"
)

type fakeAPI struct {
	authCalls   atomic.Int32
	searchCalls atomic.Int32
	validToken  string

	authServer   *httptest.Server
	searchServer *httptest.Server
}

// newFakeAPI issues validToken from the auth endpoint and only accepts that
// token on the search endpoint; other tokens get a soft auth failure.
func newFakeAPI(t *testing.T, validToken, searchBody string) *fakeAPI {
	t.Helper()
	api := &fakeAPI{validToken: validToken}

	api.authServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.authCalls.Add(1)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"`+validToken+`","expires_in":5000000,"token_type":"bearer"}`)
	}))
	t.Cleanup(api.authServer.Close)

	api.searchServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.searchCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			_, _ = io.WriteString(w, `{"message":"Authorization Failure. Have you tried:"}`)
			return
		}
		_, _ = io.WriteString(w, searchBody)
	}))
	t.Cleanup(api.searchServer.Close)

	return api
}

func (f *fakeAPI) config(t *testing.T, tokenFile string) *Config {
	t.Helper()
	cfg := &Config{
		Credentials: CredentialsConfig{ClientID: "my-client", ClientSecret: "my-secret"},
		Auth:        AuthConfig{Storage: TokenStorageTypeFile, File: tokenFile},
		API:         APIConfig{AuthURL: f.authServer.URL, SearchURL: f.searchServer.URL},
	}
	require.NoError(t, cfg.ApplyDefaults())
	return cfg
}

func readRecord(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAppSearchFreshInstall(t *testing.T) {
	api := newFakeAPI(t, "new-token", `[{"id":1,"name":"Hades","first_release_date":1513555200}]`)
	tokenFile := filepath.Join(t.TempDir(), "cfg", "igdbToken.json")

	application, err := New(api.config(t, tokenFile))
	require.NoError(t, err)

	games, err := application.Search(context.Background(), "Hades")
	require.NoError(t, err)
	require.Len(t, games, 1)

	assert.Equal(t, int32(1), api.authCalls.Load())
	assert.Equal(t, int32(1), api.searchCalls.Load())
	assert.JSONEq(t, `{"igdbToken":"new-token"}`, readRecord(t, tokenFile))
}

func TestAppSearchRefreshesStaleToken(t *testing.T) {
	api := newFakeAPI(t, "new-token", `[{"id":1,"name":"Hades"}]`)
	tokenFile := filepath.Join(t.TempDir(), "igdbToken.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"igdbToken":"expired"}`), 0600))

	application, err := New(api.config(t, tokenFile))
	require.NoError(t, err)

	_, err = application.Search(context.Background(), "Hades")
	require.NoError(t, err)

	assert.Equal(t, int32(1), api.authCalls.Load())
	assert.Equal(t, int32(2), api.searchCalls.Load())
	assert.JSONEq(t, `{"igdbToken":"new-token"}`, readRecord(t, tokenFile))
}

func TestAppSearchCachedTokenSkipsAuthentication(t *testing.T) {
	api := newFakeAPI(t, "good-token", `[{"id":1,"name":"Hades"}]`)
	tokenFile := filepath.Join(t.TempDir(), "igdbToken.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"igdbToken":"good-token"}`), 0600))

	application, err := New(api.config(t, tokenFile))
	require.NoError(t, err)

	_, err = application.Search(context.Background(), "Hades")
	require.NoError(t, err)
	assert.Zero(t, api.authCalls.Load())
}

func TestAppSearchNoResults(t *testing.T) {
	api := newFakeAPI(t, "good-token", `[]`)
	tokenFile := filepath.Join(t.TempDir(), "igdbToken.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"igdbToken":"good-token"}`), 0600))

	application, err := New(api.config(t, tokenFile))
	require.NoError(t, err)

	_, err = application.Search(context.Background(), "nothing")
	assert.ErrorIs(t, err, igdb.ErrNoResultsFound)
	assert.Zero(t, api.authCalls.Load())
}

func TestAppAuthenticate(t *testing.T) {
	api := newFakeAPI(t, "forced-token", `[]`)
	tokenFile := filepath.Join(t.TempDir(), "igdbToken.json")

	application, err := New(api.config(t, tokenFile))
	require.NoError(t, err)

	require.NoError(t, application.Authenticate(context.Background()))
	assert.Equal(t, int32(1), api.authCalls.Load())
	assert.JSONEq(t, `{"igdbToken":"forced-token"}`, readRecord(t, tokenFile))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
}
