package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/florianilch/gamenote/internal/gamenote"
	"github.com/florianilch/gamenote/internal/igdb"
)

type harness struct {
	authCalls atomic.Int32
	tokenFile string
	authURL   string
	searchURL string
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

func newHarness(t *testing.T, searchBody string) *harness {
	t.Helper()
	h := &harness{tokenFile: filepath.Join(t.TempDir(), "igdbToken.json")}

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.authCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"good-token","expires_in":5000000}`)
	}))
	t.Cleanup(authServer.Close)

	searchServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer good-token" {
			_, _ = io.WriteString(w, `{"message":"Authorization Failure"}`)
			return
		}
		_, _ = io.WriteString(w, searchBody)
	}))
	t.Cleanup(searchServer.Close)

	h.authURL = authServer.URL
	h.searchURL = searchServer.URL
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.Reader = strings.NewReader("")
	cmd.Writer = &h.stdout
	cmd.ErrWriter = &h.stderr

	base := []string{
		"gamenote",
		"--credentials--client-id", "my-client",
		"--credentials--client-secret", "my-secret",
		"--auth--file", h.tokenFile,
		"--api--auth-url", h.authURL,
		"--api--search-url", h.searchURL,
		"--log-level", "error",
	}
	return cmd.Run(context.Background(), append(base, args...))
}

const twoGames = `[
	{"id":1,"name":"Hades","first_release_date":1513555200,"genres":[{"id":1,"name":"Roguelike"}]},
	{"id":2,"name":"Hades II","cover":{"id":9,"url":"//images.igdb.com/igdb/image/upload/t_thumb/x.jpg"}}
]`

func TestLookupJSON(t *testing.T) {
	h := newHarness(t, twoGames)

	require.NoError(t, h.run(t, "lookup", "--pick", "2", "--format", "json", "--download", "example.com/hades2", "Hades"))

	var vars gamenote.Variables
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &vars))
	assert.Equal(t, "Hades II", vars.Name)
	assert.Equal(t, "https://example.com/hades2", vars.Download)
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_cover_big/x.jpg", vars.Cover)

	assert.Equal(t, int32(1), h.authCalls.Load(), "fresh install authenticates once")
	data, err := os.ReadFile(h.tokenFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"igdbToken":"good-token"}`, string(data))
}

func TestLookupYAMLReusesCachedToken(t *testing.T) {
	h := newHarness(t, twoGames)
	require.NoError(t, os.WriteFile(h.tokenFile, []byte(`{"igdbToken":"good-token"}`), 0600))

	require.NoError(t, h.run(t, "lookup", "--pick", "1", "Hades"))

	var vars map[string]any
	require.NoError(t, yaml.Unmarshal(h.stdout.Bytes(), &vars))
	assert.Equal(t, "Hades", vars["name"])
	assert.Equal(t, "2017-12-18", vars["release"])
	assert.Equal(t, "Roguelike", vars["genresFormatted"])
	assert.Zero(t, h.authCalls.Load())
}

func TestLookupNote(t *testing.T) {
	h := newHarness(t, twoGames)
	tmplPath := filepath.Join(t.TempDir(), "note.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("# {{ .Name }} ({{ .Release }})\n"), 0600))

	require.NoError(t, h.run(t, "lookup", "--pick", "1", "--format", "note", "--template", tmplPath, "Hades"))
	assert.Equal(t, "# Hades (2017-12-18)\n", h.stdout.String())
}

func TestLookupNoResults(t *testing.T) {
	h := newHarness(t, `[]`)

	err := h.run(t, "lookup", "--pick", "1", "nothing")
	assert.ErrorIs(t, err, igdb.ErrNoResultsFound)
	assert.Contains(t, h.stderr.String(), "No results found.")
}

func TestLookupEmptyQuery(t *testing.T) {
	h := newHarness(t, twoGames)

	err := h.run(t, "lookup", "--pick", "1")
	assert.ErrorIs(t, err, igdb.ErrEmptyQuery)
	assert.Contains(t, h.stderr.String(), "No query entered.")
	assert.Zero(t, h.authCalls.Load())
}

func TestLookupWithoutPickOutsideTerminal(t *testing.T) {
	h := newHarness(t, twoGames)

	err := h.run(t, "lookup", "Hades")
	assert.ErrorIs(t, err, ErrNoChoice)
	assert.Contains(t, h.stderr.String(), "No choice selected.")
}

func TestLookupPickOutOfRange(t *testing.T) {
	h := newHarness(t, twoGames)

	err := h.run(t, "lookup", "--pick", "3", "Hades")
	assert.ErrorIs(t, err, ErrNoChoice)
}

func TestLookupRejectsUnknownFormat(t *testing.T) {
	h := newHarness(t, twoGames)

	err := h.run(t, "lookup", "--pick", "1", "--format", "xml", "Hades")
	assert.Error(t, err)
}

func TestAuthCommand(t *testing.T) {
	h := newHarness(t, twoGames)

	require.NoError(t, h.run(t, "auth"))
	assert.Equal(t, int32(1), h.authCalls.Load())
	assert.Contains(t, h.stdout.String(), h.tokenFile)
}

func TestPrompterChoose(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("2\n"), &out)

	idx, err := p.choose([]string{"Hades (2017)", "Hades II"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "  1) Hades (2017)")
	assert.Contains(t, out.String(), "  2) Hades II")

	_, err = newPrompter(strings.NewReader("\n"), &out).choose([]string{"a"})
	assert.ErrorIs(t, err, ErrNoChoice)

	_, err = newPrompter(strings.NewReader("7\n"), &out).choose([]string{"a"})
	assert.ErrorIs(t, err, ErrNoChoice)
}

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	answer, err := newPrompter(strings.NewReader("  Hades  "), &out).ask("Enter videogame title: ")
	require.NoError(t, err)
	assert.Equal(t, "Hades", answer)
	assert.Equal(t, "Enter videogame title: ", out.String())
}
