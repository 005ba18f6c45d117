package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/florianilch/gamenote/internal/gamenote"
	"github.com/florianilch/gamenote/internal/igdb"
	"github.com/florianilch/gamenote/internal/twitchauth"
)

// Output formats for the lookup command.
const (
	outputFormatYAML = "yaml"
	outputFormatJSON = "json"
	outputFormatNote = "note"
)

func lookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "search IGDB and print note variables for the chosen game",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pick",
				Usage: "select the n-th result (1-based) instead of prompting",
			},
			&cli.StringFlag{
				Name:  "download",
				Usage: "download link stored in the note",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format (yaml|json|note)",
				Value: outputFormatYAML,
			},
			&cli.StringFlag{
				Name:  "template",
				Usage: "note template file (format note)",
			},
			&cli.BoolFlag{
				Name:  "preview",
				Usage: "render the note for the terminal (format note)",
			},
			&cli.IntFlag{
				Name:  "search--limit",
				Usage: "maximum number of results",
			},
			&cli.BoolFlag{
				Name:  "search--reauth-on-any-error",
				Usage: "refresh the token on any failed search, not only rejected ones",
			},
		},
		Action: lookupAction,
	}
}

func lookupAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	switch format {
	case outputFormatYAML, outputFormatJSON, outputFormatNote:
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	application, _, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	root := cmd.Root()
	interactive := isTerminal(root.Reader)
	prompt := newPrompter(root.Reader, root.ErrWriter)

	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" && interactive {
		if query, err = prompt.ask("Enter videogame title: "); err != nil {
			return err
		}
	}

	games, err := application.Search(ctx, query)
	if err != nil {
		return notice(cmd, err)
	}

	game, err := selectGame(cmd, prompt, interactive, games)
	if err != nil {
		return notice(cmd, err)
	}

	download := cmd.String("download")
	if !cmd.IsSet("download") && interactive {
		if download, err = prompt.ask("Download URL: "); err != nil {
			return err
		}
	}

	vars := gamenote.NewVariables(game, download)
	return writeOutput(cmd, format, vars)
}

func selectGame(cmd *cli.Command, prompt *prompter, interactive bool, games []igdb.Game) (igdb.Game, error) {
	if cmd.IsSet("pick") {
		n := cmd.Int("pick")
		if n < 1 || n > len(games) {
			return igdb.Game{}, fmt.Errorf("%w: --pick %d is not between 1 and %d", ErrNoChoice, n, len(games))
		}
		return games[n-1], nil
	}
	if !interactive {
		return igdb.Game{}, fmt.Errorf("%w: use --pick when not running in a terminal", ErrNoChoice)
	}

	titles := make([]string, len(games))
	for i, game := range games {
		titles[i] = gamenote.SuggestionTitle(game)
	}
	idx, err := prompt.choose(titles)
	if err != nil {
		return igdb.Game{}, err
	}
	return games[idx], nil
}

func writeOutput(cmd *cli.Command, format string, vars gamenote.Variables) error {
	out := cmd.Root().Writer

	switch format {
	case outputFormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(vars)
	case outputFormatNote:
		return writeNote(cmd, out, vars)
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(vars); err != nil {
			return err
		}
		return enc.Close()
	}
}

func writeNote(cmd *cli.Command, out io.Writer, vars gamenote.Variables) error {
	tmpl := gamenote.DefaultTemplate()
	if path := cmd.String("template"); path != "" {
		var err error
		if tmpl, err = gamenote.LoadTemplate(path); err != nil {
			return err
		}
	}

	var note strings.Builder
	if err := tmpl.Render(&note, vars); err != nil {
		return err
	}

	if cmd.Bool("preview") && isTerminal(out) {
		rendered, err := glamour.Render(note.String(), "auto")
		if err == nil {
			_, err = io.WriteString(out, rendered)
			return err
		}
		// Fall back to plain markdown if rendering fails
	}

	_, err := io.WriteString(out, note.String())
	return err
}

// notice prints a short user-facing message for well-known failures and returns err.
func notice(cmd *cli.Command, err error) error {
	var msg string
	switch {
	case errors.Is(err, igdb.ErrEmptyQuery):
		msg = "No query entered."
	case errors.Is(err, igdb.ErrNoResultsFound):
		msg = "No results found."
	case errors.Is(err, twitchauth.ErrAuthTokenRefreshFailed):
		msg = "Auth token refresh failed."
	case errors.Is(err, ErrNoChoice):
		msg = "No choice selected."
	default:
		return err
	}
	_, _ = fmt.Fprintln(cmd.Root().ErrWriter, msg)
	return err
}
