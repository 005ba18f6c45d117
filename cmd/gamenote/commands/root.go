package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/gamenote/internal/app"
	"github.com/florianilch/gamenote/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	return newRootCommand().Run(ctx, args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "gamenote",
		Usage: "Look up videogames on IGDB and turn them into notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "credentials--client-id",
				Usage: "IGDB (Twitch) client ID",
			},
			&cli.StringFlag{
				Name:  "credentials--client-secret",
				Usage: "IGDB (Twitch) client secret",
			},
			&cli.StringFlag{
				Name:  "auth--storage",
				Usage: "token storage (file|keyring|env)",
				Value: string(app.DefaultConfigAuthStorage),
			},
			&cli.StringFlag{
				Name:  "auth--file",
				Usage: "token file for file storage",
			},
			&cli.StringFlag{
				Name:  "api--auth-url",
				Usage: "OAuth token endpoint",
				Value: app.DefaultConfigAuthURL,
			},
			&cli.StringFlag{
				Name:  "api--search-url",
				Usage: "IGDB games endpoint",
				Value: app.DefaultConfigSearchURL,
			},
			&cli.DurationFlag{
				Name:  "api--timeout",
				Usage: "timeout per API request",
				Value: app.DefaultConfigAPITimeout,
			},
		},
		Commands: []*cli.Command{
			lookupCommand(),
			authCommand(),
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "acquire a new IGDB token and store it",
		Action: authAction,
	}
}

func authAction(ctx context.Context, cmd *cli.Command) error {
	application, cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	if err := application.Authenticate(ctx); err != nil {
		return notice(cmd, err)
	}

	location := string(cfg.Auth.Storage)
	if cfg.Auth.Storage == app.TokenStorageTypeFile {
		location = cfg.Auth.File
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "token stored in %s\n", location)
	return err
}

// setup loads configuration, installs logging and creates the session.
func setup(ctx context.Context, cmd *cli.Command) (*app.App, *app.Config, func(), error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	shutdownObservability, err := observability.Instrument(ctx, cfg.LogLevel, string(cfg.LogFormat))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}
	shutdown := func() {
		if err := shutdownObservability(context.WithoutCancel(ctx)); err != nil {
			fmt.Fprintln(cmd.Root().ErrWriter, "flushing logs:", err)
		}
	}

	application, err := app.New(cfg)
	if err != nil {
		shutdown()
		return nil, nil, nil, fmt.Errorf("failed to create app: %w", err)
	}

	return application, cfg, shutdown, nil
}
