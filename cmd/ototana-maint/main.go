// Command ototana-maint runs out-of-band maintenance jobs against the
// application database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/ototana/ototana/internal/config"
	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/maintenance"
	"github.com/ototana/ototana/internal/spotify"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ototana-maint",
	})

	cmd := &cli.Command{
		Name:  "ototana-maint",
		Usage: "maintenance jobs for the music shelf service",
		Commands: []*cli.Command{
			{
				Name:  "fix-tracks",
				Usage: "re-resolve a user's stored tracks against Spotify search",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "user ID whose items to repair",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runFixTracks(ctx, logger, c.String("user"))
				},
			},
			{
				Name:  "seed-friends",
				Usage: "create demo users and accepted friend edges for a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "user ID to befriend",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "number of demo friends to create",
						Value: 5,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runSeedFriends(ctx, logger, c.String("user"), int(c.Int("count")))
				},
			},
			{
				Name:  "purge-sessions",
				Usage: "delete expired session rows",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runPurgeSessions(ctx, logger)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal(err)
	}
}

func runFixTracks(ctx context.Context, logger *log.Logger, userID string) error {
	cfg, database, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	client, sess, err := spotifyClientFor(ctx, logger, cfg, database, userID)
	if err != nil {
		return err
	}

	result, err := maintenance.FixTracks(ctx, logger, database.Items(), client, userID)
	if err != nil {
		return err
	}

	if sess != nil {
		token, tokenErr := client.Token()
		if tokenErr == nil {
			if err := maintenance.SaveRefreshedToken(ctx, logger, database.Sessions(), sess, token); err != nil {
				logger.Warn("saving refreshed token", "err", err)
			}
		}
	}

	logger.Info("done",
		"scanned", result.Scanned,
		"repaired", result.Repaired,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return nil
}

// spotifyClientFor prefers the OAuth token from the user's latest live
// session so repairs run as the user; without one it falls back to the
// app-level grant, which suffices for search.
func spotifyClientFor(ctx context.Context, logger *log.Logger, cfg *config.Config, database *db.DB, userID string) (*spotify.Client, *db.Session, error) {
	token, sess, err := maintenance.UserToken(ctx, database.Sessions(), userID)
	if errors.Is(err, db.ErrNotFound) {
		logger.Info("no live session, using app credentials", "user", userID)
		client, err := spotify.NewClientCredentials(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("creating spotify client: %w", err)
		}
		return client, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.SpotifyClientID),
		spotifyauth.WithClientSecret(cfg.SpotifyClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI()),
	)
	return spotify.NewWithToken(ctx, auth, token), sess, nil
}

func runSeedFriends(ctx context.Context, logger *log.Logger, userID string, count int) error {
	_, database, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	return maintenance.SeedFriends(ctx, logger, database.Users(), database.Friends(), userID, count)
}

func runPurgeSessions(ctx context.Context, logger *log.Logger) error {
	_, database, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	deleted, err := database.Sessions().DeleteExpired(ctx)
	if err != nil {
		return err
	}
	logger.Info("purged sessions", "deleted", deleted)
	return nil
}

func setup(ctx context.Context) (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, database, nil
}
