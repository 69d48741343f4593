// Command ototana runs the music shelf web application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/ototana/ototana/internal/config"
	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/event"
	"github.com/ototana/ototana/internal/interaction"
	"github.com/ototana/ototana/internal/shelf"
	"github.com/ototana/ototana/internal/social"
	"github.com/ototana/ototana/internal/spotify"
	"github.com/ototana/ototana/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ototana",
	})

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.SpotifyClientID),
		spotifyauth.WithClientSecret(cfg.SpotifyClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI()),
		spotifyauth.WithScopes(spotifyauth.ScopeUserReadPrivate),
	)

	// App-token client for the search/metadata proxy; user tokens stay in
	// sessions and are only needed for the auth flow itself.
	proxy, err := spotify.NewClientCredentials(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if err != nil {
		return fmt.Errorf("creating spotify client: %w", err)
	}

	bus := event.NewBus()
	defer bus.Close()

	shelves := shelf.NewService(database.Shelves(), database.Items(), database.Users())
	socialSvc := social.NewService(database.Friends(), database.Users())
	interactions := interaction.NewService(database.Comments(), database.Likes())

	sessions := web.NewDBSessionStore(database)
	handlers := web.NewHandlers(logger, auth, sessions, shelves, socialSvc, interactions, proxy, database.Users(), bus)

	server := web.NewServer(cfg.Addr, logger, handlers, bus)
	return server.Run()
}
