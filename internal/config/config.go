// Package config reads service configuration from environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ototana/ototana/internal/apperr"
)

// Defaults applied when the optional variables are unset.
const (
	DefaultAddr    = "127.0.0.1:8080"
	DefaultBaseURL = "http://127.0.0.1:8080"
)

// Config holds everything the server needs from the environment.
type Config struct {
	// Addr is the listen address (OTOTANA_ADDR).
	Addr string
	// BaseURL is the externally visible application URL (OTOTANA_BASE_URL),
	// used to build the Spotify redirect URI.
	BaseURL string
	// DatabaseURL is the Postgres connection string (DATABASE_URL).
	DatabaseURL string
	// SpotifyClientID and SpotifyClientSecret drive both OAuth flows
	// (SPOTIFY_ID / SPOTIFY_SECRET).
	SpotifyClientID     string
	SpotifyClientSecret string
}

// RedirectURI returns the OAuth callback URL registered with Spotify.
func (c *Config) RedirectURI() string {
	return c.BaseURL + "/auth/callback"
}

// Load reads configuration from the environment, loading a .env file first
// if one is present. Required variables that are absent fail fast with a
// configuration error.
func Load() (*Config, error) {
	// Missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:                getEnv("OTOTANA_ADDR", DefaultAddr),
		BaseURL:             getEnv("OTOTANA_BASE_URL", DefaultBaseURL),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SpotifyClientID:     os.Getenv("SPOTIFY_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_SECRET"),
	}

	for _, required := range []struct {
		name, value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"SPOTIFY_ID", cfg.SpotifyClientID},
		{"SPOTIFY_SECRET", cfg.SpotifyClientSecret},
	} {
		if required.value == "" {
			return nil, apperr.Configuration(fmt.Sprintf("missing %s environment variable", required.name))
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
