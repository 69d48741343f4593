package config

import (
	"testing"

	"github.com/ototana/ototana/internal/apperr"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/ototana_test")
	t.Setenv("SPOTIFY_ID", "client-id")
	t.Setenv("SPOTIFY_SECRET", "client-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("OTOTANA_ADDR", "")
	t.Setenv("OTOTANA_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if got := cfg.RedirectURI(); got != DefaultBaseURL+"/auth/callback" {
		t.Errorf("redirect uri = %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OTOTANA_ADDR", "0.0.0.0:9000")
	t.Setenv("OTOTANA_BASE_URL", "https://ototana.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if got := cfg.RedirectURI(); got != "https://ototana.example/auth/callback" {
		t.Errorf("redirect uri = %q", got)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	for _, missing := range []string{"DATABASE_URL", "SPOTIFY_ID", "SPOTIFY_SECRET"} {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			_, err := Load()
			if !apperr.Is(err, apperr.KindConfiguration) {
				t.Fatalf("kind = %v, want configuration", apperr.KindOf(err))
			}
		})
	}
}
