package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/event"
	"github.com/ototana/ototana/internal/interaction"
	"github.com/ototana/ototana/internal/shelf"
	"github.com/ototana/ototana/internal/social"
	"github.com/ototana/ototana/internal/spotify"
)

// SpotifyProxy is the slice of the Spotify client the proxy handlers use.
type SpotifyProxy interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.Item, error)
	Metadata(ctx context.Context, id, kind string) (*spotify.Item, error)
}

// ProfileProvisioner provisions the profile row on login and serves the
// caller's own profile reads and edits.
type ProfileProvisioner interface {
	Upsert(ctx context.Context, user *db.User) (bool, error)
	Get(ctx context.Context, id string) (*db.User, error)
	UpdateProfile(ctx context.Context, id, displayName string, avatarURL *string) error
}

// Handlers contains the HTTP handlers for the JSON API and auth flow.
type Handlers struct {
	logger       *log.Logger
	auth         *spotifyauth.Authenticator
	sessions     SessionManager
	shelves      *shelf.Service
	social       *social.Service
	interactions *interaction.Service
	proxy        SpotifyProxy
	profiles     ProfileProvisioner
	bus          *event.Bus
}

// NewHandlers creates a Handlers instance.
func NewHandlers(
	logger *log.Logger,
	auth *spotifyauth.Authenticator,
	sessions SessionManager,
	shelves *shelf.Service,
	socialSvc *social.Service,
	interactions *interaction.Service,
	proxy SpotifyProxy,
	profiles ProfileProvisioner,
	bus *event.Bus,
) *Handlers {
	return &Handlers{
		logger:       logger,
		auth:         auth,
		sessions:     sessions,
		shelves:      shelves,
		social:       socialSvc,
		interactions: interactions,
		proxy:        proxy,
		profiles:     profiles,
		bus:          bus,
	}
}

// callerID returns the authenticated user's ID, or "" when there is no
// session. Services treat "" as an auth failure, so handlers can pass it
// through without a separate check.
func (h *Handlers) callerID(r *http.Request) string {
	if session := h.sessions.GetFromRequest(r); session != nil {
		return session.UserID
	}
	return ""
}

// caller builds the full caller identity for operations that provision the
// profile row. ok is false when there is no session.
func (h *Handlers) caller(r *http.Request) (shelf.Caller, bool) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		return shelf.Caller{}, false
	}
	return shelf.Caller{
		ID:          session.UserID,
		Username:    session.Username,
		DisplayName: session.DisplayName,
		AvatarURL:   session.AvatarURL,
	}, true
}
