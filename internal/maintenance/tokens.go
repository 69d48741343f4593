package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/ototana/ototana/internal/db"
)

// SessionTokenStore reads and writes the OAuth tokens persisted on
// sessions, so maintenance jobs can act as the user who logged in.
type SessionTokenStore interface {
	LatestForUser(ctx context.Context, userID string) (*db.Session, error)
	UpdateToken(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error
}

// UserToken loads the OAuth token from the user's most recent live
// session. The error wraps db.ErrNotFound when the user has none, which
// callers treat as a fall-back-to-app-credentials signal.
func UserToken(ctx context.Context, store SessionTokenStore, userID string) (*oauth2.Token, *db.Session, error) {
	sess, err := store.LatestForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session for %s: %w", userID, err)
	}
	return &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Expiry:       sess.TokenExpiry,
		TokenType:    "Bearer",
	}, sess, nil
}

// SaveRefreshedToken writes the token back to its session when the oauth2
// transport refreshed it mid-run. A token matching what was loaded is left
// alone.
func SaveRefreshedToken(ctx context.Context, logger *log.Logger, store SessionTokenStore, sess *db.Session, token *oauth2.Token) error {
	if token == nil || token.AccessToken == sess.AccessToken {
		return nil
	}
	if err := store.UpdateToken(ctx, sess.ID, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		return fmt.Errorf("persisting refreshed token: %w", err)
	}
	logger.Info("persisted refreshed spotify token", "session", sess.ID)
	return nil
}
