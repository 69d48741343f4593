// Package maintenance holds out-of-band repair and seeding jobs that run
// from the maintenance CLI rather than inside a request.
package maintenance

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/spotify"
)

// spotifyRequestsPerSecond paces repair lookups so a large library does not
// trip Spotify's rate limiting.
const spotifyRequestsPerSecond = 5

// TrackMatcher is the slice of the Spotify client the repair job uses.
type TrackMatcher interface {
	FindBestMatch(ctx context.Context, title, artist string) (*spotify.Item, error)
}

// ItemLister reads and repairs stored items.
type ItemLister interface {
	ListForUser(ctx context.Context, userID string) ([]db.Item, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, spotifyID, title, artist string, album, imageURL *string) error
}

// FixTracksResult summarizes a repair run.
type FixTracksResult struct {
	Scanned  int
	Repaired int
	Skipped  int
	Failed   int
}

// FixTracks re-resolves every item of a user against Spotify search and
// overwrites stale or missing metadata with the best match. The job is
// best-effort and non-transactional; a failing item is logged and skipped
// so one bad record never aborts the run.
func FixTracks(ctx context.Context, logger *log.Logger, items ItemLister, matcher TrackMatcher, userID string) (*FixTracksResult, error) {
	stored, err := items.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing items for %s: %w", userID, err)
	}

	limiter := rate.NewLimiter(spotifyRequestsPerSecond, 1)
	result := &FixTracksResult{Scanned: len(stored)}

	for i := range stored {
		item := &stored[i]
		if item.SpotifyType != db.TypeTrack {
			result.Skipped++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		match, err := matcher.FindBestMatch(ctx, item.Title, item.Artist)
		if err != nil {
			logger.Warn("no match", "item", item.ID, "title", item.Title, "err", err)
			result.Failed++
			continue
		}
		if match == nil {
			logger.Warn("no match", "item", item.ID, "title", item.Title)
			result.Skipped++
			continue
		}
		if match.SpotifyID == item.SpotifyID {
			result.Skipped++
			continue
		}

		var album, imageURL *string
		if match.Album != "" {
			album = &match.Album
		}
		if match.Image != "" {
			imageURL = &match.Image
		}
		if err := items.UpdateMetadata(ctx, item.ID, match.SpotifyID, match.Name, match.Artists, album, imageURL); err != nil {
			logger.Error("updating item", "item", item.ID, "err", err)
			result.Failed++
			continue
		}

		logger.Info("repaired", "item", item.ID, "title", match.Name, "spotify_id", match.SpotifyID)
		result.Repaired++
	}

	return result, nil
}
