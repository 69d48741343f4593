package spotify

import (
	"context"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// Item is a search or metadata result reshaped into the app's item schema.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artists     string `json:"artists"`
	Album       string `json:"album,omitempty"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type"`
	SpotifyID   string `json:"spotify_id"`
	SpotifyType string `json:"spotify_type"`
	DurationMs  int    `json:"duration_ms,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
}

// DefaultSearchLimit caps track searches when the caller passes no limit.
const DefaultSearchLimit = 10

// SearchTracks searches Spotify for tracks matching query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, upstreamErr("spotify search failed", err)
	}

	if result.Tracks == nil {
		return []Item{}, nil
	}

	items := make([]Item, 0, len(result.Tracks.Tracks))
	for _, track := range result.Tracks.Tracks {
		items = append(items, convertFullTrack(track))
	}
	return items, nil
}

// convertFullTrack reshapes a Spotify track into the app item schema.
func convertFullTrack(track spotify.FullTrack) Item {
	return Item{
		ID:          track.ID.String(),
		Name:        track.Name,
		Artists:     joinArtists(track.Artists),
		Album:       track.Album.Name,
		Image:       firstImageURL(track.Album.Images),
		Type:        "track",
		SpotifyID:   track.ID.String(),
		SpotifyType: "track",
		DurationMs:  int(track.Duration),
		PreviewURL:  track.PreviewURL,
	}
}

// joinArtists joins artist names into one display string.
func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// firstImageURL picks the first (largest) cover image, or "" when the
// upstream entity has no art.
func firstImageURL(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
