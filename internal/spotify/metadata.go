package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/ototana/ototana/internal/apperr"
)

// Metadata looks up a single track, album, or playlist and reshapes it.
// Unsupported types are a validation failure, not an upstream call.
func (c *Client) Metadata(ctx context.Context, id, kind string) (*Item, error) {
	switch kind {
	case "track":
		track, err := c.api.GetTrack(ctx, spotify.ID(id))
		if err != nil {
			return nil, upstreamErr(fmt.Sprintf("fetching track %s", id), err)
		}
		item := convertFullTrack(*track)
		return &item, nil

	case "album":
		album, err := c.api.GetAlbum(ctx, spotify.ID(id))
		if err != nil {
			return nil, upstreamErr(fmt.Sprintf("fetching album %s", id), err)
		}
		return &Item{
			ID:          album.ID.String(),
			Name:        album.Name,
			Artists:     joinArtists(album.Artists),
			Image:       firstImageURL(album.Images),
			Type:        "album",
			SpotifyID:   album.ID.String(),
			SpotifyType: "album",
		}, nil

	case "playlist":
		playlist, err := c.api.GetPlaylist(ctx, spotify.ID(id))
		if err != nil {
			return nil, upstreamErr(fmt.Sprintf("fetching playlist %s", id), err)
		}
		return &Item{
			ID:          playlist.ID.String(),
			Name:        playlist.Name,
			Artists:     playlist.Owner.DisplayName,
			Image:       firstImageURL(playlist.Images),
			Type:        "playlist",
			SpotifyID:   playlist.ID.String(),
			SpotifyType: "playlist",
		}, nil
	}

	return nil, apperr.Validation(fmt.Sprintf("unsupported type %q", kind))
}

// FindBestMatch searches for a track by title and artist and returns the
// top result, or nil when nothing matches. Used by the metadata repair job.
func (c *Client) FindBestMatch(ctx context.Context, title, artist string) (*Item, error) {
	items, err := c.SearchTracks(ctx, title+" "+artist, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}
