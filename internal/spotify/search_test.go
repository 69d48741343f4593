package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertFullTrack(t *testing.T) {
	tests := []struct {
		name         string
		track        spotify.FullTrack
		wantName     string
		wantArtists  string
		wantAlbum    string
		wantImage    string
		wantDuration int
	}{
		{
			name: "single artist",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:       "track123",
					Name:     "Test Song",
					Duration: 215000,
					Artists: []spotify.SimpleArtist{
						{Name: "Artist One"},
					},
				},
				Album: spotify.SimpleAlbum{
					Name: "Test Album",
					Images: []spotify.Image{
						{URL: "https://img.example/640.jpg", Width: 640},
						{URL: "https://img.example/300.jpg", Width: 300},
					},
				},
			},
			wantName:     "Test Song",
			wantArtists:  "Artist One",
			wantAlbum:    "Test Album",
			wantImage:    "https://img.example/640.jpg",
			wantDuration: 215000,
		},
		{
			name: "multiple artists joined",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
						{Name: "Artist C"},
					},
				},
			},
			wantName:    "Collab Track",
			wantArtists: "Artist A, Artist B, Artist C",
		},
		{
			name: "no album art",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track789",
					Name: "Obscure B-Side",
					Artists: []spotify.SimpleArtist{
						{Name: "Someone"},
					},
				},
				Album: spotify.SimpleAlbum{Name: "Rarities"},
			},
			wantName:    "Obscure B-Side",
			wantArtists: "Someone",
			wantAlbum:   "Rarities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := convertFullTrack(tt.track)
			if item.Name != tt.wantName {
				t.Errorf("name = %q, want %q", item.Name, tt.wantName)
			}
			if item.Artists != tt.wantArtists {
				t.Errorf("artists = %q, want %q", item.Artists, tt.wantArtists)
			}
			if item.Album != tt.wantAlbum {
				t.Errorf("album = %q, want %q", item.Album, tt.wantAlbum)
			}
			if item.Image != tt.wantImage {
				t.Errorf("image = %q, want %q", item.Image, tt.wantImage)
			}
			if item.DurationMs != tt.wantDuration {
				t.Errorf("duration = %d, want %d", item.DurationMs, tt.wantDuration)
			}
			if item.Type != "track" || item.SpotifyType != "track" {
				t.Errorf("type = %q/%q, want track", item.Type, item.SpotifyType)
			}
			if item.SpotifyID != tt.track.ID.String() {
				t.Errorf("spotify id = %q, want %q", item.SpotifyID, tt.track.ID)
			}
		})
	}
}

func TestJoinArtists(t *testing.T) {
	tests := []struct {
		name    string
		artists []spotify.SimpleArtist
		want    string
	}{
		{name: "empty", artists: nil, want: ""},
		{name: "one", artists: []spotify.SimpleArtist{{Name: "Solo"}}, want: "Solo"},
		{
			name:    "several",
			artists: []spotify.SimpleArtist{{Name: "A"}, {Name: "B"}},
			want:    "A, B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinArtists(tt.artists); got != tt.want {
				t.Errorf("joinArtists = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstImageURL(t *testing.T) {
	if got := firstImageURL(nil); got != "" {
		t.Errorf("firstImageURL(nil) = %q, want empty", got)
	}
	images := []spotify.Image{
		{URL: "https://img.example/large.jpg"},
		{URL: "https://img.example/small.jpg"},
	}
	if got := firstImageURL(images); got != "https://img.example/large.jpg" {
		t.Errorf("firstImageURL = %q", got)
	}
}
