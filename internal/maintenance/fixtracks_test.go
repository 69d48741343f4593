package maintenance

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/spotify"
)

type fakeItemLister struct {
	items   []db.Item
	updated map[uuid.UUID]string
}

func (f *fakeItemLister) ListForUser(_ context.Context, _ string) ([]db.Item, error) {
	return f.items, nil
}

func (f *fakeItemLister) UpdateMetadata(_ context.Context, id uuid.UUID, spotifyID, title, artist string, album, imageURL *string) error {
	if f.updated == nil {
		f.updated = make(map[uuid.UUID]string)
	}
	f.updated[id] = spotifyID
	return nil
}

type fakeMatcher struct {
	matches map[string]*spotify.Item
	errors  map[string]error
}

func (f *fakeMatcher) FindBestMatch(_ context.Context, title, artist string) (*spotify.Item, error) {
	if err := f.errors[title]; err != nil {
		return nil, err
	}
	return f.matches[title], nil
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestFixTracks(t *testing.T) {
	stale := db.Item{ID: uuid.New(), SpotifyType: db.TypeTrack, SpotifyID: "old", Title: "Stale Song", Artist: "Band"}
	current := db.Item{ID: uuid.New(), SpotifyType: db.TypeTrack, SpotifyID: "ok", Title: "Fine Song", Artist: "Band"}
	album := db.Item{ID: uuid.New(), SpotifyType: db.TypeAlbum, SpotifyID: "alb", Title: "An Album", Artist: "Band"}
	broken := db.Item{ID: uuid.New(), SpotifyType: db.TypeTrack, SpotifyID: "bad", Title: "Broken Song", Artist: "Band"}

	lister := &fakeItemLister{items: []db.Item{stale, current, album, broken}}
	matcher := &fakeMatcher{
		matches: map[string]*spotify.Item{
			"Stale Song": {SpotifyID: "new", Name: "Stale Song (Remaster)", Artists: "Band", Album: "Reissue"},
			"Fine Song":  {SpotifyID: "ok", Name: "Fine Song", Artists: "Band"},
		},
		errors: map[string]error{
			"Broken Song": errors.New("search exploded"),
		},
	}

	result, err := FixTracks(context.Background(), testLogger(), lister, matcher, "alice")
	if err != nil {
		t.Fatalf("FixTracks: %v", err)
	}

	if result.Scanned != 4 {
		t.Errorf("scanned = %d, want 4", result.Scanned)
	}
	if result.Repaired != 1 {
		t.Errorf("repaired = %d, want 1", result.Repaired)
	}
	// The album and the already-correct track are skipped.
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}

	if got := lister.updated[stale.ID]; got != "new" {
		t.Errorf("stale item updated with %q, want new", got)
	}
	if _, ok := lister.updated[current.ID]; ok {
		t.Error("already-correct item was rewritten")
	}
	if _, ok := lister.updated[broken.ID]; ok {
		t.Error("failed item was rewritten")
	}
}

func TestFixTracksNoMatch(t *testing.T) {
	item := db.Item{ID: uuid.New(), SpotifyType: db.TypeTrack, SpotifyID: "x", Title: "Nowhere", Artist: "Nobody"}
	lister := &fakeItemLister{items: []db.Item{item}}

	result, err := FixTracks(context.Background(), testLogger(), lister, &fakeMatcher{}, "alice")
	if err != nil {
		t.Fatalf("FixTracks: %v", err)
	}
	if result.Skipped != 1 || result.Repaired != 0 {
		t.Errorf("result = %+v, want one skip", result)
	}
}
