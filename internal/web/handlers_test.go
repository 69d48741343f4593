package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/spotify"
)

type fakeProxy struct {
	tracks    []spotify.Item
	metadata  *spotify.Item
	err       error
	lastQuery string
	lastLimit int
}

func (f *fakeProxy) SearchTracks(_ context.Context, query string, limit int) ([]spotify.Item, error) {
	f.lastQuery, f.lastLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

func (f *fakeProxy) Metadata(_ context.Context, id, kind string) (*spotify.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.metadata, nil
}

type fakeProfiles struct {
	users       map[string]*db.User
	lastName    string
	lastAvatar  *string
	updateCalls int
}

func (f *fakeProfiles) Upsert(_ context.Context, user *db.User) (bool, error) {
	_, exists := f.users[user.ID]
	f.users[user.ID] = user
	return !exists, nil
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*db.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return user, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, id, displayName string, avatarURL *string) error {
	user, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	f.updateCalls++
	f.lastName, f.lastAvatar = displayName, avatarURL
	user.DisplayName = displayName
	user.AvatarURL = avatarURL
	return nil
}

func newTestHandlers(proxy SpotifyProxy) (*Handlers, *MemorySessionStore) {
	sessions := NewMemorySessionStore()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	profiles := &fakeProfiles{users: map[string]*db.User{"alice": testUser()}}
	h := NewHandlers(logger, nil, sessions, nil, nil, nil, proxy, profiles, nil)
	return h, sessions
}

func authedRequest(t *testing.T, sessions *MemorySessionStore, method, target string) *http.Request {
	t.Helper()
	session, err := sessions.Create(context.Background(), testToken(), testUser())
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	sessions.SetCookie(rec, session)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestSpotifySearchHandler(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		h, _ := newTestHandlers(&fakeProxy{})
		rec := httptest.NewRecorder()
		h.SpotifySearch(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/search?q=x", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("requires query", func(t *testing.T) {
		proxy := &fakeProxy{}
		h, sessions := newTestHandlers(proxy)
		rec := httptest.NewRecorder()
		h.SpotifySearch(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/search"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Error == "" {
			t.Error("empty error message")
		}
	})

	t.Run("default limit", func(t *testing.T) {
		proxy := &fakeProxy{tracks: []spotify.Item{{Name: "song", SpotifyID: "sp1"}}}
		h, sessions := newTestHandlers(proxy)
		rec := httptest.NewRecorder()
		h.SpotifySearch(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/search?q=hello"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if proxy.lastQuery != "hello" || proxy.lastLimit != spotify.DefaultSearchLimit {
			t.Errorf("proxy called with %q/%d", proxy.lastQuery, proxy.lastLimit)
		}
		var body struct {
			Tracks []spotify.Item `json:"tracks"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(body.Tracks) != 1 || body.Tracks[0].Name != "song" {
			t.Errorf("tracks = %+v", body.Tracks)
		}
	})

	t.Run("limit out of range", func(t *testing.T) {
		h, sessions := newTestHandlers(&fakeProxy{})
		rec := httptest.NewRecorder()
		h.SpotifySearch(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/search?q=x&limit=51"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("upstream status passes through", func(t *testing.T) {
		proxy := &fakeProxy{err: apperr.Upstream("spotify search failed", http.StatusTooManyRequests, nil)}
		h, sessions := newTestHandlers(proxy)
		rec := httptest.NewRecorder()
		h.SpotifySearch(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/search?q=x"))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", rec.Code)
		}
	})
}

func TestSpotifyMetadataHandler(t *testing.T) {
	t.Run("requires id", func(t *testing.T) {
		h, sessions := newTestHandlers(&fakeProxy{})
		rec := httptest.NewRecorder()
		h.SpotifyMetadata(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/metadata?type=track"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad type surfaces as 400", func(t *testing.T) {
		proxy := &fakeProxy{err: apperr.Validation(`unsupported type "artist"`)}
		h, sessions := newTestHandlers(proxy)
		rec := httptest.NewRecorder()
		h.SpotifyMetadata(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/metadata?id=a&type=artist"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("reshaped item returned", func(t *testing.T) {
		proxy := &fakeProxy{metadata: &spotify.Item{Name: "album", SpotifyType: "album"}}
		h, sessions := newTestHandlers(proxy)
		rec := httptest.NewRecorder()
		h.SpotifyMetadata(rec, authedRequest(t, sessions, http.MethodGet, "/api/spotify/metadata?id=a&type=album"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var item spotify.Item
		if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if item.Name != "album" {
			t.Errorf("item = %+v", item)
		}
	})
}

func TestMeHandler(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		h, _ := newTestHandlers(&fakeProxy{})
		rec := httptest.NewRecorder()
		h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("returns own profile", func(t *testing.T) {
		h, sessions := newTestHandlers(&fakeProxy{})
		rec := httptest.NewRecorder()
		h.Me(rec, authedRequest(t, sessions, http.MethodGet, "/api/me"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.ID != "alice" || body.Username != "alice" {
			t.Errorf("body = %+v", body)
		}
	})
}

func TestUpdateMeHandler(t *testing.T) {
	h, sessions := newTestHandlers(&fakeProxy{})
	profiles := h.profiles.(*fakeProfiles)

	send := func(t *testing.T, payload string) *httptest.ResponseRecorder {
		t.Helper()
		req := authedRequest(t, sessions, http.MethodPatch, "/api/me")
		req.Body = io.NopCloser(strings.NewReader(payload))
		rec := httptest.NewRecorder()
		h.UpdateMe(rec, req)
		return rec
	}

	t.Run("updates display name", func(t *testing.T) {
		rec := send(t, `{"display_name":"  アリス  "}`)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if profiles.lastName != "アリス" {
			t.Errorf("stored name = %q, want trimmed", profiles.lastName)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		before := profiles.updateCalls
		rec := send(t, `{"display_name":"   "}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if profiles.updateCalls != before {
			t.Error("profile mutated despite refusal")
		}
	})

	t.Run("overlong name rejected", func(t *testing.T) {
		rec := send(t, `{"display_name":"`+strings.Repeat("あ", 51)+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "plain id", id: "spotifyuser", want: "spotifyuser"},
		{name: "short id padded", id: "ab", want: "ab_"},
		{name: "invalid runes replaced", id: "user-name.jp", want: "user_name_jp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveUsername(tt.id); got != tt.want {
				t.Errorf("deriveUsername(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}

	t.Run("long ids stay within the cap", func(t *testing.T) {
		got := deriveUsername("abcdefghijklmnopqrstuvwxyz")
		if len(got) > usernameMaxLen {
			t.Errorf("len(%q) = %d, want at most %d", got, len(got), usernameMaxLen)
		}
		if !strings.HasPrefix(got, "abcdefghijklm") {
			t.Errorf("username %q does not keep the id prefix", got)
		}
		if again := deriveUsername("abcdefghijklmnopqrstuvwxyz"); again != got {
			t.Errorf("derivation not stable: %q then %q", got, again)
		}
	})

	t.Run("shared long prefix derives distinct usernames", func(t *testing.T) {
		a := deriveUsername("spotifyuser12345678_AAAAA")
		b := deriveUsername("spotifyuser12345678_BBBBB")
		if a == b {
			t.Fatalf("distinct ids derived the same username %q", a)
		}
		for _, name := range []string{a, b} {
			if len(name) < usernameMinLen || len(name) > usernameMaxLen {
				t.Errorf("len(%q) = %d, want between %d and %d",
					name, len(name), usernameMinLen, usernameMaxLen)
			}
		}
	})
}
