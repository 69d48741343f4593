package web

import (
	"net/http"
	"strconv"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/spotify"
)

// SpotifySearch proxies track search to Spotify (GET /api/spotify/search).
func (h *Handlers) SpotifySearch(w http.ResponseWriter, r *http.Request) {
	if h.callerID(r) == "" {
		writeError(w, apperr.Auth("ログインが必要です"))
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, apperr.Validation("検索ワードを入力してください"))
		return
	}

	limit := spotify.DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			writeError(w, apperr.Validation("limitは1から50の間で指定してください"))
			return
		}
		limit = n
	}

	tracks, err := h.proxy.SearchTracks(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("spotify search", "query", query, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// SpotifyMetadata fetches metadata for a single Spotify entity
// (GET /api/spotify/metadata?id&type).
func (h *Handlers) SpotifyMetadata(w http.ResponseWriter, r *http.Request) {
	if h.callerID(r) == "" {
		writeError(w, apperr.Auth("ログインが必要です"))
		return
	}

	id := r.URL.Query().Get("id")
	kind := r.URL.Query().Get("type")
	if id == "" {
		writeError(w, apperr.Validation("idを指定してください"))
		return
	}

	item, err := h.proxy.Metadata(r.Context(), id, kind)
	if err != nil {
		h.logger.Error("spotify metadata", "id", id, "type", kind, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
