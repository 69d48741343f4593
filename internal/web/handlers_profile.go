package web

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/db"
)

const displayNameMaxRunes = 50

// Me returns the caller's own profile (GET /api/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	callerID := h.callerID(r)
	if callerID == "" {
		writeError(w, apperr.Auth("ログインが必要です"))
		return
	}

	user, err := h.profiles.Get(r.Context(), callerID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, apperr.NotFound("ユーザーが見つかりません"))
		return
	}
	if err != nil {
		h.logger.Error("fetching profile", "user", callerID, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

// UpdateMe edits the caller's display name and avatar (PATCH /api/me).
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	callerID := h.callerID(r)
	if callerID == "" {
		writeError(w, apperr.Auth("ログインが必要です"))
		return
	}

	var req struct {
		DisplayName string  `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		writeError(w, apperr.Validation("表示名を入力してください"))
		return
	}
	if utf8.RuneCountInString(name) > displayNameMaxRunes {
		writeError(w, apperr.Validation("表示名は50文字以内で入力してください"))
		return
	}

	err := h.profiles.UpdateProfile(r.Context(), callerID, name, req.AvatarURL)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, apperr.NotFound("ユーザーが見つかりません"))
		return
	}
	if err != nil {
		h.logger.Error("updating profile", "user", callerID, "err", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
