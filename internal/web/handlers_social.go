package web

import (
	"net/http"
)

// ListFriends returns the caller's accepted friends (GET /api/friends).
func (h *Handlers) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.social.ListFriends(r.Context(), h.callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": toUserViews(friends)})
}

// ListFriendRequests returns pending requests addressed to the caller
// (GET /api/friends/requests).
func (h *Handlers) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	requesters, err := h.social.ListPendingRequests(r.Context(), h.callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": toUserViews(requesters)})
}

// SendFriendRequest creates a pending edge toward another user
// (POST /api/friends/request).
func (h *Handlers) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.social.SendRequest(r.Context(), h.callerID(r), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptFriendRequest accepts a pending request from another user
// (POST /api/friends/accept).
func (h *Handlers) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.social.AcceptRequest(r.Context(), h.callerID(r), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RejectFriendRequest dismisses a pending request; repeating the call is
// harmless (POST /api/friends/reject).
func (h *Handlers) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.social.RejectRequest(r.Context(), h.callerID(r), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFriend deletes an accepted friendship in both directions
// (POST /api/friends/remove).
func (h *Handlers) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.social.RemoveFriend(r.Context(), h.callerID(r), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchUsers finds public users by partial username or display name
// (GET /api/users/search?q).
func (h *Handlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.social.SearchUsers(r.Context(), h.callerID(r), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toUserViews(users)})
}
