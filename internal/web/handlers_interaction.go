package web

import (
	"net/http"
)

// ListComments returns an item's comments oldest first
// (GET /api/items/{id}/comments).
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	comments, err := h.interactions.ListComments(r.Context(), h.callerID(r), itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": toCommentViews(comments)})
}

// AddComment attaches a comment to an item (POST /api/items/{id}/comments).
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.interactions.AddComment(r.Context(), h.callerID(r), itemID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentView(comment))
}

// DeleteComment removes the caller's own comment
// (DELETE /api/comments/{id}).
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.interactions.DeleteComment(r.Context(), h.callerID(r), commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleItemLike flips the caller's like on an item and returns the new
// state and count (POST /api/items/{id}/like).
func (h *Handlers) ToggleItemLike(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	liked, count, err := h.interactions.ToggleLike(r.Context(), h.callerID(r), itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "count": count})
}

// ToggleCommentLike flips the caller's like on a comment
// (POST /api/comments/{id}/like).
func (h *Handlers) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	liked, count, err := h.interactions.ToggleCommentLike(r.Context(), h.callerID(r), commentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "count": count})
}

// ItemCounts returns like and comment counts for an item
// (GET /api/items/{id}/counts).
func (h *Handlers) ItemCounts(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	counts, err := h.interactions.ItemCounts(r.Context(), h.callerID(r), itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
