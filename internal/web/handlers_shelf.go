package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/db"
	"github.com/ototana/ototana/internal/event"
	"github.com/ototana/ototana/internal/shelf"
)

// ListShelves returns the caller's shelves, or another user's public
// shelves when ?user is set (GET /api/shelves).
func (h *Handlers) ListShelves(w http.ResponseWriter, r *http.Request) {
	callerID := h.callerID(r)
	ownerID := r.URL.Query().Get("user")
	if ownerID == "" {
		ownerID = callerID
	}

	shelves, err := h.shelves.ListShelves(r.Context(), callerID, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shelves": toShelfViews(shelves)})
}

// CreateShelf creates a shelf for the caller (POST /api/shelves).
func (h *Handlers) CreateShelf(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(r)
	if !ok {
		writeError(w, apperr.Auth("ログインが必要です"))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.shelves.CreateShelf(r.Context(), caller, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShelfView(created))
}

// UpdateShelf renames or re-describes a caller-owned shelf
// (PATCH /api/shelves/{id}).
func (h *Handlers) UpdateShelf(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.shelves.UpdateShelf(r.Context(), h.callerID(r), id, req.Name, req.Description); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteShelf removes a caller-owned shelf and its items
// (DELETE /api/shelves/{id}).
func (h *Handlers) DeleteShelf(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.shelves.DeleteShelf(r.Context(), h.callerID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderShelves applies a full permutation of the caller's shelves
// (POST /api/shelves/reorder).
func (h *Handlers) ReorderShelves(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShelfIDs []uuid.UUID `json:"shelf_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.shelves.ReorderShelves(r.Context(), h.callerID(r), req.ShelfIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItems returns a shelf's items in position order
// (GET /api/shelves/{id}/items).
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	shelfID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.shelves.ListItems(r.Context(), h.callerID(r), shelfID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toItemViews(items)})
}

// AddItem appends an item to a caller-owned shelf
// (POST /api/shelves/{id}/items).
func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	shelfID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		SpotifyType string  `json:"spotify_type"`
		SpotifyID   string  `json:"spotify_id"`
		Title       string  `json:"title"`
		Artist      string  `json:"artist"`
		Album       *string `json:"album"`
		ImageURL    *string `json:"image_url"`
		Color       *string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	callerID := h.callerID(r)
	item, err := h.shelves.AddItem(r.Context(), callerID, shelfID, shelf.AddItemParams{
		SpotifyType: db.SpotifyType(req.SpotifyType),
		SpotifyID:   req.SpotifyID,
		Title:       req.Title,
		Artist:      req.Artist,
		Album:       req.Album,
		ImageURL:    req.ImageURL,
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.publishItemAdded(event.ItemAdded{
		ShelfID:   shelfID.String(),
		ItemID:    item.ID.String(),
		UserID:    callerID,
		Title:     item.Title,
		SpotifyID: item.SpotifyID,
	})
	writeJSON(w, http.StatusCreated, toItemView(item))
}

// ReorderItems applies a full permutation of a shelf's items
// (POST /api/shelves/{id}/items/reorder).
func (h *Handlers) ReorderItems(w http.ResponseWriter, r *http.Request) {
	shelfID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		ItemIDs []uuid.UUID `json:"item_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.shelves.ReorderItems(r.Context(), h.callerID(r), shelfID, req.ItemIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveItem moves an item to the end of another caller-owned shelf
// (POST /api/items/{id}/move).
func (h *Handlers) MoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		ToShelfID uuid.UUID `json:"to_shelf_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.shelves.MoveItem(r.Context(), h.callerID(r), itemID, req.ToShelfID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateItem copies an item into another caller-owned shelf
// (POST /api/items/{id}/duplicate).
func (h *Handlers) DuplicateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		ToShelfID uuid.UUID `json:"to_shelf_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	newID, err := h.shelves.DuplicateItem(r.Context(), h.callerID(r), itemID, req.ToShelfID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": newID.String()})
}

// UpdateMemo sets or clears the caller's memo on an owned item
// (PATCH /api/items/{id}/memo).
func (h *Handlers) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Memo string `json:"memo"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.shelves.UpdateMemo(r.Context(), h.callerID(r), itemID, req.Memo); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItem removes an item from a caller-owned shelf
// (DELETE /api/items/{id}).
func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	callerID := h.callerID(r)
	item, err := h.shelves.GetItem(r.Context(), callerID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.shelves.DeleteItem(r.Context(), callerID, itemID); err != nil {
		writeError(w, err)
		return
	}

	h.publishItemRemoved(event.ItemRemoved{
		ShelfID: item.ShelfID.String(),
		ItemID:  itemID.String(),
		UserID:  callerID,
	})
	w.WriteHeader(http.StatusNoContent)
}

// TrackPlaying records that the caller started playback of a track
// (POST /api/player/playing).
func (h *Handlers) TrackPlaying(w http.ResponseWriter, r *http.Request) {
	callerID := h.callerID(r)
	if callerID == "" {
		writeError(w, apperr.Auth("ログインが必要です"))
		return
	}

	var req struct {
		SpotifyID string `json:"spotify_id"`
		Title     string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SpotifyID == "" {
		writeError(w, apperr.Validation("spotify_idを指定してください"))
		return
	}

	if err := h.bus.PublishTrackPlaying(event.TrackPlaying{
		UserID:    callerID,
		SpotifyID: req.SpotifyID,
		Title:     req.Title,
	}); err != nil {
		h.logger.Error("publishing track.playing", "err", err)
	}
	w.WriteHeader(http.StatusAccepted)
}

// Event publishing is best-effort; a failed publish never fails the
// originating request.

func (h *Handlers) publishItemAdded(ev event.ItemAdded) {
	if err := h.bus.PublishItemAdded(ev); err != nil {
		h.logger.Error("publishing shelf.item_added", "err", err)
	}
}

func (h *Handlers) publishItemRemoved(ev event.ItemRemoved) {
	if err := h.bus.PublishItemRemoved(ev); err != nil {
		h.logger.Error("publishing shelf.item_removed", "err", err)
	}
}
