package web

import (
	"time"

	"github.com/ototana/ototana/internal/db"
)

// JSON projections of the storage models. Keeping these separate from the
// db structs lets the API shape evolve without touching the schema types.

type shelfView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IconURL     *string   `json:"icon_url"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type itemView struct {
	ID          string    `json:"id"`
	ShelfID     string    `json:"shelf_id"`
	SpotifyType string    `json:"spotify_type"`
	SpotifyID   string    `json:"spotify_id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       *string   `json:"album"`
	ImageURL    *string   `json:"image_url"`
	Color       *string   `json:"color"`
	Memo        *string   `json:"memo"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type userView struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	IsPublic    bool    `json:"is_public"`
}

type commentView struct {
	ID          string    `json:"id"`
	ShelfItemID string    `json:"shelf_item_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func toShelfView(s *db.Shelf) shelfView {
	return shelfView{
		ID:          s.ID.String(),
		UserID:      s.UserID,
		Name:        s.Name,
		Description: s.Description,
		IconURL:     s.IconURL,
		SortOrder:   s.SortOrder,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toShelfViews(shelves []db.Shelf) []shelfView {
	views := make([]shelfView, 0, len(shelves))
	for i := range shelves {
		views = append(views, toShelfView(&shelves[i]))
	}
	return views
}

func toItemView(it *db.Item) itemView {
	return itemView{
		ID:          it.ID.String(),
		ShelfID:     it.ShelfID.String(),
		SpotifyType: string(it.SpotifyType),
		SpotifyID:   it.SpotifyID,
		Title:       it.Title,
		Artist:      it.Artist,
		Album:       it.Album,
		ImageURL:    it.ImageURL,
		Color:       it.Color,
		Memo:        it.Memo,
		Position:    it.Position,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func toItemViews(items []db.Item) []itemView {
	views := make([]itemView, 0, len(items))
	for i := range items {
		views = append(views, toItemView(&items[i]))
	}
	return views
}

func toUserView(u *db.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsPublic:    u.IsPublic,
	}
}

func toUserViews(users []db.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i]))
	}
	return views
}

func toCommentView(c *db.Comment) commentView {
	return commentView{
		ID:          c.ID.String(),
		ShelfItemID: c.ShelfItemID.String(),
		UserID:      c.UserID,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
	}
}

func toCommentViews(comments []db.Comment) []commentView {
	views := make([]commentView, 0, len(comments))
	for i := range comments {
		views = append(views, toCommentView(&comments[i]))
	}
	return views
}
