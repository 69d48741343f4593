package db

import (
	"time"

	"github.com/google/uuid"
)

// SpotifyType identifies what kind of Spotify entity a shelf item references.
type SpotifyType string

// Valid item types.
const (
	TypeTrack    SpotifyType = "track"
	TypeAlbum    SpotifyType = "album"
	TypePlaylist SpotifyType = "playlist"
)

// Valid reports whether t is one of the supported item types.
func (t SpotifyType) Valid() bool {
	switch t {
	case TypeTrack, TypeAlbum, TypePlaylist:
		return true
	}
	return false
}

// FriendStatus is the lifecycle state of a friend edge.
type FriendStatus string

// Friend edge states. Blocked is representable but no exposed operation
// sets it.
const (
	StatusPending  FriendStatus = "pending"
	StatusAccepted FriendStatus = "accepted"
	StatusBlocked  FriendStatus = "blocked"
)

// User is a profile row, provisioned on first successful authentication.
type User struct {
	ID          string // Spotify user ID from the auth provider
	Username    string // unique, 3-20 chars
	DisplayName string
	AvatarURL   *string // nullable
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session is an authenticated web session carrying the user's Spotify
// OAuth token so server-side calls can act on the user's behalf.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Shelf is a user-owned, named, ordered collection of music items.
type Shelf struct {
	ID          uuid.UUID
	UserID      string // owner, immutable
	Name        string
	Description *string // nullable
	IconURL     *string // nullable
	SortOrder   int     // ordering key per owner
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is a single track/album/playlist reference with cached display
// metadata, belonging to exactly one shelf at a time.
type Item struct {
	ID          uuid.UUID
	ShelfID     uuid.UUID
	SpotifyType SpotifyType
	SpotifyID   string
	Title       string
	Artist      string
	Album       *string // nullable
	ImageURL    *string // nullable
	Color       *string // nullable
	Memo        *string // nullable, <=20 runes enforced at write time
	Position    int     // dense 0-based ordering within the shelf
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Friend is a directed edge from UserID (requester) to FriendID. Once
// accepted the relationship is treated as symmetric.
type Friend struct {
	ID        uuid.UUID
	UserID    string
	FriendID  string
	Status    FriendStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is attached to a shelf item by its author.
type Comment struct {
	ID          uuid.UUID
	ShelfItemID uuid.UUID
	UserID      string
	Content     string // <=500 runes enforced at write time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
