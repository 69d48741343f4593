// Package shelf implements the shelf store: user-owned ordered collections
// and their member items.
package shelf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/db"
)

// MemoMaxRunes is the write-time limit on item memos.
const MemoMaxRunes = 20

// User-facing messages.
const (
	msgLoginRequired  = "ログインが必要です"
	msgShelfNameEmpty = "棚の名前を入力してください"
	msgShelfNotFound  = "棚が見つかりません"
	msgItemNotFound   = "アイテムが見つかりません"
	msgItemFields     = "必須項目が入力されていません"
	msgMemoTooLong    = "メモは20文字以内で入力してください"
	msgItemNoAuth     = "このアイテムを編集する権限がありません"
)

// ShelfStore is the persistence surface the service needs for shelves.
type ShelfStore interface {
	Create(ctx context.Context, shelf *db.Shelf) error
	Get(ctx context.Context, id uuid.UUID) (*db.Shelf, error)
	ListForUser(ctx context.Context, userID string) ([]db.Shelf, error)
	Update(ctx context.Context, id uuid.UUID, ownerID, name string, description *string) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	Reorder(ctx context.Context, ownerID string, ids []uuid.UUID) error
}

// ItemStore is the persistence surface the service needs for items.
type ItemStore interface {
	Add(ctx context.Context, item *db.Item) error
	Get(ctx context.Context, id uuid.UUID) (*db.Item, error)
	ListForShelf(ctx context.Context, shelfID uuid.UUID) ([]db.Item, error)
	OwnerOf(ctx context.Context, itemID uuid.UUID) (string, error)
	Reorder(ctx context.Context, shelfID uuid.UUID, ids []uuid.UUID) error
	Move(ctx context.Context, id, toShelfID uuid.UUID) error
	Duplicate(ctx context.Context, id, toShelfID uuid.UUID) (uuid.UUID, error)
	UpdateMemo(ctx context.Context, id uuid.UUID, memo *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileStore provisions and reads user profiles.
type ProfileStore interface {
	Upsert(ctx context.Context, user *db.User) (bool, error)
	Get(ctx context.Context, id string) (*db.User, error)
}

// Caller identifies the authenticated user performing an operation.
type Caller struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   *string
}

// Service implements shelf and item operations over the stores.
type Service struct {
	shelves ShelfStore
	items   ItemStore
	users   ProfileStore
}

// NewService creates a shelf service.
func NewService(shelves ShelfStore, items ItemStore, users ProfileStore) *Service {
	return &Service{shelves: shelves, items: items, users: users}
}

// CreateShelf creates a shelf for the caller. The caller's profile row is
// upserted first so a first-session user can create a shelf before any
// other profile write has happened.
func (s *Service) CreateShelf(ctx context.Context, caller Caller, name string) (*db.Shelf, error) {
	if caller.ID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(msgShelfNameEmpty)
	}

	if _, err := s.users.Upsert(ctx, &db.User{
		ID:          caller.ID,
		Username:    caller.Username,
		DisplayName: caller.DisplayName,
		AvatarURL:   caller.AvatarURL,
		IsPublic:    true,
	}); err != nil {
		return nil, fmt.Errorf("provisioning profile: %w", err)
	}

	shelf := &db.Shelf{UserID: caller.ID, Name: name}
	if err := s.shelves.Create(ctx, shelf); err != nil {
		return nil, fmt.Errorf("creating shelf: %w", err)
	}
	return shelf, nil
}

// UpdateShelf renames a shelf. The update is filtered by owner, so a
// missing shelf and someone else's shelf both come back as not found.
func (s *Service) UpdateShelf(ctx context.Context, callerID string, id uuid.UUID, name string, description *string) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation(msgShelfNameEmpty)
	}

	err := s.shelves.Update(ctx, id, callerID, name, description)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(msgShelfNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating shelf: %w", err)
	}
	return nil
}

// DeleteShelf removes a caller-owned shelf; its items cascade away with it.
func (s *Service) DeleteShelf(ctx context.Context, callerID string, id uuid.UUID) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	err := s.shelves.Delete(ctx, id, callerID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(msgShelfNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting shelf: %w", err)
	}
	return nil
}

// ListShelves returns the owner's shelves in shelf order. Shelves of a
// non-public owner are visible only to the owner.
func (s *Service) ListShelves(ctx context.Context, callerID, ownerID string) ([]db.Shelf, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	if callerID != ownerID {
		owner, err := s.users.Get(ctx, ownerID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound(msgShelfNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("resolving shelf owner: %w", err)
		}
		if !owner.IsPublic {
			return nil, apperr.NotFound(msgShelfNotFound)
		}
	}
	shelves, err := s.shelves.ListForUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing shelves: %w", err)
	}
	return shelves, nil
}

// ReorderShelves rewrites the caller's shelf order so each shelf's
// sort_order equals its index in ids.
func (s *Service) ReorderShelves(ctx context.Context, callerID string, ids []uuid.UUID) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if err := s.shelves.Reorder(ctx, callerID, ids); err != nil {
		return fmt.Errorf("reordering shelves: %w", err)
	}
	return nil
}

// AddItemParams carries the descriptive fields of a new item.
type AddItemParams struct {
	SpotifyType db.SpotifyType
	SpotifyID   string
	Title       string
	Artist      string
	Album       *string
	ImageURL    *string
	Color       *string
}

// AddItem appends an item to a caller-owned shelf at the next position.
func (s *Service) AddItem(ctx context.Context, callerID string, shelfID uuid.UUID, params AddItemParams) (*db.Item, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	if !params.SpotifyType.Valid() || params.SpotifyID == "" || params.Title == "" || params.Artist == "" {
		return nil, apperr.Validation(msgItemFields)
	}

	if err := s.requireShelfOwner(ctx, callerID, shelfID); err != nil {
		return nil, err
	}

	item := &db.Item{
		ShelfID:     shelfID,
		SpotifyType: params.SpotifyType,
		SpotifyID:   params.SpotifyID,
		Title:       params.Title,
		Artist:      params.Artist,
		Album:       params.Album,
		ImageURL:    params.ImageURL,
		Color:       params.Color,
	}
	if err := s.items.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("adding shelf item: %w", err)
	}
	return item, nil
}

// ListItems returns a shelf's items in position order, subject to the same
// owner visibility rule as ListShelves.
func (s *Service) ListItems(ctx context.Context, callerID string, shelfID uuid.UUID) ([]db.Item, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	shelf, err := s.getShelf(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf.UserID != callerID {
		owner, err := s.users.Get(ctx, shelf.UserID)
		if err != nil || !owner.IsPublic {
			return nil, apperr.NotFound(msgShelfNotFound)
		}
	}
	items, err := s.items.ListForShelf(ctx, shelfID)
	if err != nil {
		return nil, fmt.Errorf("listing shelf items: %w", err)
	}
	return items, nil
}

// ReorderItems rewrites every listed item's position to its index in ids.
// Ownership of the shelf is re-checked here rather than trusting the
// session alone.
func (s *Service) ReorderItems(ctx context.Context, callerID string, shelfID uuid.UUID, ids []uuid.UUID) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if err := s.requireShelfOwner(ctx, callerID, shelfID); err != nil {
		return err
	}
	if err := s.items.Reorder(ctx, shelfID, ids); err != nil {
		return fmt.Errorf("reordering shelf items: %w", err)
	}
	return nil
}

// MoveItem reparents a caller-owned item onto another caller-owned shelf,
// appending it at the end.
func (s *Service) MoveItem(ctx context.Context, callerID string, itemID, toShelfID uuid.UUID) error {
	if err := s.requireItemAndTarget(ctx, callerID, itemID, toShelfID); err != nil {
		return err
	}
	if err := s.items.Move(ctx, itemID, toShelfID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound(msgItemNotFound)
		}
		return fmt.Errorf("moving shelf item: %w", err)
	}
	return nil
}

// DuplicateItem copies an item's descriptive fields onto another
// caller-owned shelf. Comments and likes stay with the original.
func (s *Service) DuplicateItem(ctx context.Context, callerID string, itemID, toShelfID uuid.UUID) (uuid.UUID, error) {
	if err := s.requireItemAndTarget(ctx, callerID, itemID, toShelfID); err != nil {
		return uuid.Nil, err
	}
	newID, err := s.items.Duplicate(ctx, itemID, toShelfID)
	if errors.Is(err, db.ErrNotFound) {
		return uuid.Nil, apperr.NotFound(msgItemNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("duplicating shelf item: %w", err)
	}
	return newID, nil
}

// DeleteItem removes a caller-owned item.
func (s *Service) DeleteItem(ctx context.Context, callerID string, itemID uuid.UUID) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if err := s.requireItemOwner(ctx, callerID, itemID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound(msgItemNotFound)
		}
		return fmt.Errorf("deleting shelf item: %w", err)
	}
	return nil
}

// UpdateMemo sets or clears the memo on an item. The owner is resolved
// through the item's shelf; anyone else is refused.
func (s *Service) UpdateMemo(ctx context.Context, callerID string, itemID uuid.UUID, memo string) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	memo = strings.TrimSpace(memo)
	if utf8.RuneCountInString(memo) > MemoMaxRunes {
		return apperr.Validation(msgMemoTooLong)
	}
	if err := s.requireItemOwner(ctx, callerID, itemID); err != nil {
		return err
	}

	var value *string
	if memo != "" {
		value = &memo
	}
	if err := s.items.UpdateMemo(ctx, itemID, value); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound(msgItemNotFound)
		}
		return fmt.Errorf("updating item memo: %w", err)
	}
	return nil
}

// GetItem returns a single item.
func (s *Service) GetItem(ctx context.Context, callerID string, itemID uuid.UUID) (*db.Item, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	item, err := s.items.Get(ctx, itemID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(msgItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching shelf item: %w", err)
	}
	return item, nil
}

func (s *Service) getShelf(ctx context.Context, shelfID uuid.UUID) (*db.Shelf, error) {
	shelf, err := s.shelves.Get(ctx, shelfID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(msgShelfNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching shelf: %w", err)
	}
	return shelf, nil
}

func (s *Service) requireShelfOwner(ctx context.Context, callerID string, shelfID uuid.UUID) error {
	shelf, err := s.getShelf(ctx, shelfID)
	if err != nil {
		return err
	}
	if shelf.UserID != callerID {
		return apperr.Authorization(msgItemNoAuth)
	}
	return nil
}

func (s *Service) requireItemOwner(ctx context.Context, callerID string, itemID uuid.UUID) error {
	ownerID, err := s.items.OwnerOf(ctx, itemID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(msgItemNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolving item owner: %w", err)
	}
	if ownerID != callerID {
		return apperr.Authorization(msgItemNoAuth)
	}
	return nil
}

func (s *Service) requireItemAndTarget(ctx context.Context, callerID string, itemID, toShelfID uuid.UUID) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if err := s.requireItemOwner(ctx, callerID, itemID); err != nil {
		return err
	}
	return s.requireShelfOwner(ctx, callerID, toShelfID)
}
