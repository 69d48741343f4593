// Package interaction implements comments and likes attached to shelf
// items, with per-item counts for badges.
package interaction

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

// CommentMaxRunes is the write-time limit on comment content.
const CommentMaxRunes = 500

// User-facing messages.
const (
	msgLoginRequired   = "ログインが必要です"
	msgCommentEmpty    = "コメントを入力してください"
	msgCommentTooLong  = "コメントは500文字以内で入力してください"
	msgCommentNotFound = "コメントが見つかりません"
	msgCommentNoAuth   = "このコメントを削除する権限がありません"
)

// CommentStore is the persistence surface the service needs for comments.
type CommentStore interface {
	Create(ctx context.Context, comment *db.Comment) error
	Get(ctx context.Context, id uuid.UUID) (*db.Comment, error)
	ListForItem(ctx context.Context, itemID uuid.UUID) ([]db.Comment, error)
	CountForItem(ctx context.Context, itemID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LikeStore is the persistence surface the service needs for likes.
type LikeStore interface {
	ToggleItemLike(ctx context.Context, itemID uuid.UUID, userID string) (bool, error)
	ToggleCommentLike(ctx context.Context, commentID uuid.UUID, userID string) (bool, error)
	CountForItem(ctx context.Context, itemID uuid.UUID) (int, error)
	CountForComment(ctx context.Context, commentID uuid.UUID) (int, error)
	IsItemLikedBy(ctx context.Context, itemID uuid.UUID, userID string) (bool, error)
}

// Service implements comment and like operations over the stores.
type Service struct {
	comments CommentStore
	likes    LikeStore
}

// NewService creates an interaction service.
func NewService(comments CommentStore, likes LikeStore) *Service {
	return &Service{comments: comments, likes: likes}
}

// AddComment attaches a comment to an item. Any authenticated user may
// comment; only length is validated.
func (s *Service) AddComment(ctx context.Context, callerID string, itemID uuid.UUID, content string) (*db.Comment, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation(msgCommentEmpty)
	}
	if utf8.RuneCountInString(content) > CommentMaxRunes {
		return nil, apperr.Validation(msgCommentTooLong)
	}

	comment := &db.Comment{ShelfItemID: itemID, UserID: callerID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment. The author is re-fetched and compared to
// the caller; nobody else may delete it.
func (s *Service) DeleteComment(ctx context.Context, callerID string, commentID uuid.UUID) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}

	comment, err := s.comments.Get(ctx, commentID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(msgCommentNotFound)
	}
	if err != nil {
		return fmt.Errorf("fetching comment: %w", err)
	}
	if comment.UserID != callerID {
		return apperr.Authorization(msgCommentNoAuth)
	}

	if err := s.comments.Delete(ctx, commentID); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

// ListComments returns an item's comments oldest-first.
func (s *Service) ListComments(ctx context.Context, callerID string, itemID uuid.UUID) ([]db.Comment, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	comments, err := s.comments.ListForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// ToggleLike flips the caller's like on an item and returns the resulting
// state and count.
func (s *Service) ToggleLike(ctx context.Context, callerID string, itemID uuid.UUID) (liked bool, count int, err error) {
	if callerID == "" {
		return false, 0, apperr.Auth(msgLoginRequired)
	}
	liked, err = s.likes.ToggleItemLike(ctx, itemID, callerID)
	if err != nil {
		return false, 0, fmt.Errorf("toggling like: %w", err)
	}
	count, err = s.likes.CountForItem(ctx, itemID)
	if err != nil {
		return liked, 0, fmt.Errorf("counting likes: %w", err)
	}
	return liked, count, nil
}

// ToggleCommentLike flips the caller's like on a comment and returns the
// resulting state and count.
func (s *Service) ToggleCommentLike(ctx context.Context, callerID string, commentID uuid.UUID) (liked bool, count int, err error) {
	if callerID == "" {
		return false, 0, apperr.Auth(msgLoginRequired)
	}
	liked, err = s.likes.ToggleCommentLike(ctx, commentID, callerID)
	if err != nil {
		return false, 0, fmt.Errorf("toggling comment like: %w", err)
	}
	count, err = s.likes.CountForComment(ctx, commentID)
	if err != nil {
		return liked, 0, fmt.Errorf("counting comment likes: %w", err)
	}
	return liked, count, nil
}

// Counts holds the badge numbers for one item, plus whether the caller has
// liked it.
type Counts struct {
	Likes    int  `json:"likes"`
	Comments int  `json:"comments"`
	Liked    bool `json:"liked"`
}

// ItemCounts returns like and comment counts for an item without fetching
// rows.
func (s *Service) ItemCounts(ctx context.Context, callerID string, itemID uuid.UUID) (*Counts, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	likes, err := s.likes.CountForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}
	comments, err := s.comments.CountForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	liked, err := s.likes.IsItemLikedBy(ctx, itemID, callerID)
	if err != nil {
		return nil, fmt.Errorf("checking like state: %w", err)
	}
	return &Counts{Likes: likes, Comments: comments, Liked: liked}, nil
}
