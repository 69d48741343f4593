// Package social implements the friend graph: a request/accept/reject/
// remove state machine between pairs of users.
package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/db"
)

// Limits.
const (
	minSearchRunes = 2
	searchLimit    = 10
)

// User-facing messages.
const (
	msgLoginRequired   = "ログインが必要です"
	msgSelfRequest     = "自分自身にフレンドリクエストは送れません"
	msgAlreadyFriends  = "すでにフレンドです"
	msgAlreadyPending  = "フレンドリクエストは送信済みです"
	msgBlocked         = "このユーザーにはリクエストを送信できません"
	msgRequestNotFound = "フレンドリクエストが見つかりません"
	msgQueryTooShort   = "検索キーワードは2文字以上で入力してください"
)

// EdgeStore is the persistence surface the service needs for friend edges.
type EdgeStore interface {
	GetBetween(ctx context.Context, userA, userB string) (*db.Friend, error)
	Create(ctx context.Context, edge *db.Friend) error
	Accept(ctx context.Context, requesterID, recipientID string) error
	DeletePending(ctx context.Context, requesterID, recipientID string) error
	DeleteBetween(ctx context.Context, userA, userB string) error
	ListAccepted(ctx context.Context, userID string) ([]db.User, error)
	ListPendingFor(ctx context.Context, userID string) ([]db.User, error)
}

// UserSearcher finds public users by name.
type UserSearcher interface {
	Search(ctx context.Context, query, excludeID string, limit int) ([]db.User, error)
}

// Service implements the friend state machine over the stores.
type Service struct {
	edges EdgeStore
	users UserSearcher
}

// NewService creates a social service.
func NewService(edges EdgeStore, users UserSearcher) *Service {
	return &Service{edges: edges, users: users}
}

// SendRequest inserts a pending edge from the caller to friendID. An
// existing edge in any state refuses the request with a state-specific
// message.
func (s *Service) SendRequest(ctx context.Context, callerID, friendID string) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if friendID == callerID {
		return apperr.Validation(msgSelfRequest)
	}

	edge, err := s.edges.GetBetween(ctx, callerID, friendID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("checking friend edge: %w", err)
	}
	if edge != nil {
		switch edge.Status {
		case db.StatusAccepted:
			return apperr.Validation(msgAlreadyFriends)
		case db.StatusPending:
			return apperr.Validation(msgAlreadyPending)
		default: // blocked
			return apperr.Validation(msgBlocked)
		}
	}

	if err := s.edges.Create(ctx, &db.Friend{
		UserID:   callerID,
		FriendID: friendID,
		Status:   db.StatusPending,
	}); err != nil {
		return fmt.Errorf("creating friend request: %w", err)
	}
	return nil
}

// AcceptRequest flips the pending edge requester->caller to accepted.
// Accepting a request that no longer exists is reported as not found, so a
// stale accept never passes silently.
func (s *Service) AcceptRequest(ctx context.Context, callerID, requesterID string) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	err := s.edges.Accept(ctx, requesterID, callerID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(msgRequestNotFound)
	}
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}
	return nil
}

// RejectRequest deletes the pending edge requester->caller. Rejecting an
// already-gone request succeeds; the end state is the same either way.
func (s *Service) RejectRequest(ctx context.Context, callerID, requesterID string) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if err := s.edges.DeletePending(ctx, requesterID, callerID); err != nil {
		return fmt.Errorf("rejecting friend request: %w", err)
	}
	return nil
}

// RemoveFriend deletes any edge between the caller and friendID regardless
// of direction or status. Either party may remove.
func (s *Service) RemoveFriend(ctx context.Context, callerID, friendID string) error {
	if callerID == "" {
		return apperr.Auth(msgLoginRequired)
	}
	if err := s.edges.DeleteBetween(ctx, callerID, friendID); err != nil {
		return fmt.Errorf("removing friend: %w", err)
	}
	return nil
}

// ListFriends returns the caller's accepted friends.
func (s *Service) ListFriends(ctx context.Context, callerID string) ([]db.User, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	users, err := s.edges.ListAccepted(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	return users, nil
}

// ListPendingRequests returns the users with an open request to the caller.
func (s *Service) ListPendingRequests(ctx context.Context, callerID string) ([]db.User, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	users, err := s.edges.ListPendingFor(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing friend requests: %w", err)
	}
	return users, nil
}

// SearchUsers returns up to 10 public users whose username or display name
// contains the query, case-insensitive, excluding the caller.
func (s *Service) SearchUsers(ctx context.Context, callerID, query string) ([]db.User, error) {
	if callerID == "" {
		return nil, apperr.Auth(msgLoginRequired)
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchRunes {
		return nil, apperr.Validation(msgQueryTooShort)
	}
	users, err := s.users.Search(ctx, query, callerID, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}
