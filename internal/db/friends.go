package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendRepository handles friend edge database operations.
type FriendRepository struct {
	pool *pgxpool.Pool
}

const friendColumns = `id, user_id, friend_id, status, created_at, updated_at`

func scanFriend(row pgx.Row) (*Friend, error) {
	var edge Friend
	err := row.Scan(
		&edge.ID,
		&edge.UserID,
		&edge.FriendID,
		&edge.Status,
		&edge.CreatedAt,
		&edge.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// GetBetween retrieves the edge between two users in either direction.
func (r *FriendRepository) GetBetween(ctx context.Context, userA, userB string) (*Friend, error) {
	query := `
		SELECT ` + friendColumns + `
		FROM friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	edge, err := scanFriend(r.pool.QueryRow(ctx, query, userA, userB))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying friend edge: %w", err)
	}
	return edge, nil
}

// Create inserts a directed pending edge from requester to target.
func (r *FriendRepository) Create(ctx context.Context, edge *Friend) error {
	query := `
		INSERT INTO friends (id, user_id, friend_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if edge.ID == uuid.Nil {
		edge.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		edge.ID,
		edge.UserID,
		edge.FriendID,
		edge.Status,
	).Scan(&edge.CreatedAt, &edge.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting friend edge: %w", err)
	}
	return nil
}

// Accept flips the pending edge requester->recipient to accepted. Returns
// ErrNotFound when no matching pending edge exists, so a stale accept is a
// visible failure rather than a silent no-op.
func (r *FriendRepository) Accept(ctx context.Context, requesterID, recipientID string) error {
	query := `
		UPDATE friends
		SET status = $3, updated_at = NOW()
		WHERE user_id = $1 AND friend_id = $2 AND status = $4
	`
	result, err := r.pool.Exec(ctx, query, requesterID, recipientID, StatusAccepted, StatusPending)
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePending removes the pending edge requester->recipient. Deleting an
// edge that is already gone is not an error; idempotent by design.
func (r *FriendRepository) DeletePending(ctx context.Context, requesterID, recipientID string) error {
	query := `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2 AND status = $3`
	_, err := r.pool.Exec(ctx, query, requesterID, recipientID, StatusPending)
	if err != nil {
		return fmt.Errorf("deleting pending friend edge: %w", err)
	}
	return nil
}

// DeleteBetween removes any edge between the two users regardless of
// direction or status.
func (r *FriendRepository) DeleteBetween(ctx context.Context, userA, userB string) error {
	query := `
		DELETE FROM friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	_, err := r.pool.Exec(ctx, query, userA, userB)
	if err != nil {
		return fmt.Errorf("deleting friend edge: %w", err)
	}
	return nil
}

// ListAccepted returns the users connected to userID by an accepted edge,
// in either direction.
func (r *FriendRepository) ListAccepted(ctx context.Context, userID string) ([]User, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_public, u.created_at, u.updated_at
		FROM friends f
		JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = $2
		ORDER BY f.updated_at DESC
	`
	return r.queryUsers(ctx, query, userID, StatusAccepted)
}

// ListPendingFor returns the users with an open request addressed to userID.
func (r *FriendRepository) ListPendingFor(ctx context.Context, userID string) ([]User, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_public, u.created_at, u.updated_at
		FROM friends f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC
	`
	return r.queryUsers(ctx, query, userID, StatusPending)
}

func (r *FriendRepository) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying friend users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.DisplayName,
			&user.AvatarURL,
			&user.IsPublic,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning friend user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
