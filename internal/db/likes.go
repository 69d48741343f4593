package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles like and comment-like database operations.
type LikeRepository struct {
	pool *pgxpool.Pool
}

// ToggleItemLike flips the like state for (item, user) and reports the
// resulting state. The insert relies on the UNIQUE(shelf_item_id, user_id)
// constraint: if ON CONFLICT DO NOTHING inserts no row the like already
// existed and is deleted instead, so concurrent toggles resolve to a single
// deterministic flip each.
func (r *LikeRepository) ToggleItemLike(ctx context.Context, itemID uuid.UUID, userID string) (liked bool, err error) {
	insert := `
		INSERT INTO likes (id, shelf_item_id, user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (shelf_item_id, user_id) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, insert, uuid.New(), itemID, userID)
	if err != nil {
		return false, fmt.Errorf("inserting like: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	del := `DELETE FROM likes WHERE shelf_item_id = $1 AND user_id = $2`
	if _, err := r.pool.Exec(ctx, del, itemID, userID); err != nil {
		return false, fmt.Errorf("deleting like: %w", err)
	}
	return false, nil
}

// ToggleCommentLike flips the like state for (comment, user); same
// constraint-backed scheme as ToggleItemLike.
func (r *LikeRepository) ToggleCommentLike(ctx context.Context, commentID uuid.UUID, userID string) (liked bool, err error) {
	insert := `
		INSERT INTO comment_likes (id, comment_id, user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (comment_id, user_id) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, insert, uuid.New(), commentID, userID)
	if err != nil {
		return false, fmt.Errorf("inserting comment like: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	del := `DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`
	if _, err := r.pool.Exec(ctx, del, commentID, userID); err != nil {
		return false, fmt.Errorf("deleting comment like: %w", err)
	}
	return false, nil
}

// CountForItem returns the number of likes on an item.
func (r *LikeRepository) CountForItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM likes WHERE shelf_item_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, itemID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting item likes: %w", err)
	}
	return count, nil
}

// CountForComment returns the number of likes on a comment.
func (r *LikeRepository) CountForComment(ctx context.Context, commentID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, commentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting comment likes: %w", err)
	}
	return count, nil
}

// IsItemLikedBy reports whether userID currently likes the item.
func (r *LikeRepository) IsItemLikedBy(ctx context.Context, itemID uuid.UUID, userID string) (bool, error) {
	query := `SELECT COUNT(*) FROM likes WHERE shelf_item_id = $1 AND user_id = $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, itemID, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("querying like state: %w", err)
	}
	return count > 0, nil
}
