package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles comment database operations.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (id, shelf_item_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.ShelfItemID,
		comment.UserID,
		comment.Content,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// Get retrieves a comment by ID.
func (r *CommentRepository) Get(ctx context.Context, id uuid.UUID) (*Comment, error) {
	query := `
		SELECT id, shelf_item_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1
	`
	var comment Comment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.ShelfItemID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment: %w", err)
	}
	return &comment, nil
}

// ListForItem retrieves an item's comments oldest-first.
func (r *CommentRepository) ListForItem(ctx context.Context, itemID uuid.UUID) ([]Comment, error) {
	query := `
		SELECT id, shelf_item_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE shelf_item_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying item comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var comment Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ShelfItemID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// CountForItem returns the number of comments on an item without fetching
// rows; used to render badges.
func (r *CommentRepository) CountForItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM comments WHERE shelf_item_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, itemID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting item comments: %w", err)
	}
	return count, nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM comments WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
