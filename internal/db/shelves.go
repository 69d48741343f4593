package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ShelfRepository handles shelf database operations.
type ShelfRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new shelf at the end of the owner's shelf order. The
// sort_order is assigned in the same statement; concurrent creates can
// still tie on a value, which ordering tolerates until the next reorder
// rewrites the sequence.
func (r *ShelfRepository) Create(ctx context.Context, shelf *Shelf) error {
	query := `
		INSERT INTO shelves (id, user_id, name, description, icon_url, sort_order, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, COALESCE(MAX(sort_order) + 1, 0), NOW(), NOW()
		FROM shelves WHERE user_id = $2
		RETURNING sort_order, created_at, updated_at
	`
	if shelf.ID == uuid.Nil {
		shelf.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		shelf.ID,
		shelf.UserID,
		shelf.Name,
		shelf.Description,
		shelf.IconURL,
	).Scan(&shelf.SortOrder, &shelf.CreatedAt, &shelf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting shelf: %w", err)
	}
	return nil
}

// Get retrieves a shelf by ID.
func (r *ShelfRepository) Get(ctx context.Context, id uuid.UUID) (*Shelf, error) {
	query := `
		SELECT id, user_id, name, description, icon_url, sort_order, created_at, updated_at
		FROM shelves
		WHERE id = $1
	`
	var shelf Shelf
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&shelf.ID,
		&shelf.UserID,
		&shelf.Name,
		&shelf.Description,
		&shelf.IconURL,
		&shelf.SortOrder,
		&shelf.CreatedAt,
		&shelf.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying shelf: %w", err)
	}
	return &shelf, nil
}

// ListForUser retrieves all shelves owned by a user, in shelf order.
func (r *ShelfRepository) ListForUser(ctx context.Context, userID string) ([]Shelf, error) {
	query := `
		SELECT id, user_id, name, description, icon_url, sort_order, created_at, updated_at
		FROM shelves
		WHERE user_id = $1
		ORDER BY sort_order
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user shelves: %w", err)
	}
	defer rows.Close()

	var shelves []Shelf
	for rows.Next() {
		var shelf Shelf
		if err := rows.Scan(
			&shelf.ID,
			&shelf.UserID,
			&shelf.Name,
			&shelf.Description,
			&shelf.IconURL,
			&shelf.SortOrder,
			&shelf.CreatedAt,
			&shelf.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning shelf: %w", err)
		}
		shelves = append(shelves, shelf)
	}
	return shelves, rows.Err()
}

// Update renames a shelf, scoped to its owner. Returns ErrNotFound when no
// row matches the (id, owner) filter: the shelf is missing or not owned by
// ownerID.
func (r *ShelfRepository) Update(ctx context.Context, id uuid.UUID, ownerID, name string, description *string) error {
	query := `
		UPDATE shelves
		SET name = $3, description = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.pool.Exec(ctx, query, id, ownerID, name, description)
	if err != nil {
		return fmt.Errorf("updating shelf: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a shelf, scoped to its owner. Items, comments and likes
// go with it via ON DELETE CASCADE.
func (r *ShelfRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM shelves WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting shelf: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder rewrites sort_order for the owner's shelves so that each shelf's
// sort_order equals its index in ids. One bulk statement, owner-scoped.
func (r *ShelfRepository) Reorder(ctx context.Context, ownerID string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE shelves s
		SET sort_order = o.ord - 1, updated_at = NOW()
		FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE s.id = o.id AND s.user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, ownerID, ids)
	if err != nil {
		return fmt.Errorf("reordering shelves: %w", err)
	}
	return nil
}
