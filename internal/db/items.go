package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemRepository handles shelf item database operations.
type ItemRepository struct {
	pool *pgxpool.Pool
}

const itemColumns = `id, shelf_id, spotify_type, spotify_id, title, artist, album, image_url, color, memo, position, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.ShelfID,
		&item.SpotifyType,
		&item.SpotifyID,
		&item.Title,
		&item.Artist,
		&item.Album,
		&item.ImageURL,
		&item.Color,
		&item.Memo,
		&item.Position,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Add appends an item to a shelf. The position is computed inside the
// insert statement (max+1, or 0 for an empty shelf). Concurrent adds can
// still tie on a position under READ COMMITTED; ordering tolerates ties
// and the next reorder rewrites positions densely.
func (r *ItemRepository) Add(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO shelf_items (id, shelf_id, spotify_type, spotify_id, title, artist, album, image_url, color, position, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE(MAX(position) + 1, 0), NOW(), NOW()
		FROM shelf_items WHERE shelf_id = $2
		RETURNING position, created_at, updated_at
	`
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		item.ID,
		item.ShelfID,
		item.SpotifyType,
		item.SpotifyID,
		item.Title,
		item.Artist,
		item.Album,
		item.ImageURL,
		item.Color,
	).Scan(&item.Position, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting shelf item: %w", err)
	}
	return nil
}

// Get retrieves an item by ID.
func (r *ItemRepository) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM shelf_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying shelf item: %w", err)
	}
	return item, nil
}

// ListForShelf retrieves a shelf's items in position order.
func (r *ItemRepository) ListForShelf(ctx context.Context, shelfID uuid.UUID) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM shelf_items WHERE shelf_id = $1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, shelfID)
	if err != nil {
		return nil, fmt.Errorf("querying shelf items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shelf item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// OwnerOf resolves the owning user of an item via the item->shelf join.
func (r *ItemRepository) OwnerOf(ctx context.Context, itemID uuid.UUID) (string, error) {
	query := `
		SELECT s.user_id
		FROM shelf_items i
		JOIN shelves s ON s.id = i.shelf_id
		WHERE i.id = $1
	`
	var ownerID string
	err := r.pool.QueryRow(ctx, query, itemID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving item owner: %w", err)
	}
	return ownerID, nil
}

// Reorder rewrites position for every listed item to its index in ids, in
// one bulk statement scoped to the shelf. Positions come out distinct and
// contiguous from 0 as long as ids is a permutation of the shelf's items.
func (r *ItemRepository) Reorder(ctx context.Context, shelfID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE shelf_items i
		SET position = o.ord - 1, updated_at = NOW()
		FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE i.id = o.id AND i.shelf_id = $1
	`
	_, err := r.pool.Exec(ctx, query, shelfID, ids)
	if err != nil {
		return fmt.Errorf("reordering shelf items: %w", err)
	}
	return nil
}

// Move reparents an item to another shelf, appending it at that shelf's
// max position + 1. Comments and likes travel with the item row.
func (r *ItemRepository) Move(ctx context.Context, id, toShelfID uuid.UUID) error {
	query := `
		UPDATE shelf_items
		SET shelf_id = $2,
		    position = (SELECT COALESCE(MAX(position) + 1, 0) FROM shelf_items WHERE shelf_id = $2),
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, toShelfID)
	if err != nil {
		return fmt.Errorf("moving shelf item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Duplicate copies an item's descriptive fields into the target shelf at
// its max position + 1. Engagement rows (comments, likes) stay with the
// original. The new item's ID is returned.
func (r *ItemRepository) Duplicate(ctx context.Context, id, toShelfID uuid.UUID) (uuid.UUID, error) {
	query := `
		INSERT INTO shelf_items (id, shelf_id, spotify_type, spotify_id, title, artist, album, image_url, color, memo, position, created_at, updated_at)
		SELECT $3, $2, spotify_type, spotify_id, title, artist, album, image_url, color, memo,
		       (SELECT COALESCE(MAX(position) + 1, 0) FROM shelf_items WHERE shelf_id = $2),
		       NOW(), NOW()
		FROM shelf_items WHERE id = $1
	`
	newID := uuid.New()
	result, err := r.pool.Exec(ctx, query, id, toShelfID, newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("duplicating shelf item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return uuid.Nil, ErrNotFound
	}
	return newID, nil
}

// UpdateMemo sets the memo on an item.
func (r *ItemRepository) UpdateMemo(ctx context.Context, id uuid.UUID, memo *string) error {
	query := `UPDATE shelf_items SET memo = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, memo)
	if err != nil {
		return fmt.Errorf("updating item memo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMetadata overwrites the cached Spotify metadata on an item. Used by
// the maintenance repair job.
func (r *ItemRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, spotifyID, title, artist string, album, imageURL *string) error {
	query := `
		UPDATE shelf_items
		SET spotify_id = $2, title = $3, artist = $4, album = $5, image_url = $6, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, spotifyID, title, artist, album, imageURL)
	if err != nil {
		return fmt.Errorf("updating item metadata: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shelf_items WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting shelf item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForUser retrieves every item across a user's shelves, for the
// maintenance repair job.
func (r *ItemRepository) ListForUser(ctx context.Context, userID string) ([]Item, error) {
	query := `
		SELECT i.id, i.shelf_id, i.spotify_type, i.spotify_id, i.title, i.artist, i.album, i.image_url, i.color, i.memo, i.position, i.created_at, i.updated_at
		FROM shelf_items i
		JOIN shelves s ON s.id = i.shelf_id
		WHERE s.user_id = $1
		ORDER BY s.sort_order, i.position
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shelf item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
