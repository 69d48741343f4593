package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates the profile row if absent, updating display fields
// otherwise. Called on every successful login, so it must be idempotent.
// Reports whether a new row was created.
func (r *UserRepository) Upsert(ctx context.Context, user *User) (bool, error) {
	query := `
		INSERT INTO users (id, username, display_name, avatar_url, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING created_at, updated_at, (created_at = updated_at)
	`
	var created bool
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.AvatarURL,
		user.IsPublic,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upserting user: %w", err)
	}
	return created, nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, username, display_name, avatar_url, is_public, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.AvatarURL,
		&user.IsPublic,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// UpdateProfile mutates the owning user's mutable fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, displayName string, avatarURL *string) error {
	query := `
		UPDATE users
		SET display_name = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, displayName, avatarURL)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns public users whose username or display name contains the
// query, case-insensitive, excluding excludeID, capped at limit. The query
// is matched literally; ILIKE wildcards in it are escaped.
func (r *UserRepository) Search(ctx context.Context, query, excludeID string, limit int) ([]User, error) {
	sql := `
		SELECT id, username, display_name, avatar_url, is_public, created_at, updated_at
		FROM users
		WHERE is_public = TRUE
		  AND id <> $2
		  AND (username ILIKE '%' || $1 || '%' OR display_name ILIKE '%' || $1 || '%')
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, sql, escapeLike(query), excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
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
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// escapeLike neutralizes LIKE/ILIKE pattern metacharacters in
// user-supplied text so it matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
