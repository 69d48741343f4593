package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ototana/ototana/internal/db"
)

// ProfileUpserter provisions placeholder profiles.
type ProfileUpserter interface {
	Upsert(ctx context.Context, user *db.User) (bool, error)
}

// EdgeCreator inserts friend edges.
type EdgeCreator interface {
	GetBetween(ctx context.Context, userA, userB string) (*db.Friend, error)
	Create(ctx context.Context, edge *db.Friend) error
}

// SeedFriends creates count placeholder public users and accepted friend
// edges toward userID, for demos and development environments. Existing
// edges are left alone so the job can run more than once.
func SeedFriends(ctx context.Context, logger *log.Logger, users ProfileUpserter, friends EdgeCreator, userID string, count int) error {
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	for i := 1; i <= count; i++ {
		demoID := fmt.Sprintf("demo_friend_%03d", i)
		displayName := fmt.Sprintf("デモフレンド%d", i)

		if _, err := users.Upsert(ctx, &db.User{
			ID:          demoID,
			Username:    demoID,
			DisplayName: displayName,
			IsPublic:    true,
		}); err != nil {
			return fmt.Errorf("provisioning %s: %w", demoID, err)
		}

		existing, err := friends.GetBetween(ctx, userID, demoID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("checking edge to %s: %w", demoID, err)
		}
		if existing != nil {
			logger.Debug("edge exists", "friend", demoID, "status", existing.Status)
			continue
		}

		if err := friends.Create(ctx, &db.Friend{
			ID:       uuid.New(),
			UserID:   demoID,
			FriendID: userID,
			Status:   db.StatusAccepted,
		}); err != nil {
			return fmt.Errorf("creating edge to %s: %w", demoID, err)
		}
		logger.Info("seeded friend", "friend", demoID)
	}

	logger.Info("seeding complete", "user", userID, "count", count)
	return nil
}
