package firestore

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"

	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/store"
)

// InsertGoal stores a goal document and returns its generated id.
func (s *Store) InsertGoal(ctx context.Context, goal *domain.Goal) (string, error) {
	ref, _, err := s.client.Collection(goalsCollection).Add(ctx, goal)
	if err != nil {
		return "", fmt.Errorf("failed to insert goal for user %s: %w", goal.UserID, err)
	}
	return ref.ID, nil
}

// ListGoals retrieves all goals for a user.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	iter := s.client.Collection(goalsCollection).
		Where("user_id", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	var goals []domain.Goal
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate goals for user %s: %w", userID, err)
		}

		var g domain.Goal
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("failed to parse goal %s: %w", doc.Ref.ID, err)
		}
		g.ID = doc.Ref.ID
		goals = append(goals, g)
	}

	return goals, nil
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.SettingsStore    = (*Store)(nil)
	_ store.GoalsStore       = (*Store)(nil)
)
