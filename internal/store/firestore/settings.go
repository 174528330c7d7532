package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/store"
)

// GetSettings fetches the user's settings document. Returns
// store.ErrNotFound when the user has no document yet.
func (s *Store) GetSettings(ctx context.Context, userID string) (map[string]interface{}, error) {
	snap, err := s.client.Collection(settingsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read settings for user %s: %w", userID, err)
	}
	return snap.Data(), nil
}

// UpsertSettings merges fields into the user's settings document, creating
// it when absent.
func (s *Store) UpsertSettings(ctx context.Context, userID string, fields map[string]interface{}) error {
	doc := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc["user_id"] = userID

	_, err := s.client.Collection(settingsCollection).Doc(userID).Set(ctx, doc, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to upsert settings for user %s: %w", userID, err)
	}
	return nil
}

// AppendGoal appends a goal document to the settings goals array, creating
// the settings document when absent.
func (s *Store) AppendGoal(ctx context.Context, userID string, goal map[string]interface{}) error {
	return s.appendToArray(ctx, userID, domain.FieldGoals, goal)
}

// AppendAction appends an entry to the settings action log, creating the
// settings document when absent.
func (s *Store) AppendAction(ctx context.Context, userID string, entry map[string]interface{}) error {
	return s.appendToArray(ctx, userID, domain.FieldActionLog, entry)
}

// appendToArray is the ArrayUnion-with-merge upsert both append paths share.
func (s *Store) appendToArray(ctx context.Context, userID, field string, item map[string]interface{}) error {
	_, err := s.client.Collection(settingsCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"user_id": userID,
		field:     firestore.ArrayUnion(item),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to append to %s for user %s: %w", field, userID, err)
	}
	return nil
}
