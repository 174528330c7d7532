package firestore

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/iterator"
)

// ListTransactions retrieves up to limit raw transaction documents for a
// user. Documents come back as loose maps; the engine's normalizer deals
// with their shape.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]map[string]interface{}, error) {
	query := s.client.Collection(transactionsCollection).
		Where("user_id", "==", userID)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []map[string]interface{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transactions for user %s: %w", userID, err)
		}

		data := doc.Data()
		if data == nil {
			data = map[string]interface{}{}
		}
		data["id"] = doc.Ref.ID
		records = append(records, data)
	}

	return records, nil
}

// InsertTransaction stores a transaction document for the user and returns
// the generated document id.
func (s *Store) InsertTransaction(ctx context.Context, userID string, record map[string]interface{}) (string, error) {
	doc := make(map[string]interface{}, len(record)+2)
	for k, v := range record {
		doc[k] = v
	}
	doc["user_id"] = userID
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = time.Now().UTC()
	}

	ref, _, err := s.client.Collection(transactionsCollection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert transaction for user %s: %w", userID, err)
	}
	return ref.ID, nil
}
