// Package firestore implements the store contracts on Cloud Firestore.
// Collections mirror the product's document model: transactions and goals
// hold one document per record, user_settings holds one document per user
// keyed by user id.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

const (
	transactionsCollection = "transactions"
	settingsCollection     = "user_settings"
	goalsCollection        = "goals"
)

// Store wraps a Firestore client with the collection operations the service
// needs.
type Store struct {
	client    *firestore.Client
	projectID string
}

// New creates a Store for the given project. Credentials come from the
// environment (Application Default Credentials) unless a credentials file is
// passed.
func New(ctx context.Context, projectID string, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &Store{client: client, projectID: projectID}, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
