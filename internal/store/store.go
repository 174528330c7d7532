// Package store defines the collaborator contracts the recommendation engine
// and the API handlers are constructed with, plus the sentinel errors the
// implementations map their backend failures onto.
package store

import (
	"context"
	"errors"

	"github.com/gastosmart/backend/internal/domain"
)

var (
	// ErrNotFound reports an absent document. Readers treat it as "no data",
	// not as a failure.
	ErrNotFound = errors.New("store: not found")

	// ErrStorageUnavailable reports an unreachable or failing backend. Read
	// paths degrade on it; write paths surface it.
	ErrStorageUnavailable = errors.New("store: storage unavailable")
)

// TransactionReader fetches a user's raw transaction records. Records are
// loose documents; normalization happens in the engine, not here.
type TransactionReader interface {
	ListTransactions(ctx context.Context, userID string, limit int) ([]map[string]interface{}, error)
}

// PreferencesStore reads and mutates the per-user settings document.
// Append methods upsert the document when it does not exist yet.
type PreferencesStore interface {
	GetSettings(ctx context.Context, userID string) (map[string]interface{}, error)
	AppendGoal(ctx context.Context, userID string, goal map[string]interface{}) error
	AppendAction(ctx context.Context, userID string, entry map[string]interface{}) error
}

// GoalsWriter inserts goal records. The engine tolerates its absence (nil)
// and falls back to the preferences goals array.
type GoalsWriter interface {
	InsertGoal(ctx context.Context, goal *domain.Goal) (string, error)
}

// TransactionStore is the full transaction collection surface used by the
// HTTP layer and the seeder.
type TransactionStore interface {
	TransactionReader
	InsertTransaction(ctx context.Context, userID string, record map[string]interface{}) (string, error)
}

// SettingsStore is the full settings surface used by the HTTP layer.
type SettingsStore interface {
	PreferencesStore
	UpsertSettings(ctx context.Context, userID string, fields map[string]interface{}) error
}

// GoalsStore is the full goals surface used by the HTTP layer.
type GoalsStore interface {
	GoalsWriter
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)
}
