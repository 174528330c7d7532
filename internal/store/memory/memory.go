// Package memory provides in-memory store implementations. Data is lost on
// restart; they back the test suites, the CLI demo mode and local
// development without a Firestore project.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/store"
)

// Store holds all three collections behind one mutex. Safe for concurrent
// use.
type Store struct {
	mu           sync.RWMutex
	transactions map[string][]map[string]interface{}
	settings     map[string]map[string]interface{}
	goals        map[string][]domain.Goal
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		transactions: make(map[string][]map[string]interface{}),
		settings:     make(map[string]map[string]interface{}),
		goals:        make(map[string][]domain.Goal),
	}
}

// ListTransactions returns up to limit of the user's transaction records in
// insertion order. A limit <= 0 means no cap.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.transactions[userID]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	// Copies keep callers from mutating stored state.
	result := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		result = append(result, cloneDoc(r))
	}
	return result, nil
}

// InsertTransaction stores a transaction record for the user and returns its
// generated id.
func (s *Store) InsertTransaction(ctx context.Context, userID string, record map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := cloneDoc(record)
	id := uuid.NewString()
	doc["id"] = id
	s.transactions[userID] = append(s.transactions[userID], doc)
	return id, nil
}

// GetSettings returns the user's settings document or store.ErrNotFound.
func (s *Store) GetSettings(ctx context.Context, userID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.settings[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDoc(doc), nil
}

// UpsertSettings merges fields into the user's settings document, creating
// it when absent.
func (s *Store) UpsertSettings(ctx context.Context, userID string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.settings[userID]
	if !ok {
		doc = map[string]interface{}{"user_id": userID}
		s.settings[userID] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// AppendGoal pushes a goal document onto the settings goals array, creating
// the document when absent.
func (s *Store) AppendGoal(ctx context.Context, userID string, goal map[string]interface{}) error {
	return s.appendToArray(userID, domain.FieldGoals, goal)
}

// AppendAction pushes an entry onto the settings action log, creating the
// document when absent.
func (s *Store) AppendAction(ctx context.Context, userID string, entry map[string]interface{}) error {
	return s.appendToArray(userID, domain.FieldActionLog, entry)
}

func (s *Store) appendToArray(userID, field string, item map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.settings[userID]
	if !ok {
		doc = map[string]interface{}{"user_id": userID}
		s.settings[userID] = doc
	}

	arr, _ := doc[field].([]interface{})
	doc[field] = append(arr, cloneDoc(item))
	return nil
}

// InsertGoal stores a goal and returns its generated id.
func (s *Store) InsertGoal(ctx context.Context, goal *domain.Goal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := *goal
	g.ID = uuid.NewString()
	s.goals[g.UserID] = append(s.goals[g.UserID], g)
	return g.ID, nil
}

// ListGoals returns the user's goals in insertion order.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Goal, len(s.goals[userID]))
	copy(result, s.goals[userID])
	return result, nil
}

func cloneDoc(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	doc := make(map[string]interface{}, len(m))
	for k, v := range m {
		doc[k] = v
	}
	return doc
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.SettingsStore    = (*Store)(nil)
	_ store.GoalsStore       = (*Store)(nil)
)
