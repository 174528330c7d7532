package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/store"
)

func TestTransactionsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.InsertTransaction(ctx, "u1", map[string]interface{}{"type": "gasto", "amount": float64(i)}); err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
	}

	records, err := s.ListTransactions(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3 (limit)", len(records))
	}
	if records[0]["amount"] != 0.0 {
		t.Errorf("insertion order broken: first amount = %v", records[0]["amount"])
	}

	// Mutating the returned copy must not leak into the store.
	records[0]["amount"] = 999.0
	again, _ := s.ListTransactions(ctx, "u1", 0)
	if again[0]["amount"] != 0.0 {
		t.Error("returned record shares memory with stored record")
	}

	other, _ := s.ListTransactions(ctx, "nobody", 0)
	if len(other) != 0 {
		t.Errorf("unknown user should have no records, got %d", len(other))
	}
}

func TestSettingsUpsertAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetSettings(ctx, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetSettings on empty store: err = %v, want ErrNotFound", err)
	}

	if err := s.UpsertSettings(ctx, "u1", map[string]interface{}{"limite_gastos": 300000.0}); err != nil {
		t.Fatalf("UpsertSettings: %v", err)
	}
	if err := s.UpsertSettings(ctx, "u1", map[string]interface{}{"meta_ahorro": 50000.0}); err != nil {
		t.Fatalf("UpsertSettings: %v", err)
	}

	doc, err := s.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if doc["limite_gastos"] != 300000.0 || doc["meta_ahorro"] != 50000.0 {
		t.Errorf("merged doc = %v", doc)
	}
}

func TestAppendUpsertsDocument(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.AppendAction(ctx, "u1", map[string]interface{}{"rec_type": "reduce_category"}); err != nil {
		t.Fatalf("AppendAction: %v", err)
	}
	if err := s.AppendGoal(ctx, "u1", map[string]interface{}{"name": "Ahorro sugerido"}); err != nil {
		t.Fatalf("AppendGoal: %v", err)
	}

	doc, err := s.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings after appends: %v", err)
	}

	actions, _ := doc[domain.FieldActionLog].([]interface{})
	if len(actions) != 1 {
		t.Errorf("action log length = %d, want 1", len(actions))
	}
	goals, _ := doc[domain.FieldGoals].([]interface{})
	if len(goals) != 1 {
		t.Errorf("goals array length = %d, want 1", len(goals))
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.InsertGoal(ctx, &domain.Goal{UserID: "u1", Name: "Ahorro sugerido", TargetAmount: 20000})
	if err != nil {
		t.Fatalf("InsertGoal: %v", err)
	}
	if id == "" {
		t.Fatal("InsertGoal returned empty id")
	}

	goals, err := s.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != id || goals[0].TargetAmount != 20000 {
		t.Errorf("ListGoals = %+v, want one goal with id %s", goals, id)
	}
}
