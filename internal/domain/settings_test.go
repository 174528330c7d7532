package domain

import "testing"

func TestNormalizeSettings(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]interface{}
		wantLimit *float64
		wantGoal  *float64
	}{
		{
			name:      "absent document",
			raw:       nil,
			wantLimit: nil,
			wantGoal:  nil,
		},
		{
			name:      "numeric values",
			raw:       map[string]interface{}{"limite_gastos": 300000.0, "meta_ahorro": 50000},
			wantLimit: f64(300000),
			wantGoal:  f64(50000),
		},
		{
			name:      "string values",
			raw:       map[string]interface{}{"limite_gastos": "250,000", "meta_ahorro": " 80000 "},
			wantLimit: f64(250000),
			wantGoal:  f64(80000),
		},
		{
			name:      "explicit zero stays set",
			raw:       map[string]interface{}{"meta_ahorro": 0},
			wantLimit: nil,
			wantGoal:  f64(0),
		},
		{
			name:      "null values are unset",
			raw:       map[string]interface{}{"limite_gastos": nil, "meta_ahorro": nil},
			wantLimit: nil,
			wantGoal:  nil,
		},
		{
			name:      "unparseable values are unset",
			raw:       map[string]interface{}{"limite_gastos": "sin límite", "meta_ahorro": "mucho"},
			wantLimit: nil,
			wantGoal:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSettings("u1", tt.raw)
			if got.UserID != "u1" {
				t.Errorf("UserID = %q, want %q", got.UserID, "u1")
			}
			checkOptional(t, "SpendingLimit", got.SpendingLimit, tt.wantLimit)
			checkOptional(t, "SavingsGoal", got.SavingsGoal, tt.wantGoal)
		})
	}
}

func TestGoalDoc(t *testing.T) {
	g := Goal{
		UserID:       "u1",
		Name:         "Ahorro sugerido",
		TargetAmount: 20000,
		MetaType:     "savings",
		Source:       "recommendation",
	}

	doc := g.Doc()
	if doc["user_id"] != "u1" {
		t.Errorf("doc user_id = %v, want u1", doc["user_id"])
	}
	if doc["target_amount"] != 20000.0 {
		t.Errorf("doc target_amount = %v, want 20000", doc["target_amount"])
	}
	if doc["current_amount"] != 0.0 {
		t.Errorf("doc current_amount = %v, want 0", doc["current_amount"])
	}
	if _, ok := doc["id"]; ok {
		t.Error("doc must not carry the generated id")
	}
}

func f64(v float64) *float64 { return &v }

func checkOptional(t *testing.T, field string, got, want *float64) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, got, want)
	case *got != *want:
		t.Errorf("%s = %v, want %v", field, *got, *want)
	}
}
