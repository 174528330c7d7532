package domain

import (
	"fmt"
	"time"
)

// Settings document field names shared by the stores and the normalizer.
const (
	FieldSpendingLimit = "limite_gastos"
	FieldSavingsGoal   = "meta_ahorro"
	FieldGoals         = "goals"
	FieldActionLog     = "recommendation_actions"
)

// UserSettings holds the per-user preferences the rule evaluator consumes.
// A nil pointer means the preference is not set, which is a different state
// from an explicit 0 (a stored 0 still arms the saving-goal rules).
type UserSettings struct {
	UserID        string   `json:"user_id"`
	SpendingLimit *float64 `json:"limite_gastos"`
	SavingsGoal   *float64 `json:"meta_ahorro"`
}

// NormalizeSettings converts a raw preferences document into UserSettings.
// A nil or empty document yields both preferences unset. Unparseable values
// also normalize to unset rather than to 0, so garbage never triggers a
// limit alert.
func NormalizeSettings(userID string, raw map[string]interface{}) UserSettings {
	s := UserSettings{UserID: userID}
	if raw == nil {
		return s
	}
	s.SpendingLimit = OptionalAmount(raw[FieldSpendingLimit])
	s.SavingsGoal = OptionalAmount(raw[FieldSavingsGoal])
	return s
}

// OptionalAmount coerces an optional amount value, distinguishing "absent"
// from "present with value 0": nil and unparseable inputs yield nil, any
// parseable value (including 0) yields a pointer.
func OptionalAmount(v interface{}) *float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		return &val
	case float32:
		f := float64(val)
		return &f
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	default:
		f, ok := parseAmountString(fmt.Sprint(val))
		if !ok {
			return nil
		}
		return &f
	}
}

// Goal is a savings goal record as persisted in the goals collection.
type Goal struct {
	ID            string    `json:"id,omitempty" firestore:"-"`
	UserID        string    `json:"user_id" firestore:"user_id"`
	Name          string    `json:"name" firestore:"name"`
	TargetAmount  float64   `json:"target_amount" firestore:"target_amount"`
	CurrentAmount float64   `json:"current_amount" firestore:"current_amount"`
	CreatedAt     time.Time `json:"created_at" firestore:"created_at"`
	MetaType      string    `json:"meta_type" firestore:"meta_type"`
	Source        string    `json:"source" firestore:"source"`
}

// Doc renders the goal as a plain document for array appends into the
// settings fallback path.
func (g Goal) Doc() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        g.UserID,
		"name":           g.Name,
		"target_amount":  g.TargetAmount,
		"current_amount": g.CurrentAmount,
		"created_at":     g.CreatedAt,
		"meta_type":      g.MetaType,
		"source":         g.Source,
	}
}
