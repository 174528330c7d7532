package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/logger"
	"github.com/gastosmart/backend/internal/store"
)

// Recommendation types the applier knows how to act on. Anything else is
// reported back as unsupported without touching storage.
var (
	goalCreationTypes = map[string]bool{
		"suggest_goal":    true,
		"goal_suggestion": true,
		"create_goal":     true,
	}
	acknowledgeTypes = map[string]bool{
		"reduce_category":       true,
		"monitor_category":      true,
		"possible_subscription": true,
		"many_small_expenses":   true,
	}
)

// Apply executes a confirmed recommendation for the user. An unconfirmed
// request is rejected before anything else is looked at and never mutates
// storage. The returned error is non-nil only for storage failures; business
// rejections (unconfirmed, unsupported type) come back as Success=false with
// a nil error.
func (e *Engine) Apply(ctx context.Context, userID string, req domain.ApplyRequest) (domain.ApplyResult, error) {
	if !req.Confirm {
		return domain.ApplyResult{Success: false, Detail: "Acción no confirmada por el usuario."}, nil
	}

	switch {
	case goalCreationTypes[req.RecType]:
		return e.applyCreateGoal(ctx, userID, req)
	case acknowledgeTypes[req.RecType]:
		return e.applyLogAction(ctx, userID, req)
	}
	return domain.ApplyResult{
		Success: false,
		Detail:  fmt.Sprintf("Tipo de recomendación '%s' no soportado.", req.RecType),
	}, nil
}

// applyCreateGoal persists a savings goal. The goals collection is the
// primary target; when it is missing or its insert fails, the goal is
// appended to the settings document instead, so a degraded deployment still
// keeps the user's intent.
func (e *Engine) applyCreateGoal(ctx context.Context, userID string, req domain.ApplyRequest) (domain.ApplyResult, error) {
	log := logger.FromContext(ctx)

	goal := domain.Goal{
		UserID:        userID,
		Name:          metadataString(req.Metadata, "name", "Ahorro sugerido"),
		TargetAmount:  e.goalAmount(ctx, userID, req.Metadata),
		CurrentAmount: 0,
		CreatedAt:     time.Now().UTC(),
		MetaType:      "savings",
		Source:        "recommendation",
	}

	if e.goals != nil {
		id, err := e.goals.InsertGoal(ctx, &goal)
		if err == nil {
			return domain.ApplyResult{Success: true, Detail: fmt.Sprintf("Meta creada con id %s", id)}, nil
		}
		log.Error().Err(err).Str("user_id", userID).Msg("inserting goal failed, trying settings fallback")
		if e.preferences == nil {
			return domain.ApplyResult{Success: false, Detail: "Error al crear la meta."},
				fmt.Errorf("insert goal: %w", store.ErrStorageUnavailable)
		}
	}

	if e.preferences != nil {
		if err := e.preferences.AppendGoal(ctx, userID, goal.Doc()); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("appending goal to settings failed")
			return domain.ApplyResult{Success: false, Detail: "Error al crear la meta."},
				fmt.Errorf("append goal: %w", store.ErrStorageUnavailable)
		}
		return domain.ApplyResult{Success: true, Detail: "Meta añadida a user_settings.goals"}, nil
	}

	return domain.ApplyResult{Success: false, Detail: "No hay colección goals ni user_settings disponible."},
		fmt.Errorf("no goal storage configured: %w", store.ErrStorageUnavailable)
}

// applyLogAction records an acknowledged recommendation in the settings
// document's action log.
func (e *Engine) applyLogAction(ctx context.Context, userID string, req domain.ApplyRequest) (domain.ApplyResult, error) {
	if e.preferences == nil {
		return domain.ApplyResult{Success: false, Detail: "No hay user_settings para registrar la acción."},
			fmt.Errorf("no settings storage configured: %w", store.ErrStorageUnavailable)
	}

	log := logger.FromContext(ctx)
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	entry := map[string]interface{}{
		"rec_type":   req.RecType,
		"metadata":   metadata,
		"applied_at": time.Now().UTC(),
	}
	if err := e.preferences.AppendAction(ctx, userID, entry); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("recording recommendation action failed")
		return domain.ApplyResult{Success: false, Detail: "Error al registrar la acción."},
			fmt.Errorf("append action: %w", store.ErrStorageUnavailable)
	}
	return domain.ApplyResult{Success: true, Detail: "Acción registrada en user_settings"}, nil
}

// goalAmount resolves the target amount for a new goal: an explicit metadata
// amount wins, otherwise a fraction of the user's current income, otherwise
// the configured fallback.
func (e *Engine) goalAmount(ctx context.Context, userID string, md map[string]interface{}) float64 {
	if amt := domain.OptionalAmount(md["amount"]); amt != nil {
		return *amt
	}

	raw, _ := e.fetchUserData(ctx, userID)
	var income float64
	for _, rec := range raw {
		if t := domain.Normalize(rec); t.IsIncome() {
			income += t.Amount
		}
	}
	if income > 0 {
		return math.Round(income * e.goalFraction)
	}
	return e.fallbackGoalAmount
}

// metadataString reads an optional string from request metadata, rendering
// non-string values and falling back when absent or empty.
func metadataString(md map[string]interface{}, key, fallback string) string {
	v, ok := md[key]
	if !ok || v == nil {
		return fallback
	}
	s, isStr := v.(string)
	if !isStr {
		s = fmt.Sprint(v)
	}
	if s == "" {
		return fallback
	}
	return s
}
