package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gastosmart/backend/internal/api/middleware"
	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/recommend"
	"github.com/gastosmart/backend/internal/regional"
	"github.com/gastosmart/backend/internal/store"
)

// RecommendationsHandler serves generation and application of
// recommendations.
type RecommendationsHandler struct {
	engine *recommend.Engine
	log    zerolog.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(engine *recommend.Engine, log zerolog.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{
		engine: engine,
		log:    log,
	}
}

// GetRecommendations handles GET /api/recommendations
func (h *RecommendationsHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	recommendations := h.engine.Generate(ctx, userID)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recommendations,
	})
}

// ApplyRecommendation handles POST /api/recommendations/apply
func (h *RecommendationsHandler) ApplyRecommendation(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RecType == "" {
		middleware.WriteError(w, http.StatusBadRequest, "rec_type is required")
		return
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	result, err := h.engine.Apply(ctx, userID, req)
	if err != nil {
		h.log.Error().Err(err).
			Str("user_id", userID).
			Str("rec_type", req.RecType).
			Msg("Failed to apply recommendation")
		if errors.Is(err, store.ErrStorageUnavailable) {
			middleware.WriteJSON(w, http.StatusBadGateway, result)
			return
		}
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to apply recommendation")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// TransactionsHandler handles the transactions collection endpoints.
type TransactionsHandler struct {
	store store.TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(s store.TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store: s,
		log:   log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	transactions, err := h.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	if transactions == nil {
		transactions = []map[string]interface{}{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var record map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil || record == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t := domain.Normalize(record)
	if t.Kind == domain.KindOther {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}
	if t.IsExpense() && t.Category == "" {
		record["category"] = domain.FallbackCategory
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	id, err := h.store.InsertTransaction(ctx, userID, record)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to insert transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":     id,
		"status": "created",
	})
}

// SettingsHandler handles the per-user settings document endpoints.
type SettingsHandler struct {
	store store.SettingsStore
	log   zerolog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(s store.SettingsStore, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		store: s,
		log:   log,
	}
}

// GetSettings handles GET /api/user_settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	raw, err := h.store.GetSettings(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to read settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}

	// An absent document reads as both preferences unset.
	middleware.WriteJSON(w, http.StatusOK, domain.NormalizeSettings(userID, raw))
}

// UpdateSettings handles PUT /api/user_settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]interface{})
	for _, key := range []string{domain.FieldSpendingLimit, domain.FieldSavingsGoal} {
		v, present := body[key]
		if !present {
			continue
		}
		if v == nil {
			// Explicit null clears the preference.
			fields[key] = nil
			continue
		}
		amount := domain.OptionalAmount(v)
		if amount == nil {
			middleware.WriteError(w, http.StatusBadRequest, key+" must be a number")
			return
		}
		fields[key] = *amount
	}
	if len(fields) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	if err := h.store.UpsertSettings(ctx, userID, fields); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to update settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	raw, err := h.store.GetSettings(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to read settings after update")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, domain.NormalizeSettings(userID, raw))
}

// GoalsHandler handles the goals collection endpoints.
type GoalsHandler struct {
	store store.GoalsStore
	log   zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(s store.GoalsStore, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{
		store: s,
		log:   log,
	}
}

// ListGoals handles GET /api/goals
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	goals, err := h.store.ListGoals(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list goals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}

	if goals == nil {
		goals = []domain.Goal{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// RegionalHandler serves the public regional configuration.
type RegionalHandler struct {
	settings regional.Settings
}

// NewRegionalHandler creates a new regional config handler.
func NewRegionalHandler(settings regional.Settings) *RegionalHandler {
	return &RegionalHandler{settings: settings}
}

// GetRegionalConfig handles GET /api/config/regional
func (h *RegionalHandler) GetRegionalConfig(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.settings)
}
