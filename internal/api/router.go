// Package api assembles the HTTP surface: route registration, method
// dispatch and the middleware chain.
package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gastosmart/backend/internal/api/handlers"
	"github.com/gastosmart/backend/internal/api/middleware"
	"github.com/gastosmart/backend/internal/recommend"
	"github.com/gastosmart/backend/internal/regional"
	"github.com/gastosmart/backend/internal/store"
)

// PublicPaths are reachable without a bearer token.
var PublicPaths = []string{"/health", "/api/config/regional"}

// Deps carries everything the router wires together.
type Deps struct {
	Engine         *recommend.Engine
	Transactions   store.TransactionStore
	Settings       store.SettingsStore
	Goals          store.GoalsStore
	Regional       regional.Settings
	Secret         []byte
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds the routed handler wrapped in the middleware chain.
func NewRouter(d Deps) http.Handler {
	recommendationsHandler := handlers.NewRecommendationsHandler(d.Engine, d.Log)
	transactionsHandler := handlers.NewTransactionsHandler(d.Transactions, d.Log)
	settingsHandler := handlers.NewSettingsHandler(d.Settings, d.Log)
	goalsHandler := handlers.NewGoalsHandler(d.Goals, d.Log)
	regionalHandler := handlers.NewRegionalHandler(d.Regional)

	mux := http.NewServeMux()

	// Recommendations endpoints
	mux.HandleFunc("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			recommendationsHandler.GetRecommendations(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recommendations/apply", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			recommendationsHandler.ApplyRecommendation(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.ListTransactions(w, r)
		case http.MethodPost:
			transactionsHandler.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Settings endpoints
	mux.HandleFunc("/api/user_settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settingsHandler.GetSettings(w, r)
		case http.MethodPut:
			settingsHandler.UpdateSettings(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Goals endpoints
	mux.HandleFunc("/api/goals", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			goalsHandler.ListGoals(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Public configuration
	mux.HandleFunc("/api/config/regional", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			regionalHandler.GetRegionalConfig(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	return middleware.Recovery(d.Log)(
		middleware.Logger(d.Log)(
			middleware.RequestID(d.Log)(
				middleware.CORS(d.AllowedOrigins)(
					middleware.Auth(d.Secret, PublicPaths...)(mux),
				),
			),
		),
	)
}
