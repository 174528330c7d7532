package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastosmart/backend/internal/auth"
	"github.com/gastosmart/backend/internal/recommend"
	"github.com/gastosmart/backend/internal/regional"
	"github.com/gastosmart/backend/internal/store/memory"
)

var routerSecret = []byte("router-test-secret")

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	mem := memory.New()
	engine := recommend.New(mem, mem, mem, recommend.Options{})
	router := NewRouter(Deps{
		Engine:         engine,
		Transactions:   mem,
		Settings:       mem,
		Goals:          mem,
		Regional:       regional.Default(),
		Secret:         routerSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
		Log:            zerolog.Nop(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, mem
}

func authedRequest(t *testing.T, method, url, userID string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)

	token, err := auth.GenerateToken(routerSecret, userID, auth.DefaultTokenTTL)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func doJSON(t *testing.T, req *http.Request, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRegionalConfigIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/config/regional")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Country  string `json:"country"`
		Currency struct {
			Code   string `json:"code"`
			Symbol string `json:"symbol"`
		} `json:"currency"`
		ExpenseCategories []string `json:"expense_categories"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Colombia", body.Country)
	assert.Equal(t, "COP", body.Currency.Code)
	assert.NotEmpty(t, body.ExpenseCategories)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/recommendations"},
		{http.MethodPost, "/api/recommendations/apply"},
		{http.MethodGet, "/api/transactions"},
		{http.MethodGet, "/api/user_settings"},
		{http.MethodGet, "/api/goals"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			req, err := http.NewRequest(p.method, srv.URL+p.path, nil)
			require.NoError(t, err)

			var body map[string]string
			resp := doJSON(t, req, &body)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Usuario no autenticado", body["error"])
		})
	}
}

func TestRecommendationsEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)

	// Seed a month of movements through the API itself.
	seed := []map[string]interface{}{
		{"type": "ingreso", "amount": 2500000, "description": "Salario"},
		{"type": "gasto", "amount": 900000, "category": "Arriendo"},
		{"type": "gasto", "amount": 15900, "category": "Ocio", "merchant": "Netflix"},
		{"type": "gasto", "amount": 15900, "category": "Ocio", "merchant": "netflix"},
		{"type": "gasto", "amount": 15900, "category": "Ocio", "merchant": "NETFLIX"},
	}
	for _, rec := range seed {
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/transactions", "u1", rec), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var body struct {
		Recommendations []struct {
			Type  string   `json:"type"`
			Title string   `json:"title"`
			Score *float64 `json:"score"`
		} `json:"recommendations"`
	}
	resp := doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/recommendations", "u1", nil), &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Recommendations)

	types := make(map[string]int)
	for i, rec := range body.Recommendations {
		types[rec.Type]++
		if i > 0 {
			prev, cur := body.Recommendations[i-1].Score, rec.Score
			if prev != nil && cur != nil {
				assert.GreaterOrEqual(t, *prev, *cur, "scores must be non-increasing")
			}
		}
	}
	assert.Equal(t, 1, types["possible_subscription"], "three netflix charges are one subscription")
	assert.Equal(t, 1, types["reduce_category"], "rent dominates spending")
	assert.Zero(t, types["no_data"])

	// Another user sees only the empty-history advice.
	var other struct {
		Recommendations []struct {
			Type string `json:"type"`
		} `json:"recommendations"`
	}
	resp = doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/recommendations", "u2", nil), &other)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, other.Recommendations)
	assert.Equal(t, "no_data", other.Recommendations[0].Type)
}

func TestApplyRecommendationEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)

	t.Run("unconfirmed", func(t *testing.T) {
		var body map[string]interface{}
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/recommendations/apply", "u1",
			map[string]interface{}{"rec_type": "suggest_goal", "confirm": false}), &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Acción no confirmada por el usuario.", body["detail"])
	})

	t.Run("creates a goal", func(t *testing.T) {
		var body map[string]interface{}
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/recommendations/apply", "u1",
			map[string]interface{}{
				"rec_type": "suggest_goal",
				"metadata": map[string]interface{}{"amount": 80000, "name": "Emergencias"},
				"confirm":  true,
			}), &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["detail"], "Meta creada con id")

		var goalsBody struct {
			Goals []struct {
				Name         string  `json:"name"`
				TargetAmount float64 `json:"target_amount"`
				Source       string  `json:"source"`
			} `json:"goals"`
			Count int `json:"count"`
		}
		resp = doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/goals", "u1", nil), &goalsBody)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 1, goalsBody.Count)
		assert.Equal(t, "Emergencias", goalsBody.Goals[0].Name)
		assert.Equal(t, 80000.0, goalsBody.Goals[0].TargetAmount)
		assert.Equal(t, "recommendation", goalsBody.Goals[0].Source)
	})

	t.Run("records an acknowledgement", func(t *testing.T) {
		var body map[string]interface{}
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/recommendations/apply", "u1",
			map[string]interface{}{
				"rec_type": "reduce_category",
				"metadata": map[string]interface{}{"category": "Arriendo"},
				"confirm":  true,
			}), &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Acción registrada en user_settings", body["detail"])

		raw, err := mem.GetSettings(context.Background(), "u1")
		require.NoError(t, err)
		actions, ok := raw["recommendation_actions"].([]interface{})
		require.True(t, ok, "settings doc should hold the action log, got %#v", raw)
		assert.Len(t, actions, 1)
	})

	t.Run("missing rec_type", func(t *testing.T) {
		var body map[string]string
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/recommendations/apply", "u1",
			map[string]interface{}{"confirm": true}), &body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "rec_type is required", body["error"])
	})
}

func TestTransactionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("rejects unknown type", func(t *testing.T) {
		var body map[string]string
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/transactions", "u1",
			map[string]interface{}{"type": "transferencia", "amount": 1000}), &body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid transaction type", body["error"])
	})

	t.Run("applies the category fallback", func(t *testing.T) {
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/transactions", "u1",
			map[string]interface{}{"type": "gasto", "amount": 5000}), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			Transactions []map[string]interface{} `json:"transactions"`
			Count        int                      `json:"count"`
		}
		resp = doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/transactions", "u1", nil), &body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, "Sin categoría", body.Transactions[0]["category"])
	})

	t.Run("users are isolated", func(t *testing.T) {
		var body struct {
			Count int `json:"count"`
		}
		resp := doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/transactions", "someone-else", nil), &body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Zero(t, body.Count)
	})

	t.Run("rejects a bad limit", func(t *testing.T) {
		resp := doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/transactions?limit=abc", "u1", nil), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSettingsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("absent settings read as unset", func(t *testing.T) {
		var body struct {
			UserID        string   `json:"user_id"`
			SpendingLimit *float64 `json:"limite_gastos"`
			SavingsGoal   *float64 `json:"meta_ahorro"`
		}
		resp := doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/user_settings", "u1", nil), &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "u1", body.UserID)
		assert.Nil(t, body.SpendingLimit)
		assert.Nil(t, body.SavingsGoal)
	})

	t.Run("put then get round-trips", func(t *testing.T) {
		var body struct {
			SpendingLimit *float64 `json:"limite_gastos"`
			SavingsGoal   *float64 `json:"meta_ahorro"`
		}
		resp := doJSON(t, authedRequest(t, http.MethodPut, srv.URL+"/api/user_settings", "u1",
			map[string]interface{}{"limite_gastos": 300000, "meta_ahorro": "150,000"}), &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, body.SpendingLimit)
		require.NotNil(t, body.SavingsGoal)
		assert.Equal(t, 300000.0, *body.SpendingLimit)
		assert.Equal(t, 150000.0, *body.SavingsGoal)
	})

	t.Run("null clears a preference", func(t *testing.T) {
		var body struct {
			SpendingLimit *float64 `json:"limite_gastos"`
			SavingsGoal   *float64 `json:"meta_ahorro"`
		}
		resp := doJSON(t, authedRequest(t, http.MethodPut, srv.URL+"/api/user_settings", "u1",
			map[string]interface{}{"limite_gastos": nil}), &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Nil(t, body.SpendingLimit)
		require.NotNil(t, body.SavingsGoal)
		assert.Equal(t, 150000.0, *body.SavingsGoal)
	})

	t.Run("rejects garbage values", func(t *testing.T) {
		var body map[string]string
		resp := doJSON(t, authedRequest(t, http.MethodPut, srv.URL+"/api/user_settings", "u1",
			map[string]interface{}{"limite_gastos": "mucho"}), &body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "limite_gastos must be a number", body["error"])
	})
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, authedRequest(t, http.MethodDelete, srv.URL+"/api/recommendations", "u1", nil), nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSpendingLimitDrivesRecommendations(t *testing.T) {
	srv, _ := newTestServer(t)
	user := "limit-user"

	for _, rec := range []map[string]interface{}{
		{"type": "ingreso", "amount": 1000000},
		{"type": "gasto", "amount": 400000, "category": "Mercado"},
	} {
		resp := doJSON(t, authedRequest(t, http.MethodPost, srv.URL+"/api/transactions", user, rec), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp := doJSON(t, authedRequest(t, http.MethodPut, srv.URL+"/api/user_settings", user,
		map[string]interface{}{"limite_gastos": 300000}), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Recommendations []struct {
			Type   string `json:"type"`
			Detail string `json:"detail"`
		} `json:"recommendations"`
	}
	resp = doJSON(t, authedRequest(t, http.MethodGet, srv.URL+"/api/recommendations", user, nil), &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	found := false
	for _, rec := range body.Recommendations {
		if rec.Type == "over_limit" {
			found = true
			assert.Contains(t, rec.Detail, "400000")
			assert.Contains(t, rec.Detail, "300000")
		}
	}
	assert.True(t, found, fmt.Sprintf("over_limit missing in %+v", body.Recommendations))
}
