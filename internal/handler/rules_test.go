package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocjay1/finance-importer/internal/models"
	"github.com/rocjay1/finance-importer/internal/services"
)

func TestHandleRules_Get(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	mockDb.ListRulesFunc = func(ctx context.Context, userID string) ([]models.Rule, error) {
		assert.Equal(t, "alice", userID)
		return []models.Rule{{ID: "r1", Pattern: "swiggy", MatchType: models.MatchContains, Type: models.TypeExpense, Category: models.CategoryFood, Position: 1}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
	req.Header.Set("X-User-ID", "alice")
	w := httptest.NewRecorder()

	deps.HandleRules(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []models.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestHandleRules_GetEmpty(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{}}
	w := httptest.NewRecorder()

	deps.HandleRules(w, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandleRules_Post(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	mockDb.SaveRuleFunc = func(ctx context.Context, userID string, rule models.Rule) (models.Rule, error) {
		assert.Equal(t, "default", userID)
		assert.Equal(t, "uber", rule.Pattern)
		assert.Equal(t, models.MatchContains, rule.MatchType)
		rule.ID = "new-id"
		return rule, nil
	}

	body := `{"pattern":"  uber ","type":"expense","category":"Transport"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	deps.HandleRules(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "new-id", got.ID)
}

func TestHandleRules_PostInvalid(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{}}

	for _, body := range []string{`{`, `{"pattern":"","type":"expense","category":"Food"}`, `{"pattern":"x","type":"gift","category":"Food"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		deps.HandleRules(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestHandleRules_Delete(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	mockDb.DeleteRuleFunc = func(ctx context.Context, userID, id string) error {
		switch id {
		case "r1":
			return nil
		case "missing":
			return services.ErrNotFound
		}
		return errors.New("db error")
	}

	cases := map[string]int{
		"/api/rules?id=r1":      http.StatusOK,
		"/api/rules?id=missing": http.StatusNotFound,
		"/api/rules?id=boom":    http.StatusInternalServerError,
		"/api/rules":            http.StatusBadRequest,
	}
	for target, want := range cases {
		w := httptest.NewRecorder()
		deps.HandleRules(w, httptest.NewRequest(http.MethodDelete, target, nil))
		assert.Equal(t, want, w.Code, target)
	}
}

func TestHandleRules_MethodNotAllowed(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{}}
	w := httptest.NewRecorder()

	deps.HandleRules(w, httptest.NewRequest(http.MethodPut, "/api/rules", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleApplyRules(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{
		ListRulesFunc: func(ctx context.Context, userID string) ([]models.Rule, error) {
			return []models.Rule{
				{ID: "r1", Pattern: "swiggy", MatchType: models.MatchContains, Type: models.TypeExpense, Category: models.CategoryFood},
				{ID: "r2", Pattern: "swig", MatchType: models.MatchContains, Type: models.TypeIncome, Category: models.CategoryOther},
			}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/rules/apply", bytes.NewBufferString(`{"source":"Swiggy Order"}`))
	w := httptest.NewRecorder()
	deps.HandleApplyRules(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var match models.RuleMatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &match))
	assert.Equal(t, models.RuleMatch{Type: models.TypeExpense, Category: models.CategoryFood, MatchedRuleID: "r1"}, match)

	req = httptest.NewRequest(http.MethodPost, "/api/rules/apply", bytes.NewBufferString(`{"source":"Amazon"}`))
	w = httptest.NewRecorder()
	deps.HandleApplyRules(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", string(bytes.TrimSpace(w.Body.Bytes())))
}
