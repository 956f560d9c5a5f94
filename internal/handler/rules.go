package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
	"github.com/rocjay1/finance-importer/internal/rules"
	"github.com/rocjay1/finance-importer/internal/services"
)

// HandleRules handles GET, POST, and DELETE requests for categorization rules.
func (d *Dependencies) HandleRules(w http.ResponseWriter, r *http.Request) {
	user := userID(r)

	switch r.Method {
	case http.MethodGet:
		slog.Info("fetching rules", "user_id", user)
		ruleList, err := d.Database.ListRules(r.Context(), user)
		if err != nil {
			slog.Error("failed to get rules", "user_id", user, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to get rules: "+err.Error())
			return
		}
		if ruleList == nil {
			ruleList = []models.Rule{}
		}
		slog.Info("successfully retrieved rules", "user_id", user, "count", len(ruleList))
		WriteJSON(w, http.StatusOK, ruleList)

	case http.MethodPost:
		var rule models.Rule
		if err := decodeJSON(w, r, &rule); err != nil {
			slog.Warn("invalid rule request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rule.Pattern = strings.TrimSpace(rule.Pattern)
		if rule.MatchType == "" {
			rule.MatchType = models.MatchContains
		}
		if err := rules.Validate(rule); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := d.Database.SaveRule(r.Context(), user, rule)
		if err != nil {
			slog.Error("failed to save rule", "user_id", user, "pattern", rule.Pattern, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to save rule: "+err.Error())
			return
		}

		slog.Info("successfully saved rule", "user_id", user, "id", saved.ID, "pattern", saved.Pattern)
		WriteJSON(w, http.StatusOK, saved)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing rule ID")
			return
		}

		if err := d.Database.DeleteRule(r.Context(), user, id); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "Rule not found")
				return
			}
			slog.Error("failed to delete rule", "user_id", user, "id", id, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to delete rule: "+err.Error())
			return
		}

		slog.Info("successfully deleted rule", "user_id", user, "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type applyRulesRequest struct {
	Source string `json:"source"`
}

// HandleApplyRules returns the caller's first rule matching source, or null.
func (d *Dependencies) HandleApplyRules(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req applyRulesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := userID(r)
	ruleList, err := d.Database.ListRules(r.Context(), user)
	if err != nil {
		slog.Error("failed to get rules", "user_id", user, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to get rules: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, rules.Apply(ruleList, req.Source))
}
