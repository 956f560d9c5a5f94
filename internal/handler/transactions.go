package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/finance-importer/internal/importer"
	"github.com/rocjay1/finance-importer/internal/models"
)

type importTransactionsRequest struct {
	Candidates []models.Candidate `json:"candidates"`
	SkipRules  bool               `json:"skipRules"`
}

// HandleImportTransactions persists reviewed candidates and reports the tally.
func (d *Dependencies) HandleImportTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req importTransactionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Warn("invalid import request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := userID(r)
	var ruleList []models.Rule
	if !req.SkipRules {
		var err error
		ruleList, err = d.Database.ListRules(r.Context(), user)
		if err != nil {
			slog.Error("failed to load rules", "user_id", user, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to load rules: "+err.Error())
			return
		}
	}

	summary, err := importer.Run(r.Context(), userStore{db: d.Database, userID: user}, ruleList, req.Candidates)
	if err != nil {
		slog.Warn("import interrupted", "user_id", user, "error", err)
	}
	WriteJSON(w, http.StatusOK, summary)
}

// HandleListTransactions returns the caller's transactions for ?month=YYYY-MM.
func (d *Dependencies) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		WriteError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	user := userID(r)
	txs, err := d.Database.ListTransactions(r.Context(), user, month)
	if err != nil {
		slog.Error("failed to list transactions", "user_id", user, "month", month, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list transactions: "+err.Error())
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	WriteJSON(w, http.StatusOK, txs)
}
