package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/finance-importer/internal/broker"
	"github.com/rocjay1/finance-importer/internal/csvparse"
	"github.com/rocjay1/finance-importer/internal/models"
)

type brokerPreviewResponse struct {
	Kind       broker.Kind               `json:"kind"`
	Mapping    models.ColumnMapping      `json:"mapping"`
	Count      int                       `json:"count"`
	Duplicates int                       `json:"duplicates"`
	Candidates []models.HoldingCandidate `json:"candidates"`
}

// HandleBrokerPreview maps an uploaded broker export and flags rows that
// match the caller's existing holdings.
func (d *Dependencies) HandleBrokerPreview(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	fileName, content, ok := readFormFile(w, r)
	if !ok {
		return
	}

	table, err := csvparse.ReadTable(content)
	if err != nil {
		slog.Warn("failed to read broker csv", "filename", fileName, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid CSV: "+err.Error())
		return
	}

	kind := broker.Kind(r.FormValue("kind"))
	if kind == broker.KindUnknown {
		kind = broker.DetectKind(table.Headers)
	}
	if kind != broker.KindHoldings && kind != broker.KindTradebook {
		WriteError(w, http.StatusBadRequest, "Unrecognized broker report")
		return
	}

	user := userID(r)
	existing, err := d.Database.ListHoldings(r.Context(), user)
	if err != nil {
		slog.Error("failed to list holdings", "user_id", user, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list holdings: "+err.Error())
		return
	}

	mapping := broker.MapHeaders(kind, table.Headers)
	cands := broker.MarkDuplicates(broker.MapRows(kind, mapping, table.Rows), existing)

	dups := 0
	for _, c := range cands {
		if c.Duplicate {
			dups++
		}
	}

	slog.Info("previewed broker statement", "user_id", user, "kind", kind, "rows", len(cands), "duplicates", dups)
	WriteJSON(w, http.StatusOK, brokerPreviewResponse{
		Kind:       kind,
		Mapping:    mapping,
		Count:      len(cands),
		Duplicates: dups,
		Candidates: cands,
	})
}

type brokerImportRequest struct {
	Candidates []models.HoldingCandidate `json:"candidates"`
}

// HandleBrokerImport adds or merges the selected holding candidates.
func (d *Dependencies) HandleBrokerImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req brokerImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Warn("invalid broker import request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := userID(r)
	summary, err := broker.Import(r.Context(), userStore{db: d.Database, userID: user}, req.Candidates)
	if err != nil {
		slog.Warn("broker import interrupted", "user_id", user, "error", err)
	}

	slog.Info("broker import finished", "user_id", user, "success", summary.Success, "failed", summary.Failed, "skipped", summary.Skipped)
	WriteJSON(w, http.StatusOK, brokerImportResponse(summary))
}

// brokerImportResponse always reports skipped, even when zero.
func brokerImportResponse(s models.ImportSummary) map[string]int {
	return map[string]int{"success": s.Success, "failed": s.Failed, "skipped": s.Skipped}
}

// HandleHoldings lists the caller's holdings.
func (d *Dependencies) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	user := userID(r)
	holdings, err := d.Database.ListHoldings(r.Context(), user)
	if err != nil {
		slog.Error("failed to list holdings", "user_id", user, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list holdings: "+err.Error())
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	WriteJSON(w, http.StatusOK, holdings)
}
