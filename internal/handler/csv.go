package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/finance-importer/internal/csvparse"
	"github.com/rocjay1/finance-importer/internal/models"
)

type csvDetectResponse struct {
	FileName string               `json:"fileName"`
	Headers  []string             `json:"headers"`
	Mapping  models.ColumnMapping `json:"mapping"`
	Rows     []map[string]string  `json:"rows"`
}

// HandleDetectCSV reads an uploaded CSV and returns its rows with an
// auto-detected column mapping for the caller to review.
func (d *Dependencies) HandleDetectCSV(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	fileName, content, ok := readFormFile(w, r)
	if !ok {
		return
	}

	table, err := csvparse.ReadTable(content)
	if err != nil {
		slog.Warn("failed to read csv", "filename", fileName, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid CSV: "+err.Error())
		return
	}

	mapper := csvparse.NewMapper(table.Headers)
	slog.Info("detected csv columns", "filename", fileName, "headers", len(table.Headers), "rows", len(table.Rows))
	WriteJSON(w, http.StatusOK, csvDetectResponse{
		FileName: fileName,
		Headers:  table.Headers,
		Mapping:  mapper.Mapping(),
		Rows:     table.Rows,
	})
}

type csvNormalizeRequest struct {
	Headers []string             `json:"headers"`
	Rows    []map[string]string  `json:"rows"`
	Mapping models.ColumnMapping `json:"mapping"`
}

// HandleNormalizeCSV turns rows into candidates using the caller's mapping.
// Without a mapping the columns are auto-detected.
func (d *Dependencies) HandleNormalizeCSV(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req csvNormalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Warn("invalid csv normalize request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var mapper *csvparse.Mapper
	if req.Mapping == nil {
		mapper = csvparse.NewMapper(req.Headers)
	} else {
		var err error
		mapper, err = csvparse.NewMapperWithMapping(req.Headers, req.Mapping)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	cands := mapper.Normalize(req.Rows)
	slog.Info("normalized csv rows", "user_id", userID(r), "rows", len(req.Rows), "candidates", len(cands))
	WriteJSON(w, http.StatusOK, candidatesResponse{Count: len(cands), Candidates: cands})
}
