package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
	"github.com/rocjay1/finance-importer/internal/smsparse"
)

type smsParseRequest struct {
	Text     string             `json:"text"`
	Messages []smsparse.Message `json:"messages"`
}

type candidatesResponse struct {
	Count      int                `json:"count"`
	Candidates []models.Candidate `json:"candidates"`
}

// HandleParseSMS parses pasted bank messages into transaction candidates.
// A "messages" list is parsed item by item, a "text" blob is split first.
func (d *Dependencies) HandleParseSMS(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req smsParseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Warn("invalid sms parse request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var cands []models.Candidate
	switch {
	case len(req.Messages) > 0:
		cands = d.parser().ParseMultiple(req.Messages)
	case strings.TrimSpace(req.Text) != "":
		cands = d.parser().ParseBulk(req.Text)
	default:
		WriteError(w, http.StatusBadRequest, "Either text or messages is required")
		return
	}

	if cands == nil {
		cands = []models.Candidate{}
	}
	slog.Info("parsed sms messages", "user_id", userID(r), "candidates", len(cands))
	WriteJSON(w, http.StatusOK, candidatesResponse{Count: len(cands), Candidates: cands})
}
