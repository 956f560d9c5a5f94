package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/rocjay1/finance-importer/internal/broker"
)

type quoteRefreshResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
	Missing int `json:"missing"`
}

// HandleQuoteRefresh processes the timer trigger that refreshes holding prices.
// A holding whose update fails is counted and the rest continue.
func (d *Dependencies) HandleQuoteRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("starting quote refresh")

	if d.Quotes == nil {
		slog.Warn("QUOTE_API_URL is not set; skipping quote refresh")
		WriteJSON(w, http.StatusOK, invokeResponse{})
		return
	}

	holdings, err := d.Database.ListAllHoldings(ctx)
	if err != nil {
		slog.Error("failed to list holdings", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}

	var symbols []string
	for _, h := range holdings {
		if sym := broker.CleanSymbol(h.Symbol); sym != "" && !slices.Contains(symbols, sym) {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		slog.Info("no holdings to refresh")
		WriteJSON(w, http.StatusOK, invokeResponse{ReturnValue: quoteRefreshResult{}})
		return
	}

	prices, err := d.Quotes.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("failed to fetch quotes", "symbols", len(symbols), "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to fetch quotes")
		return
	}

	var result quoteRefreshResult
	for _, h := range holdings {
		price, ok := prices[broker.CleanSymbol(h.Symbol)]
		if !ok {
			result.Missing++
			continue
		}
		if err := d.Database.UpdateHoldingPrice(ctx, h.UserID, h.ID, price); err != nil {
			slog.Error("failed to update holding price", "holding_id", h.ID, "symbol", h.Symbol, "error", err)
			result.Failed++
			continue
		}
		result.Updated++
	}

	slog.Info("quote refresh complete", "updated", result.Updated, "failed", result.Failed, "missing", result.Missing)
	WriteJSON(w, http.StatusOK, invokeResponse{ReturnValue: result})
}
