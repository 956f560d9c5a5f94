package main

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/finance-importer/internal/handler"
)

func newMux(deps *handler.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sms/parse", deps.HandleParseSMS)

	mux.HandleFunc("POST /api/csv/detect", deps.HandleDetectCSV)
	mux.HandleFunc("POST /api/csv/normalize", deps.HandleNormalizeCSV)

	mux.HandleFunc("GET /api/transactions", deps.HandleListTransactions)
	mux.HandleFunc("POST /api/transactions/import", deps.HandleImportTransactions)

	mux.HandleFunc("GET /api/rules", deps.HandleRules)
	mux.HandleFunc("POST /api/rules", deps.HandleRules)
	mux.HandleFunc("DELETE /api/rules", deps.HandleRules)
	mux.HandleFunc("POST /api/rules/apply", deps.HandleApplyRules)

	mux.HandleFunc("GET /api/holdings", deps.HandleHoldings)
	mux.HandleFunc("POST /api/broker/preview", deps.HandleBrokerPreview)
	mux.HandleFunc("POST /api/broker/import", deps.HandleBrokerImport)

	mux.HandleFunc("POST /api/upload", deps.HandleUpload)
	mux.HandleFunc("GET /api/health", deps.HandleHealth)

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", deps.HandleHttpTrigger(mux))

	// Trigger paths accept any method; the host always POSTs.
	mux.HandleFunc("/ProcessQueue", deps.ProcessQueue)
	mux.HandleFunc("/QuoteRefresh", deps.HandleQuoteRefresh)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("unmatched request", "method", r.Method, "path", r.URL.Path)
		http.NotFound(w, r)
	})

	return mux
}
