package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/handler"
	"github.com/rocjay1/finance-importer/internal/services"
	"github.com/rocjay1/finance-importer/internal/smsparse"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	dbService, err := services.NewDatabaseService()
	if err != nil {
		slog.Error("failed to init DatabaseService", "error", err)
		os.Exit(1)
	}

	blobService, err := services.NewBlobService()
	if err != nil {
		slog.Error("failed to init BlobService", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService()
	if err != nil {
		slog.Error("failed to init QueueService", "error", err)
		os.Exit(1)
	}

	parser, err := newParser(os.Getenv("CATEGORY_KEYWORDS_FILE"))
	if err != nil {
		slog.Error("failed to load category keywords", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Database:    dbService,
		Blob:        blobService,
		Queue:       queueService,
		Parser:      parser,
		NotifyEmail: os.Getenv("USER_EMAIL"),
	}

	if emailService, err := services.NewEmailService(nil); err != nil {
		slog.Warn("email notifications disabled", "error", err)
	} else {
		deps.Email = emailService
	}

	if quoteService, err := services.NewQuoteService(); err != nil {
		slog.Warn("quote refresh disabled", "error", err)
	} else {
		deps.Quotes = quoteService
	}

	port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           loggingMiddleware(newMux(deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newParser returns the SMS parser, with keywords overridden from path when set.
func newParser(path string) (*smsparse.Parser, error) {
	p := smsparse.New()
	if path == "" {
		return p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords file: %w", err)
	}
	defer f.Close()

	table, err := smsparse.LoadKeywords(f)
	if err != nil {
		return nil, err
	}
	p.Keywords = table
	slog.Info("loaded category keywords", "path", path)
	return p, nil
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
			"content_length", r.ContentLength,
		)
	})
}
