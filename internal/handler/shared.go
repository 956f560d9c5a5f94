package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
	"github.com/rocjay1/finance-importer/internal/smsparse"
)

const (
	userHeader    = "X-User-ID"
	defaultUserID = "default"
	maxBodyBytes  = 10 << 20
)

// Dependencies holds the services required by the handlers.
// Email and Quotes are optional.
type Dependencies struct {
	Database DatabaseClient
	Blob     BlobClient
	Queue    QueueClient
	Email    EmailClient
	Quotes   QuoteClient
	Parser   *smsparse.Parser

	// NotifyEmail receives summaries of queued imports.
	NotifyEmail string
}

func (d *Dependencies) parser() *smsparse.Parser {
	if d.Parser != nil {
		return d.Parser
	}
	return smsparse.New()
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// userID returns the caller named by the X-User-ID header.
func userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(userHeader)); id != "" {
		return id
	}
	return defaultUserID
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// requireMethod writes 405 and returns false when r.Method is not method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	slog.Warn("request with invalid method", "method", r.Method, "path", r.URL.Path)
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// userStore binds a DatabaseClient to one user for the import loops.
type userStore struct {
	db     DatabaseClient
	userID string
}

func (s userStore) AddTransaction(ctx context.Context, tx models.Transaction) (string, error) {
	return s.db.AddTransaction(ctx, s.userID, tx)
}

func (s userStore) AddHolding(ctx context.Context, h models.Holding) (string, error) {
	return s.db.AddHolding(ctx, s.userID, h)
}

func (s userStore) MergeHolding(ctx context.Context, existingID string, h models.Holding) error {
	return s.db.MergeHolding(ctx, s.userID, existingID, h)
}

// HandleHealth reports liveness.
func (d *Dependencies) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
