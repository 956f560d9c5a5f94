package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/finance-importer/internal/csvparse"
	"github.com/rocjay1/finance-importer/internal/importer"
	"github.com/rocjay1/finance-importer/internal/models"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// invokeResponse is the custom handler reply for non-HTTP triggers.
type invokeResponse struct {
	Outputs     map[string]any `json:"Outputs,omitempty"`
	Logs        []string       `json:"Logs,omitempty"`
	ReturnValue any            `json:"ReturnValue,omitempty"`
}

// decodeQueueItem extracts the ImportJob from a queue trigger payload. The
// host sends the item either as a JSON string or as an already decoded object.
func decodeQueueItem(body []byte) (models.ImportJob, error) {
	var job models.ImportJob

	var invokeReq invokeRequest
	if err := json.Unmarshal(body, &invokeReq); err != nil {
		return job, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	item, ok := invokeReq.Data["queueItem"]
	if !ok {
		item, ok = invokeReq.Data["queueitem"]
	}
	if !ok {
		return job, errors.New("missing queueItem in Data")
	}

	var raw []byte
	switch v := item.(type) {
	case string:
		raw = []byte(v)
	case map[string]any:
		raw, _ = json.Marshal(v)
	default:
		return job, errors.New("queueItem is neither a string nor an object")
	}

	if err := json.Unmarshal(raw, &job); err != nil {
		return job, fmt.Errorf("invalid queueItem JSON: %w", err)
	}
	if job.BlobName == "" {
		return job, errors.New("missing blobName")
	}
	if job.UserID == "" {
		job.UserID = defaultUserID
	}
	if job.Kind == "" {
		job.Kind, _ = uploadKind("", job.FileName)
	}
	if !job.Kind.Valid() {
		return job, fmt.Errorf("unsupported kind %q", job.Kind)
	}
	return job, nil
}

// ProcessQueue handles the queue trigger for uploaded files: it parses the
// stored upload, imports the candidates and emails a summary.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	job, err := decodeQueueItem(bodyBytes)
	if err != nil {
		slog.Warn("invalid queue message", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	slog.Info("processing queue item", "blob_name", job.BlobName, "kind", job.Kind, "user_id", job.UserID)

	content, err := d.Blob.ReadUpload(ctx, job.BlobName)
	if err != nil {
		slog.Error("failed to download upload", "blob_name", job.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download upload: %v", err))
		return
	}

	cands, reason := d.candidatesFor(job, content)
	slog.Info("parsed upload", "blob_name", job.BlobName, "candidates", len(cands))

	if len(cands) == 0 {
		// Consume the message so it doesn't retry forever.
		slog.Warn("no transactions found in upload", "blob_name", job.BlobName, "reason", reason)
		d.notifyFailure(ctx, job.FileName, []string{reason})
		d.cleanup(ctx, job.BlobName)
		WriteJSON(w, http.StatusOK, invokeResponse{ReturnValue: models.ImportSummary{}})
		return
	}

	ruleList, err := d.Database.ListRules(ctx, job.UserID)
	if err != nil {
		slog.Error("failed to load rules; importing without them", "user_id", job.UserID, "error", err)
		ruleList = nil
	}

	summary, err := importer.Run(ctx, userStore{db: d.Database, userID: job.UserID}, ruleList, cands)
	if err != nil {
		slog.Error("import interrupted", "blob_name", job.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Import interrupted: %v", err))
		return
	}

	d.notifySummary(ctx, job.FileName, summary)
	d.cleanup(ctx, job.BlobName)

	slog.Info("queue processing complete", "blob_name", job.BlobName, "success", summary.Success, "failed", summary.Failed)
	WriteJSON(w, http.StatusOK, invokeResponse{ReturnValue: summary})
}

// candidatesFor parses an upload. When nothing is found it also returns a
// human-readable reason.
func (d *Dependencies) candidatesFor(job models.ImportJob, content string) ([]models.Candidate, string) {
	switch job.Kind {
	case models.UploadCSV:
		table, err := csvparse.ReadTable(content)
		if err != nil {
			return nil, err.Error()
		}
		cands := csvparse.NewMapper(table.Headers).Normalize(table.Rows)
		if len(cands) == 0 {
			return nil, "no rows with a positive amount were found"
		}
		return cands, ""
	default:
		cands := d.parser().ParseBulk(content)
		if len(cands) == 0 {
			return nil, "no transaction messages were recognized"
		}
		return cands, ""
	}
}

func (d *Dependencies) notifySummary(ctx context.Context, fileName string, summary models.ImportSummary) {
	if d.Email == nil || d.NotifyEmail == "" {
		slog.Warn("email notifications not configured; skipping import summary")
		return
	}
	if err := d.Email.SendImportSummary(ctx, []string{d.NotifyEmail}, fileName, summary); err != nil {
		slog.Error("failed to send import summary email", "email", d.NotifyEmail, "error", err)
	}
}

func (d *Dependencies) notifyFailure(ctx context.Context, fileName string, reasons []string) {
	if d.Email == nil || d.NotifyEmail == "" {
		return
	}
	if err := d.Email.SendImportFailure(ctx, []string{d.NotifyEmail}, fileName, reasons); err != nil {
		slog.Error("failed to send import failure email", "email", d.NotifyEmail, "error", err)
	}
}

func (d *Dependencies) cleanup(ctx context.Context, blobName string) {
	if err := d.Blob.DeleteUpload(ctx, blobName); err != nil {
		slog.Warn("failed to delete processed upload", "blob_name", blobName, "error", err)
	}
}
