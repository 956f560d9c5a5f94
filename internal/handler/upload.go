package handler

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
)

// readFormFile reads the "file" part of a multipart form (10MB limit).
// On failure it writes the error response and returns ok=false.
func readFormFile(w http.ResponseWriter, r *http.Request) (name, content string, ok bool) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", 10)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return "", "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return "", "", false
	}

	name = filepath.Base(header.Filename)
	slog.Info("received file upload", "filename", name, "size_bytes", len(data))
	return name, string(data), true
}

// uploadKind resolves the form's kind, falling back to the file extension.
func uploadKind(raw, fileName string) (models.UploadKind, bool) {
	if raw != "" {
		k := models.UploadKind(strings.ToLower(raw))
		return k, k.Valid()
	}
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return models.UploadCSV, true
	}
	return models.UploadSMS, true
}

// HandleUpload stores a CSV or SMS export and queues it for background import.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	fileName, content, ok := readFormFile(w, r)
	if !ok {
		return
	}

	kind, ok := uploadKind(r.FormValue("kind"), fileName)
	if !ok {
		WriteError(w, http.StatusBadRequest, "kind must be csv or sms")
		return
	}

	user := userID(r)
	blobName, err := d.Blob.SaveUpload(r.Context(), user, fileName, content)
	if err != nil {
		slog.Error("failed to upload blob", "filename", fileName, "user_id", user, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}

	job := models.ImportJob{
		UserID:   user,
		BlobName: blobName,
		FileName: fileName,
		Kind:     kind,
	}
	if err := d.Queue.EnqueueImport(r.Context(), job); err != nil {
		slog.Error("failed to enqueue import", "filename", fileName, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	slog.Info("queued upload for import", "filename", fileName, "blob_name", blobName, "kind", kind)

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"blobName": blobName,
		"kind":     string(kind),
	})
}
