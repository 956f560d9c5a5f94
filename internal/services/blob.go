package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"
)

// BlobService stores raw uploads in Azure Blob Storage.
type BlobService struct {
	client    *azblob.Client
	container string
}

// NewBlobService creates a new BlobService instance.
func NewBlobService() (*BlobService, error) {
	blobURL := os.Getenv("BLOB_SERVICE_URL")
	if blobURL == "" {
		return nil, fmt.Errorf("BLOB_SERVICE_URL environment variable is required")
	}
	container := envOr("UPLOADS_CONTAINER", "uploads")

	slog.Info("initializing blob service", "blob_url", blobURL, "container", container)
	var client *azblob.Client

	if isLocal(blobURL) {
		slog.Info("using Azurite shared key credentials for blob service")
		name, key := getAzuriteCredentials()
		cred, err := azblob.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	slog.Info("blob service initialized successfully")
	return &BlobService{client: client, container: container}, nil
}

// UploadBlobName builds the blob name for a user's upload.
func UploadBlobName(userID, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", userID, uuid.NewString(), base)
}

// SaveUpload stores content under a fresh blob name and returns it.
func (s *BlobService) SaveUpload(ctx context.Context, userID, fileName, content string) (string, error) {
	blobName := UploadBlobName(userID, fileName)
	slog.Info("uploading blob", "container", s.container, "blob_name", blobName, "size_bytes", len(content))

	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !hasErrorCode(err, "ContainerAlreadyExists") {
		slog.Warn("failed to create container", "container", s.container, "error", err)
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, []byte(content), nil); err != nil {
		slog.Error("failed to upload blob", "container", s.container, "blob_name", blobName, "error", err)
		return "", fmt.Errorf("failed to upload blob %s/%s: %w", s.container, blobName, err)
	}
	slog.Info("successfully uploaded blob", "container", s.container, "blob_name", blobName)
	return blobName, nil
}

// ReadUpload returns the content of a stored upload.
func (s *BlobService) ReadUpload(ctx context.Context, blobName string) (string, error) {
	slog.Info("downloading blob", "container", s.container, "blob_name", blobName)
	resp, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		slog.Error("failed to download blob", "container", s.container, "blob_name", blobName, "error", err)
		return "", fmt.Errorf("failed to download blob %s/%s: %w", s.container, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("failed to read blob content", "container", s.container, "blob_name", blobName, "error", err)
		return "", fmt.Errorf("failed to read blob content: %w", err)
	}

	slog.Info("successfully downloaded blob", "container", s.container, "blob_name", blobName, "size_bytes", len(data))
	return string(data), nil
}

// DeleteUpload removes a processed upload. A missing blob is not an error.
func (s *BlobService) DeleteUpload(ctx context.Context, blobName string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, blobName, nil)
	if err != nil && !hasErrorCode(err, "BlobNotFound") {
		return fmt.Errorf("failed to delete blob %s/%s: %w", s.container, blobName, err)
	}
	return nil
}
