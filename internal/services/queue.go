package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"github.com/rocjay1/finance-importer/internal/models"
)

// QueueService enqueues import jobs on Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient
	queueName     string
}

// NewQueueService creates a new QueueService instance.
func NewQueueService() (*QueueService, error) {
	queueURL := os.Getenv("QUEUE_SERVICE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("QUEUE_SERVICE_URL environment variable is required")
	}
	queueName := envOr("IMPORT_QUEUE", "imports")

	slog.Info("initializing queue service", "queue_url", queueURL, "queue", queueName)
	var client *azqueue.ServiceClient

	if isLocal(queueURL) {
		slog.Info("using Azurite shared key credentials for queue service")
		name, key := getAzuriteCredentials()
		cred, err := azqueue.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		slog.Info("using default Azure credentials for queue service")
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azqueue.NewServiceClient(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	slog.Info("queue service initialized successfully")
	return &QueueService{serviceClient: client, queueName: queueName}, nil
}

// EncodeJob serializes a job the way the Functions host expects queue messages: base64 JSON.
func EncodeJob(job models.ImportJob) (string, error) {
	msgBytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(msgBytes), nil
}

// EnqueueImport adds an import job to the queue.
func (s *QueueService) EnqueueImport(ctx context.Context, job models.ImportJob) error {
	slog.Info("enqueuing import job", "queue", s.queueName, "blob_name", job.BlobName, "kind", job.Kind)
	queueClient := s.serviceClient.NewQueueClient(s.queueName)

	_, err := queueClient.Create(ctx, nil)
	if err != nil && !hasErrorCode(err, "QueueAlreadyExists") {
		slog.Warn("failed to create queue", "queue", s.queueName, "error", err)
	}

	encoded, err := EncodeJob(job)
	if err != nil {
		slog.Error("failed to marshal queue message", "queue", s.queueName, "error", err)
		return err
	}

	if _, err := queueClient.EnqueueMessage(ctx, encoded, nil); err != nil {
		slog.Error("failed to enqueue message", "queue", s.queueName, "error", err)
		return fmt.Errorf("failed to enqueue message to %s: %w", s.queueName, err)
	}

	slog.Info("successfully enqueued import job", "queue", s.queueName)
	return nil
}
