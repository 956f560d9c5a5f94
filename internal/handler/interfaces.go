package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/models"
)

// DatabaseClient defines the interface for database operations used by handlers.
type DatabaseClient interface {
	AddTransaction(ctx context.Context, userID string, tx models.Transaction) (string, error)
	ListTransactions(ctx context.Context, userID, month string) ([]models.Transaction, error)

	ListRules(ctx context.Context, userID string) ([]models.Rule, error)
	SaveRule(ctx context.Context, userID string, rule models.Rule) (models.Rule, error)
	DeleteRule(ctx context.Context, userID, id string) error

	ListHoldings(ctx context.Context, userID string) ([]models.Holding, error)
	ListAllHoldings(ctx context.Context) ([]models.Holding, error)
	AddHolding(ctx context.Context, userID string, h models.Holding) (string, error)
	MergeHolding(ctx context.Context, userID, existingID string, h models.Holding) error
	UpdateHoldingPrice(ctx context.Context, userID, id string, price decimal.Decimal) error
}

// BlobClient defines the interface for upload storage used by handlers.
type BlobClient interface {
	SaveUpload(ctx context.Context, userID, fileName, content string) (string, error)
	ReadUpload(ctx context.Context, blobName string) (string, error)
	DeleteUpload(ctx context.Context, blobName string) error
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueImport(ctx context.Context, job models.ImportJob) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendImportSummary(ctx context.Context, recipients []string, fileName string, summary models.ImportSummary) error
	SendImportFailure(ctx context.Context, recipients []string, fileName string, reasons []string) error
}

// QuoteClient fetches current market prices.
type QuoteClient interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}
