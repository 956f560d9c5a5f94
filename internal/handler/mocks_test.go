package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/models"
)

// MockDatabaseClient is a mock implementation of DatabaseClient
type MockDatabaseClient struct {
	AddTransactionFunc     func(ctx context.Context, userID string, tx models.Transaction) (string, error)
	ListTransactionsFunc   func(ctx context.Context, userID, month string) ([]models.Transaction, error)
	ListRulesFunc          func(ctx context.Context, userID string) ([]models.Rule, error)
	SaveRuleFunc           func(ctx context.Context, userID string, rule models.Rule) (models.Rule, error)
	DeleteRuleFunc         func(ctx context.Context, userID, id string) error
	ListHoldingsFunc       func(ctx context.Context, userID string) ([]models.Holding, error)
	ListAllHoldingsFunc    func(ctx context.Context) ([]models.Holding, error)
	AddHoldingFunc         func(ctx context.Context, userID string, h models.Holding) (string, error)
	MergeHoldingFunc       func(ctx context.Context, userID, existingID string, h models.Holding) error
	UpdateHoldingPriceFunc func(ctx context.Context, userID, id string, price decimal.Decimal) error
}

func (m *MockDatabaseClient) AddTransaction(ctx context.Context, userID string, tx models.Transaction) (string, error) {
	if m.AddTransactionFunc != nil {
		return m.AddTransactionFunc(ctx, userID, tx)
	}
	return "tx-id", nil
}

func (m *MockDatabaseClient) ListTransactions(ctx context.Context, userID, month string) ([]models.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID, month)
	}
	return nil, nil
}

func (m *MockDatabaseClient) ListRules(ctx context.Context, userID string) ([]models.Rule, error) {
	if m.ListRulesFunc != nil {
		return m.ListRulesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveRule(ctx context.Context, userID string, rule models.Rule) (models.Rule, error) {
	if m.SaveRuleFunc != nil {
		return m.SaveRuleFunc(ctx, userID, rule)
	}
	return rule, nil
}

func (m *MockDatabaseClient) DeleteRule(ctx context.Context, userID, id string) error {
	if m.DeleteRuleFunc != nil {
		return m.DeleteRuleFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockDatabaseClient) ListHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	if m.ListHoldingsFunc != nil {
		return m.ListHoldingsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) ListAllHoldings(ctx context.Context) ([]models.Holding, error) {
	if m.ListAllHoldingsFunc != nil {
		return m.ListAllHoldingsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) AddHolding(ctx context.Context, userID string, h models.Holding) (string, error) {
	if m.AddHoldingFunc != nil {
		return m.AddHoldingFunc(ctx, userID, h)
	}
	return "holding-id", nil
}

func (m *MockDatabaseClient) MergeHolding(ctx context.Context, userID, existingID string, h models.Holding) error {
	if m.MergeHoldingFunc != nil {
		return m.MergeHoldingFunc(ctx, userID, existingID, h)
	}
	return nil
}

func (m *MockDatabaseClient) UpdateHoldingPrice(ctx context.Context, userID, id string, price decimal.Decimal) error {
	if m.UpdateHoldingPriceFunc != nil {
		return m.UpdateHoldingPriceFunc(ctx, userID, id, price)
	}
	return nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	SaveUploadFunc   func(ctx context.Context, userID, fileName, content string) (string, error)
	ReadUploadFunc   func(ctx context.Context, blobName string) (string, error)
	DeleteUploadFunc func(ctx context.Context, blobName string) error
}

func (m *MockBlobClient) SaveUpload(ctx context.Context, userID, fileName, content string) (string, error) {
	if m.SaveUploadFunc != nil {
		return m.SaveUploadFunc(ctx, userID, fileName, content)
	}
	return userID + "/" + fileName, nil
}

func (m *MockBlobClient) ReadUpload(ctx context.Context, blobName string) (string, error) {
	if m.ReadUploadFunc != nil {
		return m.ReadUploadFunc(ctx, blobName)
	}
	return "", nil
}

func (m *MockBlobClient) DeleteUpload(ctx context.Context, blobName string) error {
	if m.DeleteUploadFunc != nil {
		return m.DeleteUploadFunc(ctx, blobName)
	}
	return nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueImportFunc func(ctx context.Context, job models.ImportJob) error
}

func (m *MockQueueClient) EnqueueImport(ctx context.Context, job models.ImportJob) error {
	if m.EnqueueImportFunc != nil {
		return m.EnqueueImportFunc(ctx, job)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendImportSummaryFunc func(ctx context.Context, recipients []string, fileName string, summary models.ImportSummary) error
	SendImportFailureFunc func(ctx context.Context, recipients []string, fileName string, reasons []string) error
}

func (m *MockEmailClient) SendImportSummary(ctx context.Context, recipients []string, fileName string, summary models.ImportSummary) error {
	if m.SendImportSummaryFunc != nil {
		return m.SendImportSummaryFunc(ctx, recipients, fileName, summary)
	}
	return nil
}

func (m *MockEmailClient) SendImportFailure(ctx context.Context, recipients []string, fileName string, reasons []string) error {
	if m.SendImportFailureFunc != nil {
		return m.SendImportFailureFunc(ctx, recipients, fileName, reasons)
	}
	return nil
}

// MockQuoteClient is a mock implementation of QuoteClient
type MockQuoteClient struct {
	GetQuotesFunc func(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

func (m *MockQuoteClient) GetQuotes(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if m.GetQuotesFunc != nil {
		return m.GetQuotesFunc(ctx, symbols)
	}
	return map[string]decimal.Decimal{}, nil
}
