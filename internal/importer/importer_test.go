package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocjay1/finance-importer/internal/models"
)

type mockSaver struct {
	AddTransactionFunc func(ctx context.Context, tx models.Transaction) (string, error)
}

func (m *mockSaver) AddTransaction(ctx context.Context, tx models.Transaction) (string, error) {
	if m.AddTransactionFunc != nil {
		return m.AddTransactionFunc(ctx, tx)
	}
	return "id", nil
}

func candidate(source string, amount int64) models.Candidate {
	return models.Candidate{
		Type:     models.TypeExpense,
		Amount:   decimal.NewFromInt(amount),
		Date:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Source:   source,
		Category: models.CategoryOther,
		Selected: true,
	}
}

func TestRun_CountsAndRules(t *testing.T) {
	var saved []models.Transaction
	saver := &mockSaver{
		AddTransactionFunc: func(ctx context.Context, tx models.Transaction) (string, error) {
			if tx.Source == "BROKEN" {
				return "", errors.New("table unavailable")
			}
			saved = append(saved, tx)
			return "id", nil
		},
	}

	ruleList := []models.Rule{
		{ID: "r1", Pattern: "swiggy", MatchType: models.MatchContains, Type: models.TypeExpense, Category: models.CategoryFood},
		{ID: "r2", Pattern: "acme payroll", MatchType: models.MatchExact, Type: models.TypeIncome, Category: models.CategorySalary},
	}

	cands := []models.Candidate{
		candidate("Swiggy Order", 250),
		candidate("ACME Payroll", 50000),
		candidate("BROKEN", 10),
		candidate("zero", 0),
		candidate("Unselected", 5).WithSelected(false),
		candidate("Corner Shop", 40),
	}

	summary, err := Run(context.Background(), saver, ruleList, cands)
	require.NoError(t, err)

	assert.Equal(t, models.ImportSummary{Success: 3, Failed: 1}, summary)
	require.Len(t, saved, 3)
	assert.Equal(t, models.CategoryFood, saved[0].Category)
	assert.Equal(t, models.TypeIncome, saved[1].Type)
	assert.Equal(t, models.CategorySalary, saved[1].Category)
	assert.Equal(t, models.CategoryOther, saved[2].Category)
}

func TestRun_NoRules(t *testing.T) {
	summary, err := Run(context.Background(), &mockSaver{}, nil, []models.Candidate{candidate("A", 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Success)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	saver := &mockSaver{
		AddTransactionFunc: func(ctx context.Context, tx models.Transaction) (string, error) {
			cancel()
			return "id", nil
		},
	}

	summary, err := Run(ctx, saver, nil, []models.Candidate{candidate("A", 1), candidate("B", 2)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.ImportSummary{Success: 1}, summary)
}
