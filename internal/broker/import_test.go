package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocjay1/finance-importer/internal/models"
)

type mockHoldingStore struct {
	AddHoldingFunc   func(ctx context.Context, h models.Holding) (string, error)
	MergeHoldingFunc func(ctx context.Context, existingID string, h models.Holding) error
}

func (m *mockHoldingStore) AddHolding(ctx context.Context, h models.Holding) (string, error) {
	if m.AddHoldingFunc != nil {
		return m.AddHoldingFunc(ctx, h)
	}
	return "new-id", nil
}

func (m *mockHoldingStore) MergeHolding(ctx context.Context, existingID string, h models.Holding) error {
	if m.MergeHoldingFunc != nil {
		return m.MergeHoldingFunc(ctx, existingID, h)
	}
	return nil
}

func cand(symbol string, qty int64) models.HoldingCandidate {
	return models.HoldingCandidate{
		Symbol:   symbol,
		Quantity: decimal.NewFromInt(qty),
		AvgPrice: decimal.NewFromInt(100),
		Selected: true,
	}
}

func TestImport_Counts(t *testing.T) {
	var added []string
	var merged []string
	store := &mockHoldingStore{
		AddHoldingFunc: func(ctx context.Context, h models.Holding) (string, error) {
			if h.Symbol == "BAD" {
				return "", errors.New("storage rejected")
			}
			added = append(added, h.Symbol)
			return "id-" + h.Symbol, nil
		},
		MergeHoldingFunc: func(ctx context.Context, existingID string, h models.Holding) error {
			merged = append(merged, existingID)
			return nil
		},
	}

	dup := cand("TCS", 2)
	dup.Duplicate = true
	dup.ExistingHoldingID = "h1"

	unselected := cand("SKIPME", 1)
	unselected.Selected = false

	cands := []models.HoldingCandidate{
		cand("INFY", 10),
		cand("", 5),
		cand("WIPRO", 0),
		cand("SELL", -3),
		cand("BAD", 1),
		dup,
		unselected,
	}

	summary, err := Import(context.Background(), store, cands)
	require.NoError(t, err)

	assert.Equal(t, models.ImportSummary{Success: 2, Failed: 1, Skipped: 3}, summary)
	assert.Equal(t, []string{"INFY"}, added)
	assert.Equal(t, []string{"h1"}, merged)
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	store := &mockHoldingStore{
		AddHoldingFunc: func(ctx context.Context, h models.Holding) (string, error) {
			calls++
			cancel()
			return "id", nil
		},
	}

	summary, err := Import(ctx, store, []models.HoldingCandidate{cand("A", 1), cand("B", 1)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, summary.Success)
}
