package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocjay1/finance-importer/internal/models"
)

func TestMergeHoldings(t *testing.T) {
	existing := models.Holding{
		ID:       "h1",
		UserID:   "u1",
		Symbol:   "TCS",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(100),
	}
	incoming := models.Holding{
		Symbol:       "TCS",
		Quantity:     decimal.NewFromInt(30),
		AvgPrice:     decimal.NewFromInt(200),
		CurrentPrice: decimal.NewFromInt(210),
	}

	merged := MergeHoldings(existing, incoming)

	assert.Equal(t, "h1", merged.ID)
	assert.Equal(t, "u1", merged.UserID)
	assert.True(t, decimal.NewFromInt(40).Equal(merged.Quantity))
	assert.True(t, decimal.NewFromInt(175).Equal(merged.AvgPrice), merged.AvgPrice.String())
	assert.True(t, decimal.NewFromInt(210).Equal(merged.CurrentPrice))
}

func TestMergeHoldings_KeepsPriceWhenIncomingHasNone(t *testing.T) {
	existing := models.Holding{Quantity: decimal.NewFromInt(1), AvgPrice: decimal.NewFromInt(3), CurrentPrice: decimal.NewFromInt(5)}
	incoming := models.Holding{Quantity: decimal.NewFromInt(2), AvgPrice: decimal.NewFromInt(3)}

	merged := MergeHoldings(existing, incoming)

	assert.True(t, decimal.NewFromInt(5).Equal(merged.CurrentPrice))
	assert.True(t, decimal.NewFromInt(3).Equal(merged.AvgPrice))
}

func TestTransactionEntityRoundTrip(t *testing.T) {
	tx := models.Transaction{
		ID:          "t1",
		Type:        models.TypeExpense,
		Amount:      decimal.RequireFromString("500.25"),
		Source:      "SWIGGY",
		Category:    models.CategoryFood,
		Date:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "dinner",
	}
	imported := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	entity := transactionEntity(TransactionPartition("u1", tx.Date), tx, imported)
	assert.Equal(t, "u1_2025-01", entity["PartitionKey"])
	assert.Equal(t, "500.25", entity["Amount"])

	got := parseTransaction(entity)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.Type, got.Type)
	assert.True(t, tx.Amount.Equal(got.Amount))
	assert.Equal(t, tx.Source, got.Source)
	assert.Equal(t, tx.Category, got.Category)
	assert.True(t, tx.Date.Equal(got.Date))
	assert.Equal(t, tx.Description, got.Description)
}

func TestTransactionPartition_ZeroDate(t *testing.T) {
	assert.Equal(t, "u1_unknown", TransactionPartition("u1", time.Time{}))
}

func TestParseHolding_NumericColumns(t *testing.T) {
	// Older rows stored numbers rather than strings.
	h := parseHolding(map[string]any{
		"PartitionKey": "u1",
		"RowKey":       "h1",
		"Symbol":       "INFY",
		"Quantity":     float64(4),
		"AvgPrice":     "1500.5",
	})

	assert.Equal(t, "u1", h.UserID)
	assert.True(t, decimal.NewFromInt(4).Equal(h.Quantity))
	assert.True(t, decimal.RequireFromString("1500.5").Equal(h.AvgPrice))
	assert.True(t, h.CurrentPrice.IsZero())
}

func TestRuleEntityRoundTrip(t *testing.T) {
	r := models.Rule{ID: "r1", Pattern: "swiggy", MatchType: models.MatchContains, Type: models.TypeExpense, Category: models.CategoryFood, Position: 3}

	entity := ruleEntity("u1", r)
	// JSON numbers decode as float64.
	entity["Position"] = float64(3)

	assert.Equal(t, r, parseRule(entity))
}

func TestSortRulesAndNextPosition(t *testing.T) {
	ruleList := []models.Rule{
		{ID: "b", Position: 2},
		{ID: "c", Position: 1},
		{ID: "a", Position: 2},
	}

	SortRules(ruleList)

	require.Len(t, ruleList, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{ruleList[0].ID, ruleList[1].ID, ruleList[2].ID})
	assert.Equal(t, 3, nextPosition(ruleList))
	assert.Equal(t, 1, nextPosition(nil))
}

func TestODataString(t *testing.T) {
	assert.Equal(t, "'o''brien'", odataString("o'brien"))
}
