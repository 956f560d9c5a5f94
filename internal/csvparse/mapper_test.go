package csvparse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocjay1/finance-importer/internal/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestMapper(t *testing.T, headers []string) *Mapper {
	t.Helper()
	m := NewMapper(headers)
	m.Now = func() time.Time { return fixedNow }
	return m
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    models.ColumnMapping
	}{
		{
			name:    "bank export",
			headers: []string{"Txn Date", "Narration", "Amount (INR)", "Dr/Cr", "Remarks"},
			want: models.ColumnMapping{
				models.FieldAmount:      "Amount (INR)",
				models.FieldDate:        "Txn Date",
				models.FieldSource:      "Narration",
				models.FieldCategory:    "",
				models.FieldType:        "Dr/Cr",
				models.FieldDescription: "Remarks",
			},
		},
		{
			name:    "first header wins",
			headers: []string{"Date", "Posted Date", "Amount", "Total"},
			want: models.ColumnMapping{
				models.FieldAmount:      "Amount",
				models.FieldDate:        "Date",
				models.FieldSource:      "",
				models.FieldCategory:    "",
				models.FieldType:        "",
				models.FieldDescription: "",
			},
		},
		{
			name:    "no matches",
			headers: []string{"foo", "bar"},
			want: models.ColumnMapping{
				models.FieldAmount:      "",
				models.FieldDate:        "",
				models.FieldSource:      "",
				models.FieldCategory:    "",
				models.FieldType:        "",
				models.FieldDescription: "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectColumns(tt.headers))
		})
	}
}

func TestDetectColumns_HeaderServesSeveralFields(t *testing.T) {
	mapping := DetectColumns([]string{"Amount Type", "Amount"})
	assert.Equal(t, "Amount Type", mapping.Header(models.FieldAmount))
	assert.Equal(t, "Amount Type", mapping.Header(models.FieldType))
}

func TestNormalize_NegativeAmountOverridesType(t *testing.T) {
	m := newTestMapper(t, []string{"Amount", "Type"})

	got := m.Normalize([]map[string]string{{"Amount": "-500", "Type": "credit"}})

	require.Len(t, got, 1)
	assert.Equal(t, models.TypeExpense, got[0].Type)
	assert.True(t, decimal.NewFromInt(500).Equal(got[0].Amount))
}

func TestNormalize_Defaults(t *testing.T) {
	m := newTestMapper(t, []string{"Amount"})

	got := m.Normalize([]map[string]string{{"Amount": "₹1,234.50"}})

	require.Len(t, got, 1)
	c := got[0]
	assert.True(t, decimal.RequireFromString("1234.50").Equal(c.Amount))
	assert.Equal(t, models.TypeExpense, c.Type)
	assert.Equal(t, "CSV Import", c.Source)
	assert.Equal(t, models.CategoryOther, c.Category)
	assert.Equal(t, "", c.Description)
	assert.Equal(t, fixedNow, c.Date)
	assert.True(t, c.Selected)
	assert.Equal(t, map[string]string{"Amount": "₹1,234.50"}, c.OriginalRow)
}

func TestNormalize_FieldsAndTypes(t *testing.T) {
	m := newTestMapper(t, []string{"Date", "Merchant", "Amount", "Category", "Type", "Notes"})

	rows := []map[string]string{
		{"Date": "15/01/2025", "Merchant": "Swiggy", "Amount": "250", "Category": "Late Night Snacks", "Type": "DEBIT", "Notes": "dinner"},
		{"Date": "2025-01-20", "Merchant": "ACME", "Amount": "50000", "Category": "Salary", "Type": "Cr", "Notes": ""},
		{"Date": "not a date", "Merchant": "", "Amount": "10", "Category": "", "Type": "weird", "Notes": ""},
	}

	got := m.Normalize(rows)
	require.Len(t, got, 3)

	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, "Swiggy", got[0].Source)
	assert.Equal(t, models.TypeExpense, got[0].Type)
	assert.Equal(t, models.Category("Late Night Snacks"), got[0].Category)
	assert.Equal(t, "dinner", got[0].Description)

	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), got[1].Date)
	assert.Equal(t, models.TypeIncome, got[1].Type)

	assert.True(t, got[0].DateFound)
	assert.Equal(t, fixedNow, got[2].Date)
	assert.False(t, got[2].DateFound)
	assert.Equal(t, "CSV Import", got[2].Source)
	assert.Equal(t, models.TypeExpense, got[2].Type)
	assert.Equal(t, models.CategoryOther, got[2].Category)
}

func TestNormalize_DropsNonPositive(t *testing.T) {
	m := newTestMapper(t, []string{"Amount"})

	got := m.Normalize([]map[string]string{
		{"Amount": "0"},
		{"Amount": "abc"},
		{"Amount": ""},
		{"Amount": "-"},
		{"Amount": "12"},
	})

	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(12).Equal(got[0].Amount))
}

func TestNormalize_AmountLeadingNumber(t *testing.T) {
	m := newTestMapper(t, []string{"Amount", "Type"})

	got := m.Normalize([]map[string]string{
		{"Amount": "500.00-"},
		{"Amount": "1,234.50 Dr"},
		{"Amount": "-500", "Type": "credit"},
		{"Amount": "1-2"},
	})

	require.Len(t, got, 4)
	assert.True(t, decimal.NewFromInt(500).Equal(got[0].Amount))
	assert.True(t, decimal.RequireFromString("1234.50").Equal(got[1].Amount))
	assert.True(t, decimal.NewFromInt(500).Equal(got[2].Amount))
	assert.Equal(t, models.TypeExpense, got[2].Type)
	assert.True(t, decimal.NewFromInt(1).Equal(got[3].Amount))
}

func TestMapper_OverrideNotReverted(t *testing.T) {
	headers := []string{"Amount", "Debit Amount", "Date"}
	m := newTestMapper(t, headers)
	require.Equal(t, "Amount", m.Mapping().Header(models.FieldAmount))

	require.NoError(t, m.SetColumn(models.FieldAmount, "Debit Amount"))

	got := m.Normalize([]map[string]string{{"Amount": "1", "Debit Amount": "99", "Date": "2025-01-01"}})
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(99).Equal(got[0].Amount))
	assert.Equal(t, "Debit Amount", m.Mapping().Header(models.FieldAmount))

	// Normalizing again must not re-run detection.
	m.Normalize(nil)
	assert.Equal(t, "Debit Amount", m.Mapping().Header(models.FieldAmount))
}

func TestMapper_MappingIsCopy(t *testing.T) {
	m := newTestMapper(t, []string{"Amount"})
	mapping := m.Mapping()
	mapping[models.FieldAmount] = "Other"

	assert.Equal(t, "Amount", m.Mapping().Header(models.FieldAmount))
}

func TestMapper_SetColumnErrors(t *testing.T) {
	m := newTestMapper(t, []string{"Amount"})

	assert.Error(t, m.SetColumn(models.FieldAmount, "Missing"))
	assert.Error(t, m.SetColumn(models.FieldSymbol, "Amount"))
	assert.NoError(t, m.SetColumn(models.FieldAmount, ""))
	assert.Equal(t, "", m.Mapping().Header(models.FieldAmount))
}

func TestNewMapperWithMapping(t *testing.T) {
	headers := []string{"When", "Value"}

	m, err := NewMapperWithMapping(headers, models.ColumnMapping{
		models.FieldDate:   "When",
		models.FieldAmount: "Value",
	})
	require.NoError(t, err)
	m.Now = func() time.Time { return fixedNow }

	got := m.Normalize([]map[string]string{{"When": "Jan 5, 2025", "Value": "7"}})
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), got[0].Date)

	_, err = NewMapperWithMapping(headers, models.ColumnMapping{models.FieldAmount: "Nope"})
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"05/02/2025", time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), true},
		{"12/25/2025", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"15-Jan-2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"31/31/2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in, time.UTC)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
