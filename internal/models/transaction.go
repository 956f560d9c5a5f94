package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is the finalized shape handed to persistence.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Category    Category        `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// EMIDetails holds the installment position when a message names one.
type EMIDetails struct {
	CurrentInstallment int `json:"currentInstallment"`
	TotalInstallments  int `json:"totalInstallments"`
}

// Candidate is a parsed, not yet persisted transaction.
// Candidates are values: edits go through the With* helpers, which return copies.
type Candidate struct {
	Type         TransactionType     `json:"type"`
	Amount       decimal.Decimal     `json:"amount"`
	Date         time.Time           `json:"date"`
	DateFound    bool                `json:"dateFound"`
	Source       string              `json:"source"`
	Category     Category            `json:"category"`
	Description  string              `json:"description,omitempty"`
	Confidence   int                 `json:"confidence"`
	Parsed       bool                `json:"parsed"`
	Selected     bool                `json:"selected"`
	IsEMI        bool                `json:"isEMI"`
	EMIDetails   *EMIDetails         `json:"emiDetails,omitempty"`
	AccountLast4 string              `json:"accountLast4,omitempty"`
	BalanceAfter decimal.NullDecimal `json:"balanceAfter"`
	OriginalText string              `json:"originalText,omitempty"`
	OriginalRow  map[string]string   `json:"originalRow,omitempty"`
}

// Valid reports whether the candidate carries a positive amount and a known type.
func (c Candidate) Valid() bool {
	return c.Type.Valid() && c.Amount.IsPositive()
}

// WithType returns a copy of c with the given type.
func (c Candidate) WithType(t TransactionType) Candidate {
	c.Type = t
	return c
}

// WithCategory returns a copy of c with the given category.
func (c Candidate) WithCategory(cat Category) Candidate {
	c.Category = cat
	return c
}

// WithSource returns a copy of c with the given source.
func (c Candidate) WithSource(source string) Candidate {
	c.Source = source
	return c
}

// WithSelected returns a copy of c with the selection flag set.
func (c Candidate) WithSelected(selected bool) Candidate {
	c.Selected = selected
	return c
}

// ToTransaction reduces the candidate to the common persisted shape.
func (c Candidate) ToTransaction() Transaction {
	desc := c.Description
	if desc == "" {
		desc = c.OriginalText
	}
	cat := c.Category
	if cat == "" {
		cat = CategoryOther
	}
	return Transaction{
		Type:        c.Type,
		Amount:      c.Amount,
		Source:      c.Source,
		Category:    cat,
		Date:        c.Date,
		Description: desc,
	}
}

// ImportSummary is the aggregate result of a persistence loop.
// Skipped is only used by the broker importer.
type ImportSummary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped,omitempty"`
}
