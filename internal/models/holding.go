package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a persisted investment position.
type Holding struct {
	ID           string          `json:"id"`
	UserID       string          `json:"-"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	UpdatedAt    time.Time       `json:"updatedAt,omitempty"`
}

// Invested returns quantity times average price.
func (h Holding) Invested() decimal.Decimal {
	return h.Quantity.Mul(h.AvgPrice)
}

// PnL returns the unrealized profit or loss at the current price.
// Holdings without a current price report zero.
func (h Holding) PnL() decimal.Decimal {
	if h.CurrentPrice.IsZero() {
		return decimal.Zero
	}
	return h.CurrentPrice.Sub(h.AvgPrice).Mul(h.Quantity)
}

// HoldingCandidate is a broker statement row mapped to holding fields.
type HoldingCandidate struct {
	Symbol            string            `json:"symbol"`
	Quantity          decimal.Decimal   `json:"quantity"`
	AvgPrice          decimal.Decimal   `json:"avgPrice"`
	CurrentPrice      decimal.Decimal   `json:"currentPrice"`
	PnL               decimal.Decimal   `json:"pnl"`
	TradeDate         string            `json:"tradeDate,omitempty"`
	Duplicate         bool              `json:"duplicate"`
	ExistingHoldingID string            `json:"existingHoldingId,omitempty"`
	Selected          bool              `json:"selected"`
	OriginalRow       map[string]string `json:"originalRow,omitempty"`
}

// ToHolding converts the candidate into a holding without an ID.
func (c HoldingCandidate) ToHolding() Holding {
	return Holding{
		Symbol:       c.Symbol,
		Quantity:     c.Quantity,
		AvgPrice:     c.AvgPrice,
		CurrentPrice: c.CurrentPrice,
	}
}
