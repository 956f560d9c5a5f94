package broker

import (
	"context"
	"log/slog"

	"github.com/rocjay1/finance-importer/internal/models"
)

// HoldingStore persists holdings.
type HoldingStore interface {
	AddHolding(ctx context.Context, h models.Holding) (string, error)
	MergeHolding(ctx context.Context, existingID string, h models.Holding) error
}

// Import persists the selected candidates one at a time. Rows without a
// symbol or with a non-positive quantity are skipped, store errors count as
// failed. A cancelled context stops the loop and is returned with the
// partial summary.
func Import(ctx context.Context, store HoldingStore, cands []models.HoldingCandidate) (models.ImportSummary, error) {
	var summary models.ImportSummary

	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !c.Selected {
			continue
		}
		if !Importable(c) {
			summary.Skipped++
			continue
		}

		h := c.ToHolding()
		var err error
		if c.Duplicate && c.ExistingHoldingID != "" {
			err = store.MergeHolding(ctx, c.ExistingHoldingID, h)
		} else {
			_, err = store.AddHolding(ctx, h)
		}
		if err != nil {
			slog.Warn("failed to import holding", "symbol", c.Symbol, "error", err)
			summary.Failed++
			continue
		}
		summary.Success++
	}

	return summary, nil
}
