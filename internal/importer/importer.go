// Package importer persists reviewed transaction candidates.
package importer

import (
	"context"
	"log/slog"

	"github.com/rocjay1/finance-importer/internal/models"
	"github.com/rocjay1/finance-importer/internal/rules"
)

// TransactionSaver persists a single finalized transaction.
type TransactionSaver interface {
	AddTransaction(ctx context.Context, tx models.Transaction) (string, error)
}

// Run saves candidates one at a time so each outcome is counted on its own.
// Unselected and invalid candidates are ignored. Rules, when given, may
// rewrite type and category before saving. A save error is tallied as
// failed and the loop carries on; a cancelled context stops it and is
// returned with the partial summary.
func Run(ctx context.Context, saver TransactionSaver, ruleList []models.Rule, cands []models.Candidate) (models.ImportSummary, error) {
	var summary models.ImportSummary

	for i, c := range cands {
		if err := ctx.Err(); err != nil {
			slog.Warn("import cancelled", "processed", i, "total", len(cands))
			return summary, err
		}
		if !c.Selected || !c.Valid() {
			continue
		}

		if len(ruleList) > 0 {
			c, _ = rules.Suggest(ruleList, c)
		}

		if _, err := saver.AddTransaction(ctx, c.ToTransaction()); err != nil {
			slog.Warn("failed to save transaction", "source", c.Source, "amount", c.Amount.String(), "error", err)
			summary.Failed++
			continue
		}
		summary.Success++
	}

	slog.Info("import finished", "success", summary.Success, "failed", summary.Failed)
	return summary, nil
}
