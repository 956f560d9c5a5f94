package broker

import "github.com/rocjay1/finance-importer/internal/models"

// MarkDuplicates flags candidates whose normalized symbol matches an existing
// holding. Flagged candidates stay importable and are merged rather than added.
func MarkDuplicates(cands []models.HoldingCandidate, existing []models.Holding) []models.HoldingCandidate {
	bySymbol := make(map[string]string, len(existing))
	for _, h := range existing {
		sym := CleanSymbol(h.Symbol)
		if _, ok := bySymbol[sym]; !ok {
			bySymbol[sym] = h.ID
		}
	}

	out := make([]models.HoldingCandidate, len(cands))
	for i, c := range cands {
		c.Duplicate = false
		c.ExistingHoldingID = ""
		if id, ok := bySymbol[CleanSymbol(c.Symbol)]; ok && c.Symbol != "" {
			c.Duplicate = true
			c.ExistingHoldingID = id
		}
		out[i] = c
	}
	return out
}
