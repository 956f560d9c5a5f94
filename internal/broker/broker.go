// Package broker maps a broker's holdings and tradebook CSV exports onto
// holding candidates and imports them against a holding store.
package broker

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/models"
)

// Kind identifies which broker report a CSV came from.
type Kind string

const (
	KindUnknown   Kind = ""
	KindHoldings  Kind = "holdings"
	KindTradebook Kind = "tradebook"
)

type alias struct {
	Header string
	Field  models.Field
}

// Header spellings are matched exactly after trimming.
var holdingsAliases = []alias{
	{"Instrument", models.FieldSymbol},
	{"Symbol", models.FieldSymbol},
	{"Tradingsymbol", models.FieldSymbol},
	{"Qty.", models.FieldQuantity},
	{"Quantity", models.FieldQuantity},
	{"Quantity Available", models.FieldQuantity},
	{"Avg. cost", models.FieldAvgPrice},
	{"Average Price", models.FieldAvgPrice},
	{"LTP", models.FieldCurrentPrice},
	{"Previous Closing Price", models.FieldCurrentPrice},
	{"P&L", models.FieldPnL},
	{"Unrealized P&L", models.FieldPnL},
}

var tradebookAliases = []alias{
	{"symbol", models.FieldSymbol},
	{"trade_date", models.FieldDate},
	{"trade_type", models.FieldType},
	{"quantity", models.FieldQuantity},
	{"price", models.FieldAvgPrice},
}

var suffixes = []string{".NS", ".BSE", ".BO", "-EQ"}

// CleanSymbol uppercases a ticker and strips exchange and segment suffixes.
// It is idempotent.
func CleanSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	for {
		trimmed := s
		for _, suf := range suffixes {
			trimmed = strings.TrimSuffix(trimmed, suf)
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// DetectKind guesses the report kind from its headers.
func DetectKind(headers []string) Kind {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[strings.TrimSpace(h)] = true
	}

	if set["trade_type"] || set["trade_date"] {
		return KindTradebook
	}

	var symbol, quantity bool
	for _, a := range holdingsAliases {
		if !set[a.Header] {
			continue
		}
		switch a.Field {
		case models.FieldSymbol:
			symbol = true
		case models.FieldQuantity:
			quantity = true
		}
	}
	if symbol && quantity {
		return KindHoldings
	}
	return KindUnknown
}

func aliasesFor(kind Kind) []alias {
	switch kind {
	case KindHoldings:
		return holdingsAliases
	case KindTradebook:
		return tradebookAliases
	}
	return nil
}

// MapHeaders builds the column mapping for kind. The first header, in
// header order, that exactly matches an alias of a field is used.
func MapHeaders(kind Kind, headers []string) models.ColumnMapping {
	table := aliasesFor(kind)
	mapping := make(models.ColumnMapping)

	for _, h := range headers {
		name := strings.TrimSpace(h)
		for _, a := range table {
			if a.Header != name {
				continue
			}
			if _, taken := mapping[a.Field]; !taken {
				mapping[a.Field] = h
			}
			break
		}
	}
	return mapping
}

// MapRows converts rows into holding candidates. Tradebook sells carry a
// negative quantity so that import skips them.
func MapRows(kind Kind, mapping models.ColumnMapping, rows []map[string]string) []models.HoldingCandidate {
	out := make([]models.HoldingCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRow(kind, mapping, row))
	}
	return out
}

func mapRow(kind Kind, mapping models.ColumnMapping, row map[string]string) models.HoldingCandidate {
	cell := func(f models.Field) string {
		v, _ := mapping.Cell(row, f)
		return strings.TrimSpace(v)
	}

	c := models.HoldingCandidate{
		Symbol:       CleanSymbol(cell(models.FieldSymbol)),
		Quantity:     ParseNumber(cell(models.FieldQuantity)),
		AvgPrice:     ParseNumber(cell(models.FieldAvgPrice)),
		CurrentPrice: ParseNumber(cell(models.FieldCurrentPrice)),
		OriginalRow:  copyRow(row),
	}

	if kind == KindTradebook {
		if strings.EqualFold(cell(models.FieldType), "sell") {
			c.Quantity = c.Quantity.Neg()
		}
		if d, err := time.Parse(time.DateOnly, cell(models.FieldDate)); err == nil {
			c.TradeDate = d.Format(time.DateOnly)
		}
	}

	if raw := cell(models.FieldPnL); raw != "" {
		c.PnL = ParseNumber(raw)
	} else if !c.CurrentPrice.IsZero() {
		c.PnL = c.ToHolding().PnL()
	}

	c.Selected = true
	return c
}

// Importable reports whether a candidate has a symbol and a positive quantity.
func Importable(c models.HoldingCandidate) bool {
	return c.Symbol != "" && c.Quantity.IsPositive()
}

// ParseNumber strips thousands separators before parsing. Unparseable input is zero.
func ParseNumber(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func copyRow(row map[string]string) map[string]string {
	if row == nil {
		return nil
	}
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
