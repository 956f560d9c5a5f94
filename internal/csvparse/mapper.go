package csvparse

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/models"
)

const defaultSource = "CSV Import"

type fieldKeywords struct {
	Field    models.Field
	Keywords []string
}

// columnKeywords lists each field's keywords. Fields are detected
// independently, so one header may serve several fields.
var columnKeywords = []fieldKeywords{
	{models.FieldAmount, []string{"amount", "amt", "inr", "sum", "total", "price"}},
	{models.FieldDate, []string{"date", "time", "day", "posted", "when"}},
	{models.FieldSource, []string{"source", "merchant", "vendor", "payee", "party", "narration", "particulars", "name"}},
	{models.FieldCategory, []string{"category", "tag", "group"}},
	{models.FieldType, []string{"type", "dr/cr", "cr/dr", "debit/credit", "credit/debit", "direction", "nature"}},
	{models.FieldDescription, []string{"description", "desc", "note", "memo", "remark", "details", "comment"}},
}

// TransactionFields lists the fields a transaction CSV can be mapped to, in detection order.
func TransactionFields() []models.Field {
	out := make([]models.Field, len(columnKeywords))
	for i, fk := range columnKeywords {
		out[i] = fk.Field
	}
	return out
}

// DetectColumns picks, for each transaction field, the first header whose
// lowercased name contains one of the field's keywords. Unmatched fields map to "".
func DetectColumns(headers []string) models.ColumnMapping {
	mapping := make(models.ColumnMapping, len(columnKeywords))

	for _, fk := range columnKeywords {
		mapping[fk.Field] = ""
		for _, h := range headers {
			if h != "" && containsAny(strings.ToLower(h), fk.Keywords) {
				mapping[fk.Field] = h
				break
			}
		}
	}
	return mapping
}

// Mapper holds a mutable column mapping between detection and normalization.
// Detection runs once, in NewMapper; later edits via SetColumn are never reverted.
type Mapper struct {
	headers  []string
	mapping  models.ColumnMapping
	Now      func() time.Time
	Location *time.Location
}

// NewMapper seeds the mapping by auto-detecting columns from headers.
func NewMapper(headers []string) *Mapper {
	return &Mapper{
		headers:  slices.Clone(headers),
		mapping:  DetectColumns(headers),
		Now:      time.Now,
		Location: time.UTC,
	}
}

// NewMapperWithMapping builds a mapper from a caller-supplied mapping.
// Every mapped header must be one of headers.
func NewMapperWithMapping(headers []string, mapping models.ColumnMapping) (*Mapper, error) {
	m := &Mapper{
		headers:  slices.Clone(headers),
		mapping:  make(models.ColumnMapping, len(columnKeywords)),
		Now:      time.Now,
		Location: time.UTC,
	}
	for _, f := range TransactionFields() {
		m.mapping[f] = ""
	}
	for f, h := range mapping {
		if err := m.SetColumn(f, h); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Headers returns a copy of the CSV headers.
func (m *Mapper) Headers() []string {
	return slices.Clone(m.headers)
}

// Mapping returns a copy of the current mapping.
func (m *Mapper) Mapping() models.ColumnMapping {
	return m.mapping.Clone()
}

// SetColumn maps field to header. An empty header unmaps the field.
func (m *Mapper) SetColumn(field models.Field, header string) error {
	if !slices.Contains(TransactionFields(), field) {
		return fmt.Errorf("unknown field %q", field)
	}
	if header != "" && !slices.Contains(m.headers, header) {
		return fmt.Errorf("unknown column %q", header)
	}
	m.mapping[field] = header
	return nil
}

// Normalize converts rows into candidates using the current mapping.
// Rows whose amount resolves to zero or less are dropped.
func (m *Mapper) Normalize(rows []map[string]string) []models.Candidate {
	now := m.now()
	out := make([]models.Candidate, 0, len(rows))
	for _, row := range rows {
		c := normalizeRow(row, m.mapping, now, m.location())
		if !c.Amount.IsPositive() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (m *Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Mapper) location() *time.Location {
	if m.Location != nil {
		return m.Location
	}
	return time.UTC
}

func normalizeRow(row map[string]string, mapping models.ColumnMapping, now time.Time, loc *time.Location) models.Candidate {
	cell := func(f models.Field) string {
		v, _ := mapping.Cell(row, f)
		return strings.TrimSpace(v)
	}

	amount := parseAmount(cell(models.FieldAmount))

	date, ok := parseDate(cell(models.FieldDate), loc)
	if !ok {
		date = now
	}

	source := cell(models.FieldSource)
	if source == "" {
		source = defaultSource
	}

	txType := inferType(cell(models.FieldType))
	if amount.IsNegative() {
		txType = models.TypeExpense
		amount = amount.Abs()
	}

	category := models.Category(cell(models.FieldCategory))
	if category == "" {
		category = models.CategoryOther
	}

	return models.Candidate{
		Type:        txType,
		Amount:      amount,
		Date:        date,
		DateFound:   ok,
		Source:      source,
		Category:    category,
		Description: cell(models.FieldDescription),
		Parsed:      true,
		Selected:    true,
		OriginalRow: copyRow(row),
	}
}

var (
	nonNumeric    = regexp.MustCompile(`[^\d.\-]`)
	numericPrefix = regexp.MustCompile(`^-?(?:\d+(?:\.\d+)?|\.\d+)`)
)

// parseAmount strips everything but digits, dots and minus signs, then reads
// the leading number, so "500.00-" is 500. No leading number means zero.
func parseAmount(raw string) decimal.Decimal {
	prefix := numericPrefix.FindString(nonNumeric.ReplaceAllString(raw, ""))
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var (
	incomeWords  = []string{"income", "credit", "cr"}
	expenseWords = []string{"expense", "debit", "dr"}
)

func inferType(raw string) models.TransactionType {
	v := strings.ToLower(raw)
	switch {
	case v == "":
		return models.TypeExpense
	case containsAny(v, incomeWords):
		return models.TypeIncome
	case containsAny(v, expenseWords):
		return models.TypeExpense
	}
	return models.TypeExpense
}

// Day-first layouts come before month-first ones.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/1/2",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04:05",
	"2/1/06",
	"2-1-06",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
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
