// Package smsparse extracts transaction candidates from free-text bank SMS.
//
// Parsing runs a fixed pipeline of independent stages over the message. Every
// stage is total: it either matches and yields a value, or yields a documented
// default. Only the amount stage can reject a message outright.
package smsparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rocjay1/finance-importer/internal/models"
	"github.com/shopspring/decimal"
)

// Confidence weights per signal class.
const (
	weightAmount   = 40
	weightDate     = 15
	weightMerchant = 15
	weightAccount  = 10
	weightBalance  = 10
	weightEMI      = 10
)

const (
	maxSourceLen    = 50
	fallbackSource  = "Bank Transaction"
	minFallbackWord = 4
)

// stage is the outcome of one extraction step.
type stage[T any] struct {
	value   T
	matched bool
}

func found[T any](v T) stage[T]   { return stage[T]{value: v, matched: true} }
func missing[T any](v T) stage[T] { return stage[T]{value: v} }

// weight returns w when the stage matched, zero otherwise.
func (s stage[T]) weight(w int) int {
	if s.matched {
		return w
	}
	return 0
}

type typedAmount struct {
	typ    models.TransactionType
	amount decimal.Decimal
}

type emiInfo struct {
	details *models.EMIDetails
}

// Parser extracts candidates from bank messages. The zero value is not usable;
// build one with New.
type Parser struct {
	Keywords KeywordTable
	// Now supplies the default date for messages without a parseable one.
	Now func() time.Time
	// Location is used to build extracted calendar dates.
	Location *time.Location
}

// New returns a Parser with the built-in keyword table.
func New() *Parser {
	return &Parser{
		Keywords: DefaultKeywords(),
		Now:      time.Now,
		Location: time.UTC,
	}
}

var defaultParser = New()

// ParseSMS parses a single message with the default parser.
func ParseSMS(text string) models.Candidate {
	return defaultParser.Parse(text)
}

// Parse extracts a candidate from one message. Messages without an amount
// signal come back with Parsed=false and zero confidence.
func (p *Parser) Parse(text string) models.Candidate {
	c := models.Candidate{OriginalText: text}

	kind := detectAmount(text)
	if !kind.matched {
		return c
	}

	date := p.extractDate(text)
	source := extractSource(text)
	account := firstSubmatch(accountPatterns, text)
	balance := extractBalance(text)
	category := p.detectCategory(text, kind.value.typ)
	emi := detectEMI(text)

	c.Parsed = true
	c.Selected = true
	c.Type = kind.value.typ
	c.Amount = kind.value.amount
	c.Date = date.value
	c.DateFound = date.matched
	c.Source = source.value
	c.Category = category.value
	if account.matched {
		c.AccountLast4 = account.value
	}
	if balance.matched {
		c.BalanceAfter = decimal.NewNullDecimal(balance.value)
	}
	if emi.matched {
		c.Category = models.CategoryEMI
		c.IsEMI = true
		c.EMIDetails = emi.value.details
	}

	c.Confidence = kind.weight(weightAmount) +
		date.weight(weightDate) +
		source.weight(weightMerchant) +
		account.weight(weightAccount) +
		balance.weight(weightBalance) +
		emi.weight(weightEMI)
	return c
}

func detectAmount(text string) stage[typedAmount] {
	for _, group := range amountGroups {
		for _, re := range group.Patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			amount, ok := parseDecimal(m[1])
			if !ok || !amount.IsPositive() {
				continue
			}
			return found(typedAmount{typ: group.Type, amount: amount})
		}
	}
	return missing(typedAmount{})
}

func (p *Parser) extractDate(text string) stage[time.Time] {
	for _, dp := range datePatterns {
		m := dp.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, ok := p.buildDate(dp.Order, m[1:]); ok {
			return found(t)
		}
	}
	return missing(p.now())
}

func (p *Parser) buildDate(order dateOrder, parts []string) (time.Time, bool) {
	var y, mon, d int
	var err error

	switch order {
	case orderYMD:
		y, mon, d, err = atoi3(parts[0], parts[1], parts[2])
	case orderDMY:
		d, mon, y, err = atoi3(parts[0], parts[1], parts[2])
	case orderDMShortY:
		d, mon, y, err = atoi3(parts[0], parts[1], parts[2])
		y += 2000
	case orderDMonY:
		d, err = strconv.Atoi(parts[0])
		mon = monthNumber(parts[1])
		if err == nil {
			y, err = strconv.Atoi(parts[2])
		}
		if len(parts[2]) == 2 {
			y += 2000
		}
	case orderMonDY:
		mon = monthNumber(parts[0])
		d, err = strconv.Atoi(parts[1])
		if err == nil {
			y, err = strconv.Atoi(parts[2])
		}
	}
	if err != nil {
		return time.Time{}, false
	}
	return p.calendarDate(y, mon, d)
}

// calendarDate rejects values that time.Date would silently normalize, such as 31-02.
func (p *Parser) calendarDate(y, mon, d int) (time.Time, bool) {
	if mon < 1 || mon > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(y, time.Month(mon), d, 0, 0, 0, 0, loc)
	if t.Day() != d || int(t.Month()) != mon {
		return time.Time{}, false
	}
	return t, true
}

func (p *Parser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func extractSource(text string) stage[string] {
	for _, re := range merchantPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := cleanSource(m[1])
			if name == "" || isAccountReference(name) {
				continue
			}
			return found(name)
		}
	}

	// Fallback candidates do not count towards confidence.
	for _, w := range capitalizedWord.FindAllString(text, -1) {
		if capitalizedStoplist[w] || len(w) < minFallbackWord {
			continue
		}
		return missing(w)
	}
	return missing(fallbackSource)
}

func cleanSource(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxSourceLen {
		s = string([]rune(s)[:maxSourceLen])
	}
	return strings.TrimSpace(strings.TrimRight(s, ".,;:-"))
}

func isAccountReference(name string) bool {
	lower := strings.ToLower(name) + " "
	for _, prefix := range merchantRejects {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return strings.Trim(name, "0123456789") == ""
}

func extractBalance(text string) stage[decimal.Decimal] {
	for _, re := range balancePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := parseDecimal(m[1]); ok {
			return found(v)
		}
	}
	return missing(decimal.Zero)
}

func (p *Parser) detectCategory(text string, t models.TransactionType) stage[models.Category] {
	if cat, ok := p.Keywords.Match(text, t); ok {
		return found(cat)
	}
	return missing(models.CategoryOther)
}

func detectEMI(text string) stage[emiInfo] {
	if !emiPattern.MatchString(text) {
		return missing(emiInfo{})
	}
	for _, re := range installmentPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cur, errCur := strconv.Atoi(m[1])
		total, errTotal := strconv.Atoi(m[2])
		if errCur != nil || errTotal != nil || total == 0 || cur > total {
			continue
		}
		return found(emiInfo{details: &models.EMIDetails{CurrentInstallment: cur, TotalInstallments: total}})
	}
	return found(emiInfo{})
}

func firstSubmatch(patterns []*regexp.Regexp, text string) stage[string] {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return found(m[1])
		}
	}
	return missing("")
}

// parseDecimal strips thousands separators before parsing.
func parseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(raw, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func atoi3(a, b, c string) (int, int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func monthNumber(s string) int {
	return months[strings.ToLower(s)]
}
