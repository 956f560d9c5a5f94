package smsparse

import (
	"regexp"

	"github.com/rocjay1/finance-importer/internal/models"
)

// Order inside every table below is significant: the first match wins.

const (
	currency = `(?:\brs\.?|\binr|₹)`
	number   = `([\d,]+(?:\.\d+)?)`
)

// amountGroup pairs a transaction type with the patterns that identify it.
// The first submatch of each pattern is the amount.
type amountGroup struct {
	Type     models.TransactionType
	Patterns []*regexp.Regexp
}

// Expense patterns are checked before income patterns.
var amountGroups = []amountGroup{
	{
		Type: models.TypeExpense,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)` + currency + `\s*` + number + `\s*(?:has\s+been\s+|is\s+|was\s+)?(?:debited|spent|paid|withdrawn|deducted|sent|transferred)`),
			regexp.MustCompile(`(?i)(?:debited|spent|paid|withdrawn|deducted|sent|transferred)\s+(?:with\s+|by\s+|for\s+|of\s+)?(?:an?\s+amount\s+of\s+)?` + currency + `\s*` + number),
			regexp.MustCompile(`(?i)(?:purchase|payment|txn|transaction)\s+of\s+` + currency + `\s*` + number),
			regexp.MustCompile(`(?i)\b(?:debit|dr)\b\.?\s*(?:of|:|-)?\s*` + currency + `\s*` + number),
		},
	},
	{
		Type: models.TypeIncome,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)` + currency + `\s*` + number + `\s*(?:has\s+been\s+|is\s+|was\s+)?(?:credited|received|deposited|refunded)`),
			regexp.MustCompile(`(?i)(?:credited|received|deposited|refunded)\s+(?:with\s+|by\s+|for\s+|of\s+)?(?:an?\s+amount\s+of\s+)?` + currency + `\s*` + number),
			regexp.MustCompile(`(?i)\b(?:credit|cr)\b\.?\s*(?:of|:|-)?\s*` + currency + `\s*` + number),
		},
	},
}

// dateOrder names the submatch layout of a date pattern.
type dateOrder int

const (
	orderYMD dateOrder = iota
	orderDMY
	orderDMShortY
	orderDMonY
	orderMonDY
)

type datePattern struct {
	Re    *regexp.Regexp
	Order dateOrder
}

// ISO must precede the day-first forms, otherwise "2025-01-15" reads as 25-01-15.
var datePatterns = []datePattern{
	{regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), orderYMD},
	{regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`), orderDMY},
	{regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{2})\b`), orderDMShortY},
	{regexp.MustCompile(`(?i)\b(\d{1,2})[-\s]?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[-\s,]*(\d{4}|\d{2})\b`), orderDMonY},
	{regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{1,2}),?\s+(\d{4})\b`), orderMonDY},
}

var merchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:at|to|towards|from)\s+([a-z0-9][a-z0-9&'._*\-]*(?:\s+[a-z0-9&'._*\-]+)*?)(?:\s+(?:on|via|ref|for|upi|avl|info|dated|thru|using|towards|from|by)\b|[.,;:]\s|[.,;]?$|\s*\()`),
	regexp.MustCompile(`(?i)\b(?:merchant|payee|beneficiary|info|upi\s*id)\s*[:\-]\s*([^\n.,;]{2,})`),
	regexp.MustCompile(`(?i)\bvpa\s+([\w.\-]+@[\w.\-]+)`),
}

// merchantRejects are prefixes of captures that name the user's own account
// rather than a counterparty.
var merchantRejects = []string{"your ", "a/c", "ac ", "acct", "account", "card ", "xx", "rs.", "rs ", "inr ", "₹"}

var capitalizedWord = regexp.MustCompile(`\b[A-Z][A-Za-z]+\b`)

var capitalizedStoplist = map[string]bool{
	"The":         true,
	"Your":        true,
	"Account":     true,
	"Dear":        true,
	"Transaction": true,
}

var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:a/c|acct|account|card)\b\.?\s*(?:no\.?|number)?\s*(?:ending\s*(?:with|in)?\s*)?[x*]*(\d{4})\b`),
	regexp.MustCompile(`(?i)\b[x*]{2,}(\d{4})\b`),
}

var balancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:bal|balance)\b\.?\s*(?:is\s*)?(?:[:\-]\s*)?` + currency + `?\s*` + number),
}

var emiPattern = regexp.MustCompile(`(?i)\b(?:emi|equated\s+monthly\s+instal{1,2}ments?|loan\s+instal{1,2}ments?|instal{1,2}ments?)\b`)

var installmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:emi|instal{1,2}ment)\s*(?:no\.?\s*)?#?\s*(\d{1,3})\s*(?:of|/)\s*(\d{1,3})\b`),
	regexp.MustCompile(`(?i)\b(\d{1,3})(?:st|nd|rd|th)?\s*(?:of|/)\s*(\d{1,3})\s+(?:emi|instal{1,2}ments?)\b`),
}

// Blank lines separate pasted messages.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)
