package smsparse

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
	"gopkg.in/yaml.v3"
)

// CategoryKeywords lists the lowercase keywords that select a category.
type CategoryKeywords struct {
	Category models.Category `yaml:"category" json:"category"`
	Keywords []string        `yaml:"keywords" json:"keywords"`
}

// KeywordTable holds the ordered keyword lists per transaction type.
type KeywordTable struct {
	Expense []CategoryKeywords `yaml:"expense" json:"expense"`
	Income  []CategoryKeywords `yaml:"income" json:"income"`
}

var defaultKeywords = KeywordTable{
	Expense: []CategoryKeywords{
		{models.CategoryFood, []string{"swiggy", "zomato", "restaurant", "cafe", "food", "pizza", "domino", "mcdonald", "kfc", "starbucks", "dining", "eatsure"}},
		{models.CategoryGroceries, []string{"bigbasket", "blinkit", "grofers", "zepto", "dmart", "grocery", "supermarket", "more retail"}},
		{models.CategoryTransport, []string{"uber", "olacabs", "ola money", "rapido", "petrol", "fuel", "irctc", "railway", "fastag", "parking", "metro rail"}},
		{models.CategoryShopping, []string{"amazon", "flipkart", "myntra", "ajio", "meesho", "nykaa", "shopping", "mall"}},
		{models.CategoryBills, []string{"electricity", "recharge", "airtel", "jio", "vodafone", "broadband", "bill pay", "billpay", "water bill", "gas bill", "dth"}},
		{models.CategoryEntertainment, []string{"netflix", "spotify", "hotstar", "prime video", "bookmyshow", "pvr", "inox", "youtube premium"}},
		{models.CategoryHealth, []string{"pharmacy", "hospital", "apollo", "medical", "clinic", "1mg", "pharmeasy", "diagnostic"}},
		{models.CategoryEducation, []string{"school", "college", "university", "tuition", "udemy", "coursera", "course fee"}},
		{models.CategoryRent, []string{"house rent", "rent paid", "rent payment", "nobroker"}},
		{models.CategoryTravel, []string{"makemytrip", "goibibo", "cleartrip", "indigo", "air india", "hotel", "oyo"}},
		{models.CategoryInvestment, []string{"zerodha", "groww", "mutual fund", "sip", "nps", "ppf"}},
	},
	Income: []CategoryKeywords{
		{models.CategorySalary, []string{"salary", "payroll", "sal credit"}},
		{models.CategoryInterest, []string{"interest"}},
		{models.CategoryDividend, []string{"dividend"}},
		{models.CategoryRefund, []string{"refund", "reversal", "reversed"}},
		{models.CategoryCashback, []string{"cashback", "cash back", "reward"}},
		{models.CategoryFreelance, []string{"freelance", "invoice", "consulting"}},
	},
}

// DefaultKeywords returns a copy of the built-in keyword table.
func DefaultKeywords() KeywordTable {
	return defaultKeywords.clone()
}

// LoadKeywords reads a keyword table from YAML. Keywords are lowercased;
// entry order in the document is kept.
func LoadKeywords(r io.Reader) (KeywordTable, error) {
	var t KeywordTable
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return KeywordTable{}, errors.New("keyword table is empty")
		}
		return KeywordTable{}, fmt.Errorf("failed to decode keyword table: %w", err)
	}

	if err := normalizeEntries(t.Expense, models.TypeExpense); err != nil {
		return KeywordTable{}, err
	}
	if err := normalizeEntries(t.Income, models.TypeIncome); err != nil {
		return KeywordTable{}, err
	}
	return t, nil
}

func normalizeEntries(entries []CategoryKeywords, t models.TransactionType) error {
	for i := range entries {
		if entries[i].Category == "" {
			return fmt.Errorf("%s entry %d has no category", t, i)
		}
		kept := entries[i].Keywords[:0]
		for _, kw := range entries[i].Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kept = append(kept, kw)
			}
		}
		entries[i].Keywords = kept
	}
	return nil
}

// For returns the entries used for transactions of type t.
func (k KeywordTable) For(t models.TransactionType) []CategoryKeywords {
	if t == models.TypeIncome {
		return k.Income
	}
	return k.Expense
}

// Match returns the first category of type t with a keyword contained in text.
func (k KeywordTable) Match(text string, t models.TransactionType) (models.Category, bool) {
	lower := strings.ToLower(text)
	for _, entry := range k.For(t) {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				return entry.Category, true
			}
		}
	}
	return models.CategoryOther, false
}

func (k KeywordTable) clone() KeywordTable {
	cp := func(src []CategoryKeywords) []CategoryKeywords {
		out := make([]CategoryKeywords, len(src))
		for i, e := range src {
			out[i] = CategoryKeywords{Category: e.Category, Keywords: append([]string(nil), e.Keywords...)}
		}
		return out
	}
	return KeywordTable{Expense: cp(k.Expense), Income: cp(k.Income)}
}
