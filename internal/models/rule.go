package models

// MatchType selects how a rule pattern is compared to a source string.
type MatchType string

const (
	MatchContains MatchType = "contains"
	MatchExact    MatchType = "exact"
)

// Rule is a user-defined categorization rule. Rules are evaluated in list order.
type Rule struct {
	ID        string          `json:"id"`
	Pattern   string          `json:"pattern"`
	MatchType MatchType       `json:"matchType"`
	Type      TransactionType `json:"type"`
	Category  Category        `json:"category"`
	Position  int             `json:"position"`
}

// RuleMatch is the suggestion produced by the first matching rule.
type RuleMatch struct {
	Type          TransactionType `json:"type"`
	Category      Category        `json:"category"`
	MatchedRuleID string          `json:"matchedRuleId"`
}
