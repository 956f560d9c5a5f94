package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
)

// Apply returns the suggestion of the first rule in list order that matches source.
// Matching is case-insensitive. It returns nil for an empty source or when no rule matches.
func Apply(rules []models.Rule, source string) *models.RuleMatch {
	if source == "" {
		return nil
	}
	needle := strings.ToLower(source)

	for _, r := range rules {
		if r.Pattern == "" {
			continue
		}
		pattern := strings.ToLower(r.Pattern)

		var hit bool
		switch r.MatchType {
		case models.MatchExact:
			hit = needle == pattern
		default:
			hit = strings.Contains(needle, pattern)
		}

		if hit {
			return &models.RuleMatch{
				Type:          r.Type,
				Category:      r.Category,
				MatchedRuleID: r.ID,
			}
		}
	}
	return nil
}

// Suggest applies the first matching rule to the candidate's source and
// returns the updated copy. Without a match the candidate is returned as is.
func Suggest(rules []models.Rule, c models.Candidate) (models.Candidate, *models.RuleMatch) {
	m := Apply(rules, c.Source)
	if m == nil {
		return c, nil
	}
	if m.Type.Valid() {
		c = c.WithType(m.Type)
	}
	if m.Category != "" {
		c = c.WithCategory(m.Category)
	}
	return c, m
}

// Validate checks a rule before it is stored.
func Validate(r models.Rule) error {
	if strings.TrimSpace(r.Pattern) == "" {
		return errors.New("pattern is required")
	}
	switch r.MatchType {
	case models.MatchContains, models.MatchExact:
	default:
		return fmt.Errorf("invalid match type: %q", r.MatchType)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("invalid type: %q", r.Type)
	}
	if r.Category == "" {
		return errors.New("category is required")
	}
	return nil
}
