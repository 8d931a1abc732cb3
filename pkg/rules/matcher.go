// pkg/rules/matcher.go
package rules

import "github.com/loggrid/corrector/pkg/model"

// ApplicableRules returns the enabled rules that match a cell's
// rendered value in the given column, preserving rule order. The
// first entry is the rule the applier will use. Pure function, no
// side effects.
//
// Matching is exact and case-sensitive on the value. A rule with a
// category matches only when the column name equals the category; a
// rule without a category matches any column.
func ApplicableRules(value, column string, enabled []model.CorrectionRule) []model.CorrectionRule {
	var matched []model.CorrectionRule
	for _, rule := range enabled {
		if rule.Matches(value, column) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// FirstApplicable returns the highest-priority matching rule, if any.
func FirstApplicable(value, column string, enabled []model.CorrectionRule) (model.CorrectionRule, bool) {
	for _, rule := range enabled {
		if rule.Matches(value, column) {
			return rule, true
		}
	}
	return model.CorrectionRule{}, false
}

// Suggestions maps the applicable rules for a cell onto concrete
// suggestion values, preserving priority order.
func Suggestions(value, column string, enabled []model.CorrectionRule) []model.CorrectionSuggestion {
	matched := ApplicableRules(value, column, enabled)
	if len(matched) == 0 {
		return nil
	}

	out := make([]model.CorrectionSuggestion, 0, len(matched))
	for _, rule := range matched {
		out = append(out, model.CorrectionSuggestion{
			CorrectedValue: rule.ToValue,
			RuleID:         rule.ID,
			Description:    rule.Description(),
		})
	}
	return out
}
