// pkg/model/rule.go
package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CorrectionRule describes a single value substitution. A rule with an
// empty Category applies to every column; otherwise it only applies to
// cells in the column whose name equals Category.
type CorrectionRule struct {
	ID        uuid.UUID // Unique rule identifier
	FromValue string    // Cell value the rule replaces
	ToValue   string    // Replacement value
	Category  string    // Column name restriction; empty means any column
	Enabled   bool      // Disabled rules never match
	Order     int       // Position in the rule list; lower order wins
}

// NewCorrectionRule creates an enabled rule with a fresh ID.
// Order is assigned by the store when the rule is added.
func NewCorrectionRule(from, to, category string) CorrectionRule {
	return CorrectionRule{
		ID:        uuid.New(),
		FromValue: from,
		ToValue:   to,
		Category:  category,
		Enabled:   true,
	}
}

// Matches reports whether the rule applies to a cell with the given
// rendered value in the given column. Value comparison is exact and
// case-sensitive; only the category check, when present, is by column
// name equality.
func (r CorrectionRule) Matches(value, column string) bool {
	if !r.Enabled {
		return false
	}
	if r.FromValue != value {
		return false
	}
	if r.Category != "" && r.Category != column {
		return false
	}
	return true
}

// IsGeneral reports whether the rule applies to any column.
func (r CorrectionRule) IsGeneral() bool {
	return r.Category == ""
}

// Description returns a human-readable summary of the substitution,
// used in history tooltips and audit output.
func (r CorrectionRule) Description() string {
	if r.IsGeneral() {
		return fmt.Sprintf("%q -> %q", r.FromValue, r.ToValue)
	}
	return fmt.Sprintf("%q -> %q (column %s)", r.FromValue, r.ToValue, r.Category)
}

// MatchesSearch reports whether the rule matches a free-text search
// term over its from/to values and category. An empty term matches.
func (r CorrectionRule) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(r.FromValue), term) ||
		strings.Contains(strings.ToLower(r.ToValue), term) ||
		strings.Contains(strings.ToLower(r.Category), term)
}
