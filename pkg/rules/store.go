// pkg/rules/store.go
package rules

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/loggrid/corrector/pkg/model"
)

// ErrRuleNotFound is returned when a requested rule does not exist.
var ErrRuleNotFound = errors.New("correction rule not found")

// Filter narrows rule retrieval. Zero values mean "no restriction".
type Filter struct {
	Category string // Exact category match; empty matches all
	Enabled  *bool  // Enabled/disabled restriction; nil matches all
	Search   string // Free-text search over from/to/category
}

// EnabledOnly is the filter used by correction runs: a run reads a
// snapshot of the enabled rules at pass start.
func EnabledOnly() Filter {
	enabled := true
	return Filter{Enabled: &enabled}
}

// Matches reports whether a rule passes the filter.
func (f Filter) Matches(rule model.CorrectionRule) bool {
	if f.Category != "" && rule.Category != f.Category {
		return false
	}
	if f.Enabled != nil && rule.Enabled != *f.Enabled {
		return false
	}
	return rule.MatchesSearch(f.Search)
}

// Store is the ordered collection of correction rules. Order is the
// rule priority: lower order wins when several rules match a cell.
type Store interface {
	// List returns rules passing the filter, in priority order.
	List(filter Filter) ([]model.CorrectionRule, error)

	// Get retrieves one rule by ID. Returns ErrRuleNotFound when absent.
	Get(id uuid.UUID) (model.CorrectionRule, error)

	// Add appends a rule at the end of the priority order and returns
	// it with its assigned order.
	Add(rule model.CorrectionRule) (model.CorrectionRule, error)

	// Update replaces the rule with the same ID, keeping its order.
	Update(rule model.CorrectionRule) error

	// Delete removes a rule and renumbers the remaining order densely.
	Delete(id uuid.UUID) error

	// Reorder moves a rule to a new position in the priority order.
	Reorder(id uuid.UUID, newOrder int) error
}

// MemoryStore is the in-process Store used for file-based sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	rules []model.CorrectionRule
}

// NewMemoryStore creates an empty in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// List returns rules passing the filter, in priority order.
func (s *MemoryStore) List(filter Filter) ([]model.CorrectionRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CorrectionRule, 0, len(s.rules))
	for _, rule := range s.rules {
		if filter.Matches(rule) {
			out = append(out, rule)
		}
	}
	return out, nil
}

// Get retrieves one rule by ID.
func (s *MemoryStore) Get(id uuid.UUID) (model.CorrectionRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return model.CorrectionRule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

// Add appends a rule at the end of the priority order.
func (s *MemoryStore) Add(rule model.CorrectionRule) (model.CorrectionRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule.Order = len(s.rules)
	s.rules = append(s.rules, rule)
	return rule, nil
}

// Update replaces the rule with the same ID, keeping its order.
func (s *MemoryStore) Update(updated model.CorrectionRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rule := range s.rules {
		if rule.ID == updated.ID {
			updated.Order = rule.Order
			s.rules[i] = updated
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, updated.ID)
}

// Delete removes a rule and renumbers the remaining order densely.
func (s *MemoryStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rule := range s.rules {
		if rule.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.renumber()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

// Reorder moves a rule to a new position in the priority order.
// Positions are clamped to the valid range.
func (s *MemoryStore) Reorder(id uuid.UUID, newOrder int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := -1
	for i, rule := range s.rules {
		if rule.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}

	if newOrder < 0 {
		newOrder = 0
	}
	if newOrder >= len(s.rules) {
		newOrder = len(s.rules) - 1
	}

	moved := s.rules[from]
	s.rules = append(s.rules[:from], s.rules[from+1:]...)
	s.rules = append(s.rules[:newOrder], append([]model.CorrectionRule{moved}, s.rules[newOrder:]...)...)
	s.renumber()
	return nil
}

// Len returns the number of stored rules.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// renumber reassigns dense order values after a mutation.
// Caller must hold the write lock.
func (s *MemoryStore) renumber() {
	for i := range s.rules {
		s.rules[i].Order = i
	}
}
