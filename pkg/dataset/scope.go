// pkg/dataset/scope.go
package dataset

import (
	"errors"

	"github.com/loggrid/corrector/pkg/model"
)

// ErrScopeActive is returned when a selection scope is already applied.
var ErrScopeActive = errors.New("a selection scope is already active")

// Scope is a temporary restriction of the table's visible cell set.
// While a scope is active, VisibleCoords enumerates only the selected
// coordinates. Release restores full visibility and is idempotent, so
// it can sit in a defer and also be called on early exits.
type Scope struct {
	table    *Table
	released bool
}

// AcquireScope restricts the table's visible cells to the given
// coordinate set. At most one scope may be active at a time.
func (t *Table) AcquireScope(coords []model.CellCoord) (*Scope, error) {
	t.scopeMu.Lock()
	defer t.scopeMu.Unlock()

	if t.scope != nil {
		return nil, ErrScopeActive
	}

	selected := make(map[model.CellCoord]bool, len(coords))
	for _, coord := range coords {
		selected[coord] = true
	}
	t.scope = selected

	return &Scope{table: t}, nil
}

// Release restores full dataset visibility. Safe to call more than
// once; only the first call has an effect.
func (s *Scope) Release() {
	if s == nil {
		return
	}

	s.table.scopeMu.Lock()
	defer s.table.scopeMu.Unlock()

	if s.released {
		return
	}
	s.released = true
	s.table.scope = nil
}

// Scoped reports whether a selection scope is currently active.
func (t *Table) Scoped() bool {
	t.scopeMu.Lock()
	defer t.scopeMu.Unlock()
	return t.scope != nil
}

// VisibleCoords enumerates the coordinates currently visible, in
// row-major order. With no active scope that is every cell of the
// table; with a scope it is the selected subset only.
func (t *Table) VisibleCoords() []model.CellCoord {
	t.scopeMu.Lock()
	selected := t.scope
	t.scopeMu.Unlock()

	coords := make([]model.CellCoord, 0, len(t.rows)*len(t.columns))
	for row := range t.rows {
		for _, col := range t.columns {
			coord := model.CellCoord{Row: row, Column: col.Name}
			if selected != nil && !selected[coord] {
				continue
			}
			coords = append(coords, coord)
		}
	}
	return coords
}
