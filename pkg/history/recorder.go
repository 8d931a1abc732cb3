// pkg/history/recorder.go
package history

import (
	"fmt"
	"strings"
	"sync"

	"github.com/loggrid/corrector/pkg/model"
)

// Recorder is the append-only log of individual cell corrections for a
// dataset session. It answers "is this cell already corrected", which
// is distinct from "is this cell correctable but not yet corrected",
// and produces the audit/tooltip text shown for corrected cells.
type Recorder struct {
	mu      sync.RWMutex
	records []model.CorrectionRecord
	byCell  map[model.CellCoord][]int
}

// NewRecorder creates an empty history recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		byCell: make(map[model.CellCoord][]int),
	}
}

// Append adds one correction record. Records are never removed or
// rewritten for the lifetime of the session.
func (r *Recorder) Append(record model.CorrectionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)
	coord := record.Coord()
	r.byCell[coord] = append(r.byCell[coord], len(r.records)-1)
}

// AppendAll adds a batch of correction records.
func (r *Recorder) AppendAll(records []model.CorrectionRecord) {
	for _, record := range records {
		r.Append(record)
	}
}

// All returns a copy of every record in append order.
func (r *Recorder) All() []model.CorrectionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.CorrectionRecord, len(r.records))
	copy(out, r.records)
	return out
}

// ForCell returns the corrections applied to one cell, oldest first.
func (r *Recorder) ForCell(coord model.CellCoord) []model.CorrectionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indices := r.byCell[coord]
	out := make([]model.CorrectionRecord, 0, len(indices))
	for _, i := range indices {
		out = append(out, r.records[i])
	}
	return out
}

// IsCorrected reports whether at least one correction has been applied
// to the cell during this session.
func (r *Recorder) IsCorrected(coord model.CellCoord) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCell[coord]) > 0
}

// Len returns the number of recorded corrections.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Tooltip builds the audit text for a cell: one line per applied
// correction combining original value, corrected value, and the rule
// description. Returns "" for cells with no history.
func (r *Recorder) Tooltip(coord model.CellCoord) string {
	corrections := r.ForCell(coord)
	if len(corrections) == 0 {
		return ""
	}

	lines := make([]string, 0, len(corrections))
	for _, record := range corrections {
		lines = append(lines, fmt.Sprintf("%q -> %q by rule %s",
			record.OldValue, record.NewValue, record.Description))
	}
	return strings.Join(lines, "\n")
}
