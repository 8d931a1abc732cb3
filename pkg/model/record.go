// pkg/model/record.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CorrectionRecord represents a single applied correction. Records are
// immutable once created and accumulate into the session history log.
type CorrectionRecord struct {
	ID          uuid.UUID // Unique record identifier
	Row         int       // Row index of the corrected cell
	Column      string    // Column name of the corrected cell
	OldValue    string    // Value before the correction
	NewValue    string    // Value after the correction
	RuleID      uuid.UUID // Rule that produced the correction
	Description string    // Human-readable rule description
	AppliedAt   time.Time // When the correction was applied
}

// NewCorrectionRecord creates a record for one applied rule.
func NewCorrectionRecord(coord CellCoord, oldValue string, rule CorrectionRule) CorrectionRecord {
	return CorrectionRecord{
		ID:          uuid.New(),
		Row:         coord.Row,
		Column:      coord.Column,
		OldValue:    oldValue,
		NewValue:    rule.ToValue,
		RuleID:      rule.ID,
		Description: rule.Description(),
		AppliedAt:   time.Now(),
	}
}

// Coord returns the coordinate of the corrected cell.
func (r CorrectionRecord) Coord() CellCoord {
	return CellCoord{Row: r.Row, Column: r.Column}
}

// String returns a formatted audit line for the record.
func (r CorrectionRecord) String() string {
	return fmt.Sprintf("row %d, column %s: %q -> %q (%s)",
		r.Row, r.Column, r.OldValue, r.NewValue, r.Description)
}
