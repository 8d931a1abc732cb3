// pkg/model/stats.go
package model

import "time"

// PassStats counts the effects of a single applier pass.
type PassStats struct {
	TotalCorrections int
	CorrectedRows    int
	CorrectedCells   int
}

// IsZero reports whether the pass applied nothing.
func (p PassStats) IsZero() bool {
	return p.TotalCorrections == 0
}

// CorrectionStats aggregates a full correction run. TotalCorrections
// is a running sum across passes; CorrectedRows and CorrectedCells are
// running maxima, because the same row or cell may be touched again in
// a later pass.
type CorrectionStats struct {
	TotalCorrections int
	CorrectedRows    int
	CorrectedCells   int
	Iterations       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// NewCorrectionStats initializes stats for a run starting now.
func NewCorrectionStats() *CorrectionStats {
	return &CorrectionStats{StartTime: time.Now()}
}

// MergePass folds one pass into the accumulator.
func (s *CorrectionStats) MergePass(pass PassStats) {
	s.TotalCorrections += pass.TotalCorrections
	if pass.CorrectedRows > s.CorrectedRows {
		s.CorrectedRows = pass.CorrectedRows
	}
	if pass.CorrectedCells > s.CorrectedCells {
		s.CorrectedCells = pass.CorrectedCells
	}
}

// Complete marks the run as finished and records its duration.
func (s *CorrectionStats) Complete(iterations int) {
	s.Iterations = iterations
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}
