// pkg/engine/metrics.go
package engine

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PassMetrics tracks metrics for a single correction pass
type PassMetrics struct {
	Iteration   int
	StartTime   time.Time
	EndTime     time.Time
	Corrections int
	Rows        int
	Cells       int
	Errors      int
}

// Duration returns how long the pass took
func (pm *PassMetrics) Duration() time.Duration {
	if pm.EndTime.IsZero() {
		return time.Since(pm.StartTime)
	}
	return pm.EndTime.Sub(pm.StartTime)
}

// RunMetrics tracks metrics across all passes of a correction run
type RunMetrics struct {
	mu               sync.Mutex
	logger           *zap.Logger
	StartTime        time.Time
	EndTime          time.Time
	Passes           []*PassMetrics
	TotalCorrections int
	TotalErrors      int
	ErrorCounts      map[CellErrorCategory]int

	lastPassStart time.Time
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	now := time.Now()
	return &RunMetrics{
		StartTime:     now,
		Passes:        make([]*PassMetrics, 0, MaxIterations),
		ErrorCounts:   make(map[CellErrorCategory]int),
		lastPassStart: now,
		logger:        logger,
	}
}

// RecordPass records metrics for a completed pass
func (rm *RunMetrics) RecordPass(iteration int, result PassResult) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := time.Now()
	pm := &PassMetrics{
		Iteration:   iteration,
		StartTime:   rm.lastPassStart,
		EndTime:     now,
		Corrections: result.Stats.TotalCorrections,
		Rows:        result.Stats.CorrectedRows,
		Cells:       result.Stats.CorrectedCells,
		Errors:      len(result.Errors),
	}
	rm.Passes = append(rm.Passes, pm)
	rm.lastPassStart = now

	rm.TotalCorrections += result.Stats.TotalCorrections
	rm.TotalErrors += len(result.Errors)
	for _, cellErr := range result.Errors {
		rm.ErrorCounts[cellErr.Category]++
	}

	if rm.logger != nil {
		rm.logger.Debug("Pass completed",
			zap.Int("iteration", iteration),
			zap.Int("corrections", result.Stats.TotalCorrections),
			zap.Int("errors", len(result.Errors)),
			zap.Duration("duration", pm.Duration()))
	}
}

// Complete marks the run as finished
func (rm *RunMetrics) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()
}

// Duration returns the total duration of the run
func (rm *RunMetrics) Duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// CorrectionsPerSecond calculates the overall correction throughput
func (rm *RunMetrics) CorrectionsPerSecond() float64 {
	duration := rm.Duration().Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(rm.TotalCorrections) / duration
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// Report creates a human-readable metrics report for the run
func (rm *RunMetrics) Report() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	report := fmt.Sprintf(`
Correction Run Report
=====================
Duration:           %s
Passes:             %d
Total Corrections:  %d
Total Cell Errors:  %d
`,
		formatDuration(rm.Duration()),
		len(rm.Passes),
		rm.TotalCorrections,
		rm.TotalErrors,
	)

	report += "\nPass Details\n------------\n"
	for _, pm := range rm.Passes {
		report += fmt.Sprintf("- pass %d: %d corrections, %d rows, %d cells, %d errors, %s\n",
			pm.Iteration,
			pm.Corrections,
			pm.Rows,
			pm.Cells,
			pm.Errors,
			formatDuration(pm.Duration()))
	}

	if len(rm.ErrorCounts) > 0 {
		report += "\nError Distribution\n------------------\n"
		for category, count := range rm.ErrorCounts {
			report += fmt.Sprintf("- %s: %d\n", category.String(), count)
		}
	}

	return report
}

// ToJSON serializes run metrics to JSON
func (rm *RunMetrics) ToJSON() ([]byte, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	type passSummary struct {
		Iteration   int    `json:"iteration"`
		Corrections int    `json:"corrections"`
		Errors      int    `json:"errors"`
		Duration    string `json:"duration"`
	}

	passes := make([]passSummary, 0, len(rm.Passes))
	for _, pm := range rm.Passes {
		passes = append(passes, passSummary{
			Iteration:   pm.Iteration,
			Corrections: pm.Corrections,
			Errors:      pm.Errors,
			Duration:    formatDuration(pm.Duration()),
		})
	}

	errorCounts := make(map[string]int, len(rm.ErrorCounts))
	for category, count := range rm.ErrorCounts {
		errorCounts[category.String()] = count
	}

	return json.Marshal(struct {
		Duration             string        `json:"duration"`
		TotalCorrections     int           `json:"totalCorrections"`
		TotalErrors          int           `json:"totalErrors"`
		CorrectionsPerSecond float64       `json:"correctionsPerSecond"`
		Passes               []passSummary `json:"passes"`
		ErrorCounts          map[string]int `json:"errorCounts"`
	}{
		Duration:             formatDuration(rm.Duration()),
		TotalCorrections:     rm.TotalCorrections,
		TotalErrors:          rm.TotalErrors,
		CorrectionsPerSecond: rm.CorrectionsPerSecond(),
		Passes:               passes,
		ErrorCounts:          errorCounts,
	})
}
