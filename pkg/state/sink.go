// pkg/state/sink.go
package state

import (
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/model"
)

// LoggingSink is a Sink that reports state deltas through the logger.
// The CLI uses it in place of a renderer.
type LoggingSink struct {
	logger *zap.Logger
}

// NewLoggingSink creates a sink that logs every bulk state update.
func NewLoggingSink(logger *zap.Logger) *LoggingSink {
	return &LoggingSink{logger: logger.Named("state-sink")}
}

// ApplyCellStates logs a summary of the update at debug level.
func (s *LoggingSink) ApplyCellStates(states map[model.CellCoord]*model.CellFullState) {
	correctable := 0
	invalid := 0
	for _, cellState := range states {
		switch cellState.Status {
		case model.StatusCorrectable:
			correctable++
		case model.StatusInvalid:
			invalid++
		}
	}

	s.logger.Debug("Cell state update",
		zap.Int("cells", len(states)),
		zap.Int("correctable", correctable),
		zap.Int("invalid", invalid))
}
