// Package logger provides scoring-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ScoringLogger provides dedicated logging for points calculations.
type ScoringLogger struct {
	*logrus.Entry
}

// NewScoringLogger creates a new scoring logger.
func NewScoringLogger(baseLogger *logrus.Logger) *ScoringLogger {
	return &ScoringLogger{
		Entry: baseLogger.WithField("component", "scoring"),
	}
}

// LogCalculation logs a completed calculator step.
func (sl *ScoringLogger) LogCalculation(step, raceID string, rowsWritten int, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"step":         step,
		"race_id":      raceID,
		"rows_written": rowsWritten,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Points calculation completed")
}

// LogSkipped logs a calculator step that found nothing to score.
func (sl *ScoringLogger) LogSkipped(step, raceID, reason string) {
	sl.WithFields(logrus.Fields{
		"step":    step,
		"race_id": raceID,
		"reason":  reason,
	}).Warn("Points calculation skipped")
}

// LogUnassignedDriver logs a driver that could not be mapped to a team.
func (sl *ScoringLogger) LogUnassignedDriver(raceID, driverID string) {
	sl.WithFields(logrus.Fields{
		"race_id":   raceID,
		"driver_id": driverID,
	}).Warn("Driver has no team assignment; skipped for constructor points")
}

// LogPredictionScored logs a single prediction breakdown at debug level.
func (sl *ScoringLogger) LogPredictionScored(raceID, predictionID, userID string, total int) {
	sl.WithFields(logrus.Fields{
		"race_id":       raceID,
		"prediction_id": predictionID,
		"user_id":       userID,
		"total_points":  total,
	}).Debug("Prediction scored")
}

// LogProfileRecomputed logs a participant total refresh.
func (sl *ScoringLogger) LogProfileRecomputed(userID string, points int) {
	sl.WithFields(logrus.Fields{
		"user_id": userID,
		"points":  points,
	}).Debug("Profile points recomputed")
}
