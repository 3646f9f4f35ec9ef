// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogResultSaved records an official result being stored.
func (al *AuditLogger) LogResultSaved(raceID string, classified, dnfs int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"race_id":    raceID,
		"classified": classified,
		"dnfs":       dnfs,
		"timestamp":  timestamp.Unix(),
	}).Info("Race result saved")
}

// LogPredictionSubmitted records a prediction being created or replaced.
func (al *AuditLogger) LogPredictionSubmitted(raceID, userID, predictionID string, replaced bool) {
	al.WithFields(logrus.Fields{
		"race_id":       raceID,
		"user_id":       userID,
		"prediction_id": predictionID,
		"replaced":      replaced,
	}).Info("Prediction submitted")
}

// LogPredictionRejected records a submission refused at the boundary.
func (al *AuditLogger) LogPredictionRejected(raceID, userID, reason string) {
	al.WithFields(logrus.Fields{
		"race_id": raceID,
		"user_id": userID,
		"reason":  reason,
	}).Warn("Prediction rejected")
}

// LogRosterAssignment records a mid-season team change.
func (al *AuditLogger) LogRosterAssignment(driverID, teamID string, effectiveFrom time.Time) {
	al.WithFields(logrus.Fields{
		"driver_id":      driverID,
		"team_id":        teamID,
		"effective_from": effectiveFrom.Format(time.RFC3339),
	}).Info("Roster assignment recorded")
}
