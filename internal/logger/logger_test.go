package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerForEnvironmentFormatter(t *testing.T) {
	log := NewLoggerForEnvironment("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLoggerForEnvironment("info", "development")
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestScoringLoggerCalculation(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogCalculation("driver_points", "race_01", 20, 15*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "scoring", logEntry["component"])
	assert.Equal(t, "driver_points", logEntry["step"])
	assert.Equal(t, float64(20), logEntry["rows_written"])
	assert.Equal(t, float64(15), logEntry["duration_ms"])
}

func TestScoringLoggerSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogSkipped("constructor_points", "race_01", "no result")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "no result", logEntry["reason"])
}

func TestScoringLoggerPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogPredictionScored("race_01", "pred_01", "user_01", 201)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "debug", logEntry["level"])
	assert.Equal(t, float64(201), logEntry["total_points"])
}

func TestAuditLoggerPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPredictionSubmitted("race_01", "user_01", "pred_01", true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, true, logEntry["replaced"])
}

func TestAuditLoggerResultSaved(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogResultSaved("race_01", 20, 3, time.Unix(1700000000, 0))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(3), logEntry["dnfs"])
	assert.Equal(t, float64(1700000000), logEntry["timestamp"])
}
