// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance
func NewLogger(logLevel string) *logrus.Logger {
	return newLogger(os.Stdout, logLevel, os.Getenv("ENVIRONMENT") == "production")
}

// NewLoggerForEnvironment creates a logger whose format follows the app environment
func NewLoggerForEnvironment(logLevel, environment string) *logrus.Logger {
	return newLogger(os.Stdout, logLevel, environment == "production")
}

// Discard returns a logger that drops everything, for tests and CLI dry runs.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newLogger(out io.Writer, logLevel string, jsonOutput bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if jsonOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
