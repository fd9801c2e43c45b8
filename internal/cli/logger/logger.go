// Package logger writes puffctl debug logs to a file with charmbracelet/log.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/puffbuddy/backend/internal/cli/config"
)

var logger *log.Logger

// Init opens the configured log file; stderr is used when it cannot be opened
func Init(verbose bool) {
	logLevel := log.InfoLevel
	if verbose {
		logLevel = log.DebugLevel
	}

	f, err := os.OpenFile(config.GetString("log.file"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		f = os.Stderr
	}

	logger = log.New(f)
	logger.SetLevel(logLevel)
	logger.SetReportTimestamp(true)
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
