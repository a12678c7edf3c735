package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger initializes the structured logger with proper configuration
func InitLogger() *logrus.Logger {
	log := logrus.New()

	// Set log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	// Set formatter based on environment
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(os.Stdout)

	Logger = log

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger()
	}
	return Logger
}

// WithUserContext creates a logger with per-user request context
func WithUserContext(userID uint) *logrus.Entry {
	return GetLogger().WithField("user_id", userID)
}

// WithRecommendationContext creates a logger with full recommendation context
func WithRecommendationContext(userID uint, targetDistance int, lie string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"user_id":         userID,
		"target_distance": targetDistance,
		"lie":             lie,
	})
}

// WithImportContext creates a logger with launch monitor import context
func WithImportContext(importID string, deviceType string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"import_id":   importID,
		"device_type": deviceType,
	})
}
