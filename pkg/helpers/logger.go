package helpers

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the process logger. Development gets human-readable
// text at debug level; everything else gets JSON at info. A non-empty level
// overrides the env default.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			logger.WithField("level", level).Warn("unknown log level; keeping default")
		} else {
			logger.SetLevel(lvl)
		}
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env, "level": logger.GetLevel().String()}).Info("logger initialized")
	return logger
}

// AccountLog scopes log lines to one account.
func AccountLog(logger *logrus.Logger, accountID string) *logrus.Entry {
	return logger.WithField("account_id", accountID)
}
