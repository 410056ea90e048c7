package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger: pretty console output in development, JSON
// everywhere else. Unknown or empty levels fall back to info.
func New(level string) *logrus.Logger {
	base := logrus.New()

	env := os.Getenv("APP_ENV")
	if env == "" || env == "development" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(os.Stdout)

	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return base
}
