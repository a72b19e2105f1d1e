package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging builds the JSON logger. An unknown level falls back to info.
func SetupLogging(level string) *logrus.Logger {
	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   os.Stdout,
		Level: logrus.InfoLevel,
		Hooks: make(logrus.LevelHooks),
	}

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logger.WithField("level", level).Warn("SetupLogging.UnknownLevel")
		} else {
			logger.SetLevel(parsed)
		}
	}

	return &logger
}
