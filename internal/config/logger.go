package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

// GetLogger returns the shared logger, creating it on first use.
func GetLogger() *logrus.Logger {
	if logg != nil {
		return logg
	}

	logg = logrus.New()
	logg.SetOutput(os.Stdout)
	logg.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(strings.ToLower(envOr("LOG_LEVEL", "info")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logg.SetLevel(level)

	return logg
}
