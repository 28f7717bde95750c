package core

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logg     *logrus.Logger
	loggOnce sync.Once
)

// GetLogger returns the shared process logger, creating it on first use.
// Level comes from SALESOPS_LOG_LEVEL (default warn); output is JSON on stderr.
func GetLogger() *logrus.Logger {
	loggOnce.Do(func() {
		logg = logrus.New()
		logg.SetOutput(os.Stderr)
		logg.SetFormatter(&logrus.JSONFormatter{})
		logg.SetLevel(logrus.WarnLevel)

		if lvl := os.Getenv(LogLevelEnvVar); lvl != "" {
			if parsed, err := logrus.ParseLevel(lvl); err == nil {
				logg.SetLevel(parsed)
			}
		}
	})
	return logg
}

// SetVerbose raises the shared logger to debug level (for --verbose).
func SetVerbose() {
	GetLogger().SetLevel(logrus.DebugLevel)
}
