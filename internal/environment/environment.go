// Package environment resolves process-level settings from environment
// variables at startup. Values are read once by the caller and treated as
// read-only afterwards.
package environment

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	envLogLevel     = "SHMOD_LOG_LEVEL"
	envCleanLogFile = "SHMOD_CLEAN_LOG_FILE"
)

// GetLogLevel returns the zap level selected by SHMOD_LOG_LEVEL, defaulting
// to warn so routine runs keep the log file quiet.
func GetLogLevel() zap.AtomicLevel {
	switch strings.ToLower(os.Getenv(envLogLevel)) {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn", "warning":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	}
}

// ShouldCleanLogFile reports whether the log file should be truncated on
// startup.
func ShouldCleanLogFile() bool {
	return os.Getenv(envCleanLogFile) == "1"
}
