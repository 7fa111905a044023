package logging

import (
	"strings"
	"sync/atomic"

	"threepole/lib/env"
)

var logLevel atomic.Value

// logLevelPriority maps log levels to their numeric priority (higher = more important)
var logLevelPriority = map[string]int{
	Debug: 0,
	Info:  1,
	Warn:  2,
	Error: 3,
	// fatal is not a configurable level - it's always shown when error level is enabled
}

func init() {
	// Default log level is "info"
	logLevel.Store(Info)

	if envLevel := env.LogLevel; isValidLogLevel(envLevel) {
		logLevel.Store(strings.ToLower(envLevel))
	}
}

// isValidLogLevel checks if the provided log level is valid
func isValidLogLevel(level string) bool {
	if level == "" {
		return false
	}
	_, ok := logLevelPriority[strings.ToLower(level)]
	return ok
}

// IsVerbose returns true if the log level is debug
func IsVerbose() bool {
	return GetLogLevel() == Debug
}

// GetLogLevel returns the current log level
func GetLogLevel() string {
	return logLevel.Load().(string)
}

// SetLogLevel programmatically sets the log level. Invalid levels are ignored.
func SetLogLevel(level string) bool {
	if !isValidLogLevel(level) {
		return false
	}
	logLevel.Store(strings.ToLower(level))
	return true
}

// ShouldLog checks if a given log level should be logged based on current log level
func ShouldLog(level string) bool {
	currentPriority := logLevelPriority[GetLogLevel()]
	logPriority := logLevelPriority[level]
	return logPriority >= currentPriority
}
