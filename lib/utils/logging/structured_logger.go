package logging

import (
	"os"
	"strings"

	"threepole/lib/utils/sentry"

	"github.com/rs/zerolog"
)

const componentField = "component"

// StructuredLogger writes SCREAMING_SNAKE event keys with sorted key=value fields
type StructuredLogger struct {
	prefix string
}

// NewLogger creates a new logger with the given prefix
func NewLogger(prefix string) *StructuredLogger {
	return &StructuredLogger{prefix: prefix}
}

// formatLogfmtKey removes leading $
func formatLogfmtKey(k string) string {
	if after, ok := strings.CutPrefix(k, "$"); ok {
		k = after
	}
	return k
}

func zerologLevel(level string) zerolog.Level {
	switch level {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case FATAL:
		// zerolog's Fatal exits on Msg; exiting is handled by StructuredLogger.Fatal
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *StructuredLogger) log(level string, key string, fields map[string]any) {
	out := writerFor(level)
	event := out.WithLevel(zerologLevel(level)).Str(componentField, "["+l.prefix+"]")
	for k, v := range fields {
		event = event.Interface(formatLogfmtKey(k), v)
	}
	event.Msg(key)
}

func withError(fields map[string]any, err error) map[string]any {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	} else {
		merged["error"] = "<nil>"
	}
	return merged
}

func (l *StructuredLogger) Debug(key string, fields map[string]any) {
	if ShouldLog(Debug) {
		l.log(DEBUG, key, fields)
	}
}

func (l *StructuredLogger) Info(key string, fields map[string]any) {
	if ShouldLog(Info) {
		l.log(INFO, key, fields)
	}
}

func (l *StructuredLogger) Warn(key string, err error, fields map[string]any) {
	if ShouldLog(Warn) {
		l.log(WARN, key, withError(fields, err))
	}
}

func (l *StructuredLogger) Error(key string, err error, fields map[string]any) {
	fields = withError(fields, err)
	if ShouldLog(Error) {
		l.log(ERROR, key, fields)
	}

	if err != nil {
		sentry.CaptureError(Error, key, err, fields)
	}
}

func (l *StructuredLogger) Fatal(key string, err error, fields map[string]any) {
	fields = withError(fields, err)
	l.log(FATAL, key, fields)
	if err != nil {
		sentry.CaptureError(Fatal, key, err, fields)
	}

	sentry.Flush()
	os.Exit(1)
}

// InitSentry initializes Sentry error tracking using the logger's prefix as the app name.
// Sentry will only be initialized if SENTRY_DSN environment variable is set.
//
// Returns two functions that should be deferred in main():
//   - flushFunc: Flushes pending Sentry events before program exit (defer this first)
//   - recoverFunc: Captures panics and sends them to Sentry (defer this second)
func (l *StructuredLogger) InitSentry() (flushFunc func(), recoverFunc func()) {
	fields := map[string]any{
		"app": l.prefix,
	}
	sentryInitialized := sentry.Init(l.prefix, IsVerbose())
	if !sentryInitialized {
		l.Debug("SENTRY_NOT_INITIALIZED", fields)
	} else {
		l.Debug("SENTRY_INITIALIZED", fields)
	}

	flushFunc = func() {
		if sentryInitialized {
			l.Debug("FLUSHING_SENTRY", fields)
			sentry.Flush()
		}
	}

	recoverFunc = sentry.Recover
	return
}
