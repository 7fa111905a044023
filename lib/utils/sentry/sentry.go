package sentry

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"threepole/lib/env"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Log fields promoted to searchable tags. Everything else is attached as extra context.
var tagFields = map[string]bool{
	"run_id":          true,
	"membership_type": true,
	"membership_id":   true,
	"endpoint":        true,
	"activity_hash":   true,
	"target":          true,
}

var initialized bool

// Init starts the Sentry client when SENTRY_DSN is set. A bad DSN is reported
// on stderr and leaves Sentry disabled; the app runs fine without it.
func Init(appName string, debug bool) bool {
	dsn := env.SentryDSN
	if dsn == "" {
		return false
	}

	release := env.Release
	if release == "" {
		release = "threepole@dev"
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Debug:            debug,
		Environment:      env.Environment,
		Release:          release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}
			event.Tags["app"] = appName
			event.Tags["goos"] = runtime.GOOS
			return event
		},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "sentry disabled: %v\n", err)
		return false
	}

	initialized = true
	return true
}

// Recover reports a panic and re-panics.
func Recover() {
	if err := recover(); err != nil {
		if initialized {
			hub := sentry.CurrentHub()
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetLevel(sentry.LevelFatal)
				scope.SetTag("panic", "true")
				if e, ok := err.(error); ok {
					hub.CaptureException(e)
				} else {
					hub.CaptureMessage(fmt.Sprintf("panic: %v", err))
				}
			})
			Flush()
		}
		panic(err)
	}
}

// scopeFields splits log fields into tags and extras.
func scopeFields(fields map[string]any) (map[string]string, map[string]any) {
	tags := make(map[string]string)
	extras := make(map[string]any)
	for k, v := range fields {
		if tagFields[k] {
			tags[k] = fmt.Sprint(v)
		} else {
			extras[k] = v
		}
	}
	return tags, extras
}

// CaptureError reports err grouped by its log key, so one failing refresh
// does not split into an issue per error message.
func CaptureError(level sentry.Level, logKey string, err error, fields map[string]any) {
	if !initialized {
		return
	}

	tags, extras := scopeFields(fields)
	sentry.CurrentHub().WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTag("log_key", logKey)
		scope.SetTags(tags)
		scope.SetExtras(extras)
		scope.SetFingerprint([]string{logKey})

		sentry.CurrentHub().CaptureException(err)
	})
}

func Flush() {
	if initialized {
		sentry.Flush(flushTimeout)
	}
}
