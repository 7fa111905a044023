package logging

// Log levels
const (
	DEBUG = "DEBUG" // Diagnostic information when verbose logging is enabled
	INFO  = "INFO"  // Generally useful information (task start/stop, configuration assumptions)
	WARN  = "WARN"  // Recoverable issues (failed ticks, retries, missing secondary data) - no alerts
	ERROR = "ERROR" // Operation-fatal errors requiring user intervention - triggers Sentry
	FATAL = "FATAL" // Process-fatal errors that exit the application
)

const (
	Error = "error"
	Fatal = "fatal"
	Warn  = "warn"
	Info  = "info"
	Debug = "debug"
)

// Standard logging field keys - use constants to ensure consistency
const (
	// Core fields
	ACTION = "action"
	CACHE  = "cache"
	COUNT  = "count"
	KEY    = "key"
	NAME   = "name"
	PATH   = "path"
	PHASE  = "phase"
	REASON = "reason"
	STATUS = "status"
	TYPE   = "type"
	VALUE  = "value"

	// Infrastructure fields
	ADDRESS = "address"
	PORT    = "port"
	SOURCE  = "source"

	// Network/HTTP fields
	ENDPOINT          = "endpoint"
	ERROR_STATUS      = "error_status"
	METHOD            = "method"
	STATUS_CODE       = "status_code"
	BUNGIE_ERROR_CODE = "bungie_error_code"
	THROTTLE_SECONDS  = "throttle_seconds"
	RATE              = "rate"

	// Player/Activity fields
	ACTIVITY_HASH   = "activity_hash"
	CHARACTER_ID    = "character_id"
	CUTOFF          = "cutoff"
	INSTANCE_ID     = "instance_id"
	MEMBERSHIP_ID   = "membership_id"
	MEMBERSHIP_TYPE = "membership_type"
	PAGE            = "page"
	START_DATE      = "start_date"

	// Window fields
	EXECUTABLE = "executable"
	PID        = "pid"
	WINDOW     = "window"
	RECT       = "rect"

	// Process/Operation fields
	ATTEMPT    = "attempt"
	COMMAND    = "command"
	DIRECTORY  = "directory"
	EVENT      = "event"
	FILENAME   = "filename"
	RUN_ID     = "run_id"
	SUBSCRIBER = "subscriber"
	TICK       = "tick"

	// Timing/Duration fields
	DURATION = "duration"
	INTERVAL = "interval"
)
