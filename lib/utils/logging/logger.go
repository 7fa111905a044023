package logging

// Logger defines the interface for logging
type Logger interface {
	Debug(key string, fields map[string]any) // Only when verbose logging is enabled
	Info(key string, fields map[string]any)
	Warn(key string, err error, fields map[string]any)  // monitored, but not alerted
	Error(key string, err error, fields map[string]any) // monitored/alerted
	Fatal(key string, err error, fields map[string]any) // Crashes with exit code 1
}
