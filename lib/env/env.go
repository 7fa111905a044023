package env

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// Bungie API
	BungieAPIKey  string
	BungieURLBase string

	// Overlay
	TargetExecutable string

	// Config
	ConfigDir string

	// Local servers
	UIPort      string
	MetricsPort string

	// Logging
	LogLevel   string
	StdoutPath string
	StderrPath string

	// Sentry
	SentryDSN   string
	Environment string
	Release     string
)

var envIssues []string

func init() {
	// Load .env file (ignore error - variables may be set via environment)
	godotenv.Load()
	Load()
}

// Load reads every variable from the process environment. It runs once at
// package init and may be called again after the environment changes.
func Load() {
	envIssues = nil

	BungieAPIKey = requireEnv("BUNGIE_API_KEY")
	BungieURLBase = strings.TrimSuffix(getEnvWithDefault("BUNGIE_URL_BASE", "https://www.bungie.net"), "/")

	TargetExecutable = getEnvWithDefault("TARGET_EXECUTABLE", "destiny2.exe")

	ConfigDir = getEnvWithDefault("THREEPOLE_CONFIG_DIR", defaultConfigDir())

	UIPort = getEnvWithDefault("UI_PORT", "7778")
	MetricsPort = getEnv("METRICS_PORT") // Optional, metrics are not served when empty

	LogLevel = getEnv("LOG_LEVEL")
	StdoutPath = getEnv("STDOUT")
	StderrPath = getEnv("STDERR")

	SentryDSN = getEnv("SENTRY_DSN")
	Environment = getEnvWithDefault("ENVIRONMENT", "development")
	Release = getEnv("RELEASE")
}

// Validate reports every required variable that was not set.
func Validate() error {
	if len(envIssues) > 0 {
		return errors.New("required environment variables are not set: " + strings.Join(envIssues, ", "))
	}
	return nil
}

func getEnv(key string) string {
	return os.Getenv(key)
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		envIssues = append(envIssues, key)
	}
	return val
}

func getEnvWithDefault(key string, defaultValue string) string {
	if val := getEnv(key); val != "" {
		return val
	}
	return defaultValue
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".threepole"
	}
	return filepath.Join(dir, "threepole")
}
