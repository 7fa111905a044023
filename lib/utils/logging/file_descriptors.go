package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"threepole/lib/env"

	"github.com/rs/zerolog"
)

var (
	outputMu  sync.RWMutex
	stdoutLog zerolog.Logger
	stderrLog zerolog.Logger
)

func init() {
	var (
		stdoutWriter io.Writer = os.Stdout
		stderrWriter io.Writer = os.Stderr
	)

	if env.StdoutPath != "" {
		file, err := openLogFile(env.StdoutPath)
		if err != nil {
			panic(fmt.Errorf("failed to open stdout file: %v", err))
		}
		stdoutWriter = io.MultiWriter(os.Stdout, file)
	}

	if env.StderrPath != "" {
		file, err := openLogFile(env.StderrPath)
		if err != nil {
			panic(fmt.Errorf("failed to open stderr file: %v", err))
		}
		stderrWriter = io.MultiWriter(os.Stderr, file)
	}

	SetOutput(stdoutWriter, stderrWriter)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// SetOutput replaces the writers used for info/debug and warn/error output.
func SetOutput(stdout, stderr io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	stdoutLog = newZerolog(stdout)
	stderrLog = newZerolog(stderr)
}

func newZerolog(w io.Writer) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339Nano,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			componentField,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{componentField},
	}
	return zerolog.New(console).Level(zerolog.TraceLevel).With().Timestamp().Logger()
}

func writerFor(level string) zerolog.Logger {
	outputMu.RLock()
	defer outputMu.RUnlock()
	switch level {
	case WARN, ERROR, FATAL:
		return stderrLog
	default:
		return stdoutLog
	}
}
