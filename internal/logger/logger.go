// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"sync"
)

// Log levels accepted in configuration.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process logger. Only the first call's level is used.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, nil)
	})
	return globalLogger
}

// New builds an independent logger writing to w (stdout when nil).
func New(level string, w io.Writer) *Logger {
	return newZapLogger(level, w)
}

// ValidateLevel rejects level strings the logger would silently map to debug.
func ValidateLevel(level string) error {
	switch level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return nil
	}
	return fmt.Errorf("unknown log level %q", level)
}
