// SPDX-License-Identifier: MIT
//
// Package log is the leveled logger shared by every cold-path component.
// The level is global and atomic so it can be changed from the CLI while
// capture goroutines are running. Hot-path code (the pixel kernels, the
// renderer's Push) never logs.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// --- Global Logger State ---

var currentLevel atomic.Uint32

// logger shows date and time with microseconds.
var logger = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects all log output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func shouldLog(level LogLevel) bool {
	return level >= GetLevel()
}

// output writes one line. The level tag is padded to a fixed width so
// messages line up.
func output(level LogLevel, component, msg string) {
	if component != "" {
		msg = component + ": " + msg
	}
	logger.Printf("[%-5s] %s", level, msg)
}

// --- Component Loggers ---

// Logger prefixes every message with a component name, e.g. "renderer".
type Logger struct {
	component string
}

// New returns a Logger for the named component.
func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) Debugf(format string, v ...any) {
	if shouldLog(LevelDebug) {
		output(LevelDebug, l.component, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Infof(format string, v ...any) {
	if shouldLog(LevelInfo) {
		output(LevelInfo, l.component, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Warnf(format string, v ...any) {
	if shouldLog(LevelWarn) {
		output(LevelWarn, l.component, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Errorf(format string, v ...any) {
	if shouldLog(LevelError) {
		output(LevelError, l.component, fmt.Sprintf(format, v...))
	}
}

// --- Package-level Functions ---

// Debugf logs a formatted debug message if the level is appropriate.
func Debugf(format string, v ...any) {
	if shouldLog(LevelDebug) {
		output(LevelDebug, "", fmt.Sprintf(format, v...))
	}
}

// Infof logs a formatted info message if the level is appropriate.
func Infof(format string, v ...any) {
	if shouldLog(LevelInfo) {
		output(LevelInfo, "", fmt.Sprintf(format, v...))
	}
}

// Warnf logs a formatted warning message if the level is appropriate.
func Warnf(format string, v ...any) {
	if shouldLog(LevelWarn) {
		output(LevelWarn, "", fmt.Sprintf(format, v...))
	}
}

// Errorf logs a formatted error message if the level is appropriate.
func Errorf(format string, v ...any) {
	if shouldLog(LevelError) {
		output(LevelError, "", fmt.Sprintf(format, v...))
	}
}

// Fatalf logs a formatted fatal message and exits the application.
// Fatal messages are always logged regardless of the current level.
func Fatalf(format string, v ...any) {
	output(LevelFatal, "", fmt.Sprintf(format, v...))
	os.Exit(1)
}
