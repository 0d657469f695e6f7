// Package errors provides error types and logging utilities for jcommit.
package errors

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging with verbose mode support.
type Logger struct {
	mu      sync.Mutex
	zl      zerolog.Logger
	verbose bool
}

// Global logger instance
var defaultLogger = NewLogger(os.Stderr, false)

func newZerolog(output io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.ErrorLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// NewLogger creates a new logger writing to output.
func NewLogger(output io.Writer, verbose bool) *Logger {
	return &Logger{
		zl:      newZerolog(output, verbose),
		verbose: verbose,
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.verbose = verbose
	if verbose {
		defaultLogger.zl = defaultLogger.zl.Level(zerolog.DebugLevel)
	} else {
		defaultLogger.zl = defaultLogger.zl.Level(zerolog.ErrorLevel)
	}
}

// IsVerbose returns whether verbose logging is enabled.
func IsVerbose() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.verbose
}

// SetOutput sets the output writer for the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.zl = newZerolog(w, defaultLogger.verbose)
}

func (l *Logger) logger() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	zl := l.logger()
	zl.Error().Msgf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	zl := l.logger()
	zl.Warn().Msgf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	zl := l.logger()
	zl.Info().Msgf(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	zl := l.logger()
	zl.Debug().Msgf(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func (l *Logger) LogAPIRequest(endpoint, model string, turns, promptLength int) {
	zl := l.logger()
	zl.Debug().
		Str("endpoint", endpoint).
		Str("model", model).
		Int("turns", turns).
		Int("prompt_length", promptLength).
		Msg("API request")
}

// LogAPIResponse logs an API response in verbose mode.
func (l *Logger) LogAPIResponse(statusCode int, duration time.Duration) {
	zl := l.logger()
	zl.Debug().
		Int("status", statusCode).
		Dur("duration", duration).
		Msg("API response")
}

// LogStreamEnd logs the end of a completion stream.
func (l *Logger) LogStreamEnd(fragments, skipped int, duration time.Duration) {
	zl := l.logger()
	zl.Debug().
		Int("fragments", fragments).
		Int("skipped_frames", skipped).
		Dur("duration", duration).
		Msg("stream finished")
}

// Package-level logging functions using the default logger

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func LogAPIRequest(endpoint, model string, turns, promptLength int) {
	defaultLogger.LogAPIRequest(endpoint, model, turns, promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func LogAPIResponse(statusCode int, duration time.Duration) {
	defaultLogger.LogAPIResponse(statusCode, duration)
}

// LogStreamEnd logs the end of a completion stream.
func LogStreamEnd(fragments, skipped int, duration time.Duration) {
	defaultLogger.LogStreamEnd(fragments, skipped, duration)
}
