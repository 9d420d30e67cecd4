package logx

import "os"

var (
	// defaultLogger is the global logger instance
	defaultLogger *Logger
)

func init() {
	// Initialize with config from environment
	defaultLogger = NewLogger(LoadFromEnv())
}

// SetDefaultLogger sets the default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the default logger
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// SetLevel sets the log level for the default logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetOutput sets the output for the default logger
func SetOutput(w *os.File) {
	defaultLogger.SetOutput(w)
}

// ============================================================================
// Simple Logging Functions
// ============================================================================

// Debug logs a debug level message
func Debug(msg string) { defaultLogger.Debug(msg) }

// Info logs an info level message
func Info(msg string) { defaultLogger.Info(msg) }

// Warn logs a warning level message
func Warn(msg string) { defaultLogger.Warn(msg) }

// Error logs an error level message
func Error(msg string) { defaultLogger.Error(msg) }

// Fatal logs a fatal level message and exits
func Fatal(msg string) { defaultLogger.Fatal(msg) }

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) { defaultLogger.Debugf(format, args...) }

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) { defaultLogger.Infof(format, args...) }

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) { defaultLogger.Warnf(format, args...) }

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) { defaultLogger.Errorf(format, args...) }

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...interface{}) { defaultLogger.Fatalf(format, args...) }

// ============================================================================
// Structured Logging
// ============================================================================

// WithFields creates a new logger entry with fields
func WithFields(fields Fields) *Entry {
	return defaultLogger.WithFields(fields)
}

// WithField creates a new logger entry with a single field
func WithField(key string, value interface{}) *Entry {
	return defaultLogger.WithField(key, value)
}

// WithError creates a new logger entry with an error field
func WithError(err error) *Entry {
	return defaultLogger.WithError(err)
}
