package logx

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Logger is a leveled logger writing through a Formatter
type Logger struct {
	mu        sync.Mutex
	level     Level
	formatter Formatter
	out       io.Writer

	// exit is overridable so Fatal paths are testable
	exit func(code int)
}

// NewLogger creates a logger from the given configuration
func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var formatter Formatter
	switch cfg.Format {
	case FormatJSON:
		formatter = &JSONFormatter{TimeFormat: cfg.TimeFormat}
	default:
		formatter = &ConsoleFormatter{TimeFormat: cfg.TimeFormat}
	}

	return &Logger{
		level:     cfg.Level,
		formatter: formatter,
		out:       cfg.Output,
		exit:      os.Exit,
	}
}

// SetLevel sets the minimum level that will be emitted
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the destination writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.level == LevelOff {
		return
	}

	line := l.formatter.Format(Record{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  fields,
		Err:     err,
	})
	fmt.Fprintln(l.out, line)
}

// WithFields creates an entry carrying the given fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithField creates an entry carrying a single field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithError creates an entry carrying an error field
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

// Debug logs at debug level
func (l *Logger) Debug(msg string) { l.log(LevelDebug, msg, nil, nil) }

// Info logs at info level
func (l *Logger) Info(msg string) { l.log(LevelInfo, msg, nil, nil) }

// Warn logs at warn level
func (l *Logger) Warn(msg string) { l.log(LevelWarn, msg, nil, nil) }

// Error logs at error level
func (l *Logger) Error(msg string) { l.log(LevelError, msg, nil, nil) }

// Fatal logs at fatal level and exits
func (l *Logger) Fatal(msg string) {
	l.log(LevelFatal, msg, nil, nil)
	l.exit(1)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	l.exit(1)
}

// ============================================================================
// Entry - chainable field accumulation
// ============================================================================

// Entry allows building up a log line with multiple fields
type Entry struct {
	logger *Logger
	fields Fields
	err    error
}

func newEntry(logger *Logger) *Entry {
	return &Entry{
		logger: logger,
		fields: make(Fields),
	}
}

// WithField adds a field to the entry (chainable)
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry (chainable)
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError adds an error field (chainable)
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// Debug logs the entry at debug level
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields, e.err) }

// Info logs the entry at info level
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields, e.err) }

// Warn logs the entry at warn level
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields, e.err) }

// Error logs the entry at error level
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields, e.err) }

// Debugf logs a formatted entry at debug level
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Infof logs a formatted entry at info level
func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Warnf logs a formatted entry at warn level
func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Errorf logs a formatted entry at error level
func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields, e.err)
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
