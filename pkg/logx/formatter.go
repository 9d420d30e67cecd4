package logx

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record is a single log event handed to a Formatter
type Record struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  Fields
	Err     error
}

// Formatter renders a record into a single output line
type Formatter interface {
	Format(r Record) string
}

// ============================================================================
// Console Formatter
// ============================================================================

// ConsoleFormatter renders human-readable single-line output
type ConsoleFormatter struct {
	TimeFormat string
}

func (f *ConsoleFormatter) Format(r Record) string {
	timeFormat := f.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	var b strings.Builder
	b.WriteString(r.Time.Format(timeFormat))
	b.WriteString(" [")
	b.WriteString(r.Level.String())
	b.WriteString("] ")
	b.WriteString(r.Message)

	for _, k := range sortedKeys(r.Fields) {
		b.WriteString(fmt.Sprintf(" %s=%v", k, r.Fields[k]))
	}
	return b.String()
}

// ============================================================================
// JSON Formatter
// ============================================================================

// JSONFormatter renders one JSON object per line
type JSONFormatter struct {
	TimeFormat string
}

func (f *JSONFormatter) Format(r Record) string {
	timeFormat := f.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	payload := make(map[string]interface{}, len(r.Fields)+3)
	for k, v := range r.Fields {
		payload[k] = v
	}
	payload["time"] = r.Time.Format(timeFormat)
	payload["level"] = r.Level.String()
	payload["message"] = r.Message

	data, err := json.Marshal(payload)
	if err != nil {
		// Fields with unmarshalable values fall back to the console shape
		return (&ConsoleFormatter{TimeFormat: f.TimeFormat}).Format(r)
	}
	return string(data)
}
