// Package logger provides structured JSON logging and run metrics for the
// scraper.
//
// Every entry is a single JSON line carrying a timestamp, level, message,
// optional fields and optional error text. A Logger can be narrowed with
// With so that region-scoped entries always carry the region and URL:
//
//	log := logger.With(logger.Fields{"region": "Alabama", "url": u})
//	log.Warn("region skipped", logger.Fields{"stage": "extract"})
//
// Metrics keeps counters (regions written, skipped) and timings (fetch and
// per-region durations) that are summarized at the end of a run.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("unknown log level: %q", s)
	}
	return l, nil
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

type sink struct {
	mu  sync.Mutex
	out io.Writer
}

// Logger writes structured entries at or above its minimum level.
type Logger struct {
	minLevel Level
	sink     *sink
	base     Fields
}

var defaultLogger = New(LevelInfo, os.Stderr)

// New creates a logger writing to output.
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		sink:     &sink{out: output},
	}
}

// SetDefault replaces the package-level logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// With returns a logger that adds fields to every entry. Fields passed to
// individual calls win over these.
func (l *Logger) With(fields Fields) *Logger {
	base := make(Fields, len(l.base)+len(fields))
	maps.Copy(base, l.base)
	maps.Copy(base, fields)
	return &Logger{minLevel: l.minLevel, sink: l.sink, base: base}
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    l.merge(fields),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if marshalErr != nil {
		// Fallback to plain text if JSON marshal fails
		fmt.Fprintf(l.sink.out, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}
	fmt.Fprintln(l.sink.out, string(data))
}

func (l *Logger) merge(fields Fields) Fields {
	if len(l.base) == 0 {
		return fields
	}
	out := make(Fields, len(l.base)+len(fields))
	maps.Copy(out, l.base)
	maps.Copy(out, fields)
	return out
}

func (l *Logger) shouldLog(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// Debug logs detailed diagnostics such as marker polling.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs normal progress.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a recoverable problem, such as a skipped region.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// WarnErr is Warn with an error attached.
func (l *Logger) WarnErr(message string, fields Fields, err error) {
	l.log(LevelWarn, message, fields, err)
}

// Error logs a failure that stops the run.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

func With(fields Fields) *Logger {
	return defaultLogger.With(fields)
}
