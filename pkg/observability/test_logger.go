package observability

import (
	"sync"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (r *recorder) append(entry LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// TestLogger captures entries in memory for test assertions.
//
// Loggers derived via WithField/WithFields share the same sink, so
// assertions see everything logged during a synthesis pass.
type TestLogger struct {
	rec    *recorder
	fields map[string]any
}

var _ StructuredLogger = (*TestLogger)(nil)

func NewTestLogger() *TestLogger {
	return &TestLogger{rec: &recorder{}}
}

func (l *TestLogger) log(level, message string, fields ...map[string]any) {
	merged := MergeFields(append([]map[string]any{l.fields}, fields...)...)
	l.rec.append(LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Fields:    merged,
	})
}

func (l *TestLogger) Debug(message string, fields ...map[string]any) {
	l.log("debug", message, fields...)
}

func (l *TestLogger) Info(message string, fields ...map[string]any) {
	l.log("info", message, fields...)
}

func (l *TestLogger) Warn(message string, fields ...map[string]any) {
	l.log("warn", message, fields...)
}

func (l *TestLogger) Error(message string, fields ...map[string]any) {
	l.log("error", message, fields...)
}

func (l *TestLogger) WithField(key string, value any) StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

func (l *TestLogger) WithFields(fields map[string]any) StructuredLogger {
	return &TestLogger{rec: l.rec, fields: MergeFields(l.fields, fields)}
}

// Entries returns a copy of everything captured so far.
func (l *TestLogger) Entries() []LogEntry {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	out := make([]LogEntry, len(l.rec.entries))
	copy(out, l.rec.entries)
	return out
}

// HasMessage reports whether a message was logged at the given level.
func (l *TestLogger) HasMessage(level, message string) bool {
	for _, entry := range l.Entries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// Reset discards captured entries.
func (l *TestLogger) Reset() {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.entries = nil
}
