package observability

import "time"

// LogEntry represents a structured log entry.
//
// This type is intentionally small and stable so implementations can adapt it to their backend.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// StructuredLogger is the logging surface used during deployment synthesis.
//
// Synthesis runs single-threaded and finishes in one pass, so the surface is
// deliberately narrow: leveled messages plus ambient fields. Anything the
// builders decide to skip or omit (a composite with a missing constituent, a
// geo rule with no countries) goes through Warn so operators can see it in
// the synth output.
type StructuredLogger interface {
	Debug(message string, fields ...map[string]any)
	Info(message string, fields ...map[string]any)
	Warn(message string, fields ...map[string]any)
	Error(message string, fields ...map[string]any)

	WithField(key string, value any) StructuredLogger
	WithFields(fields map[string]any) StructuredLogger
}

// MergeFields flattens variadic field maps into one map.
//
// Later maps win on key collisions. Returns nil when no fields are present.
func MergeFields(fields ...map[string]any) map[string]any {
	var merged map[string]any
	for _, m := range fields {
		if len(m) == 0 {
			continue
		}
		if merged == nil {
			merged = make(map[string]any, len(m))
		}
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
