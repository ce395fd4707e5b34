package observability

type noOpLogger struct{}

var _ StructuredLogger = (*noOpLogger)(nil)

// NewNoOpLogger returns a logger that discards everything.
func NewNoOpLogger() StructuredLogger {
	return &noOpLogger{}
}

func (l *noOpLogger) Debug(string, ...map[string]any) {}
func (l *noOpLogger) Info(string, ...map[string]any)  {}
func (l *noOpLogger) Warn(string, ...map[string]any)  {}
func (l *noOpLogger) Error(string, ...map[string]any) {}

func (l *noOpLogger) WithField(string, any) StructuredLogger     { return l }
func (l *noOpLogger) WithFields(map[string]any) StructuredLogger { return l }
