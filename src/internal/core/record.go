// FILE: asynclog/src/internal/core/record.go
package core

import "time"

// Fields holds bound context attached to a logger or record.
type Fields map[string]any

// Clone returns an independent copy of the fields.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns a new map containing f overlaid with overlay.
// Overlay values win on key collision. Neither input is mutated.
func (f Fields) Merge(overlay Fields) Fields {
	if len(overlay) == 0 {
		return f.Clone()
	}
	out := make(Fields, len(f)+len(overlay))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// LogRecord represents a single log event flowing through the pipeline.
// Records are immutable once constructed: Fields is copied at
// construction time, so later changes to the source map do not leak in.
type LogRecord struct {
	Time    time.Time `json:"time"`
	Logger  string    `json:"logger"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Fields  Fields    `json:"fields,omitempty"`
}

// NewRecord builds a record stamped with the current time.
func NewRecord(logger string, level Level, message string, fields Fields) LogRecord {
	return LogRecord{
		Time:    time.Now().UTC(),
		Logger:  logger,
		Level:   level,
		Message: message,
		Fields:  fields.Clone(),
	}
}
