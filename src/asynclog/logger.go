// FILE: asynclog/src/asynclog/logger.go
package asynclog

import (
	"fmt"

	"asynclog/src/internal/core"
)

// Logger is a named handle into the hub's pipeline. It is cheap to copy
// around and safe for concurrent use: the bound context is never
// mutated after construction.
type Logger struct {
	hub    *Hub
	name   string
	fields core.Fields
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

// Bind returns a new logger whose bound context is the union of the
// current context and fields, with fields winning on key collision.
// The receiver is left untouched, so handles can be shared freely:
//
//	reqLog := logger.Bind(asynclog.Fields{"request_id": id})
func (l *Logger) Bind(fields Fields) *Logger {
	return &Logger{
		hub:    l.hub,
		name:   l.name,
		fields: l.fields.Merge(fields),
	}
}

// Fields returns a copy of the bound context.
func (l *Logger) Fields() Fields {
	return l.fields.Clone()
}

// Debug emits a debug record.
func (l *Logger) Debug(message string) {
	l.emit(core.LevelDebug, message)
}

// Info emits an info record.
func (l *Logger) Info(message string) {
	l.emit(core.LevelInfo, message)
}

// Warning emits a warning record.
func (l *Logger) Warning(message string) {
	l.emit(core.LevelWarning, message)
}

// Error emits an error record.
func (l *Logger) Error(message string) {
	l.emit(core.LevelError, message)
}

// Critical emits a critical record.
func (l *Logger) Critical(message string) {
	l.emit(core.LevelCritical, message)
}

// Debugf emits a debug record with fmt.Sprintf formatting.
func (l *Logger) Debugf(format string, args ...any) {
	l.emit(core.LevelDebug, fmt.Sprintf(format, args...))
}

// Infof emits an info record with fmt.Sprintf formatting.
func (l *Logger) Infof(format string, args ...any) {
	l.emit(core.LevelInfo, fmt.Sprintf(format, args...))
}

// Warningf emits a warning record with fmt.Sprintf formatting.
func (l *Logger) Warningf(format string, args ...any) {
	l.emit(core.LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf emits an error record with fmt.Sprintf formatting.
func (l *Logger) Errorf(format string, args ...any) {
	l.emit(core.LevelError, fmt.Sprintf(format, args...))
}

// Criticalf emits a critical record with fmt.Sprintf formatting.
func (l *Logger) Criticalf(format string, args ...any) {
	l.emit(core.LevelCritical, fmt.Sprintf(format, args...))
}

// emit builds the record, capturing the bound context and timestamp,
// and enqueues it. Never blocks on backend I/O.
func (l *Logger) emit(level core.Level, message string) {
	l.hub.enqueue(core.NewRecord(l.name, level, message, l.fields))
}
