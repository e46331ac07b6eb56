package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/dispatch"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger is the emission side of the pipeline (immutable). A Logger
// never writes to destinations itself: it applies its severity filter
// and pushes surviving records onto the shared dispatch queue.
type Logger struct {
	name       string
	level      core.Level
	dispatcher *dispatch.Dispatcher
	fields     []core.Field
	now        func() time.Time
}

func newLogger(name string, level core.Level, d *dispatch.Dispatcher, now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{
		name:       name,
		level:      level,
		dispatcher: d,
		now:        now,
	}
}

// Name returns the logger's registry name
func (l *Logger) Name() string {
	return l.name
}

// Level returns the logger's minimum severity
func (l *Logger) Level() core.Level {
	return l.level
}

// With creates a new Logger with additional bound fields (immutable
// operation). The child shares the parent's queue and level.
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &Logger{
		name:       l.name,
		level:      l.level,
		dispatcher: l.dispatcher,
		fields:     newFields,
		now:        l.now,
	}
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	// Level check optimization - exit early BEFORE any allocations
	if level < l.level {
		return
	}
	l.log(level, msg, fields)
}

// log is the internal logging method that takes a pre-allocated slice
func (l *Logger) log(level core.Level, msg string, fields []core.Field) {
	if l.dispatcher == nil {
		return
	}

	// Get record from pool AFTER level check
	record := core.GetRecord()
	record.Time = l.now()
	record.Logger = l.name
	record.Level = level
	record.Message = msg

	// Add logger's bound fields
	if len(l.fields) > 0 {
		record.Fields = append(record.Fields, l.fields...)
	}

	// Add provided fields; the conventional error binding is lifted
	// into the record's error context instead of the payload.
	for _, f := range fields {
		if msg, ok := f.ErrorContext(); ok && record.Err == "" {
			record.Err = msg
			continue
		}
		record.Fields = append(record.Fields, f)
	}

	// On rejection ownership stays here, so recycle the record.
	if !l.dispatcher.Enqueue(record) {
		core.PutRecord(record)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, fields)
}

// Fatal logs a fatal message, flushes the pipeline, and exits the
// program with os.Exit(1)
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	l.log(core.FatalLevel, msg, fields)
	if l.dispatcher != nil {
		// The worker bounds its own drain by the configured grace
		// period; one extra second of headroom covers handler Close.
		ctx, cancel := context.WithTimeout(context.Background(), l.dispatcher.DrainGracePeriod()+time.Second)
		defer cancel()
		_ = l.dispatcher.Shutdown(ctx)
	}
	osExit(1)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a fatal message with formatting, flushes the pipeline,
// and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Fatal(fmt.Sprintf(format, args...))
}
