package handler

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/formatter"
)

// StructuredHandler writes structured log lines to a file or stream,
// intended for machine search and filtering. File targets rotate via
// lumberjack.
type StructuredHandler struct {
	writer          io.Writer
	closer          io.Closer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	minLevel        core.Level
	maxLevel        core.Level
	mu              sync.Mutex
}

// StructuredConfig holds configuration for structured handler
type StructuredConfig struct {
	// Filename is the path to the log file. Leave empty to write to
	// Writer instead.
	Filename string
	// Writer is the stream target used when Filename is empty
	Writer io.Writer
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// MinLevel is the severity threshold (default: DebugLevel)
	MinLevel core.Level
	// MaxLevel caps the accepted severity, inclusive (zero = no cap)
	MaxLevel core.Level
	// MaxSizeMB is the maximum file size in megabytes before rotation
	// (default: 100)
	MaxSizeMB int
	// MaxBackups is the maximum number of rotated files to retain
	// (0 = keep all)
	MaxBackups int
	// MaxAgeDays is the maximum age of rotated files in days
	// (0 = keep forever)
	MaxAgeDays int
	// Compress enables gzip compression of rotated files
	Compress bool
}

// NewStructuredHandler creates a new structured handler
func NewStructuredHandler(cfg StructuredConfig) (*StructuredHandler, error) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter(formatter.Config{})
	}

	if cfg.MaxLevel == 0 {
		cfg.MaxLevel = core.FatalLevel
	}

	h := &StructuredHandler{
		formatter: cfg.Formatter,
		minLevel:  cfg.MinLevel,
		maxLevel:  cfg.MaxLevel,
	}

	switch {
	case cfg.Filename != "":
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		h.writer = lj
		h.closer = lj
	case cfg.Writer != nil:
		h.writer = cfg.Writer
	default:
		return nil, fmt.Errorf("structured handler requires a filename or a writer")
	}

	// Cache WriterFormatter for zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	return h, nil
}

// Accepts reports whether the record falls inside the severity band
func (h *StructuredHandler) Accepts(record *core.Record) bool {
	return record.Level >= h.minLevel && record.Level <= h.maxLevel
}

// Emit formats and writes a record
func (h *StructuredHandler) Emit(record *core.Record) error {
	if h.writerFormatter != nil {
		h.mu.Lock()
		err := h.writerFormatter.FormatTo(record, h.writer)
		h.mu.Unlock()
		return err
	}

	data, err := h.formatter.Format(record)
	if err != nil {
		return err
	}

	h.mu.Lock()
	_, writeErr := h.writer.Write(data)
	h.mu.Unlock()

	return writeErr
}

// Close closes the underlying file, if any
func (h *StructuredHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closer != nil {
		return h.closer.Close()
	}
	return nil
}
