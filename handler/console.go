package handler

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/formatter"
)

// ConsoleHandler writes human-readable log lines to a terminal stream.
type ConsoleHandler struct {
	writer          io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	minLevel        core.Level
	maxLevel        core.Level
	mu              sync.Mutex
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stderr)
	Writer io.Writer
	// Formatter to use (default: colourized TextFormatter)
	Formatter formatter.Formatter
	// MinLevel is the severity threshold (default: DebugLevel)
	MinLevel core.Level
	// MaxLevel caps the accepted severity, inclusive (zero = no cap).
	// A console handler on stdout with MaxLevel InfoLevel keeps error
	// output on the stderr handler alone.
	MaxLevel core.Level
	// NoColor disables colour even when the writer is a terminal
	NoColor bool
}

// NewConsoleHandler creates a new console handler. Colour is enabled
// only when the target stream is a terminal.
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}

	if tf, ok := cfg.Formatter.(*formatter.TextFormatter); ok {
		tf.SetColor(!cfg.NoColor && isTerminal(cfg.Writer))
	}

	if cfg.MaxLevel == 0 {
		cfg.MaxLevel = core.FatalLevel
	}

	h := &ConsoleHandler{
		writer:    cfg.Writer,
		formatter: cfg.Formatter,
		minLevel:  cfg.MinLevel,
		maxLevel:  cfg.MaxLevel,
	}

	// Cache WriterFormatter for zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	return h
}

// isTerminal reports whether the writer is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Accepts reports whether the record falls inside the severity band
func (h *ConsoleHandler) Accepts(record *core.Record) bool {
	return record.Level >= h.minLevel && record.Level <= h.maxLevel
}

// Emit formats and writes a record
func (h *ConsoleHandler) Emit(record *core.Record) error {
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

// Close closes the handler. The console stream is owned by the process,
// so there is nothing to release.
func (h *ConsoleHandler) Close() error {
	return nil
}
