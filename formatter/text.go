package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/fieldline/logpipe/core"
)

// TextFormatter formats log records as human-readable text, optionally
// colourizing the level token for terminal output.
type TextFormatter struct {
	Config

	// levelTokens holds the pre-rendered " [LEVEL] " segment per level,
	// with ANSI colour codes baked in when colour is enabled.
	levelTokens [len(levelColors)]string
}

// levelColors maps each severity to its terminal colour.
var levelColors = [...]*color.Color{
	core.DebugLevel: color.New(color.FgCyan),
	core.InfoLevel:  color.New(color.FgGreen),
	core.WarnLevel:  color.New(color.FgYellow),
	core.ErrorLevel: color.New(color.FgRed),
	core.FatalLevel: color.New(color.FgRed, color.Bold),
}

var plainLevelTokens = [...]string{
	core.DebugLevel: " [DEBUG] ",
	core.InfoLevel:  " [INFO] ",
	core.WarnLevel:  " [WARN] ",
	core.ErrorLevel: " [ERROR] ",
	core.FatalLevel: " [FATAL] ",
}

// NewTextFormatter creates a new text formatter with colour disabled.
// Handlers that write to a terminal call SetColor(true) after probing
// the target stream.
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	f := &TextFormatter{Config: cfg}
	f.SetColor(false)
	return f
}

// SetColor enables or disables colour output. Level tokens are rendered
// once here so the per-record path stays allocation-free.
func (f *TextFormatter) SetColor(enabled bool) {
	for lvl, plain := range plainLevelTokens {
		if enabled {
			// EnableColor overrides the package-level TTY heuristic,
			// which cannot see the final destination because records
			// are rendered into a buffer first.
			c := *levelColors[lvl]
			c.EnableColor()
			f.levelTokens[lvl] = c.Sprint(plain)
		} else {
			f.levelTokens[lvl] = plain
		}
	}
}

// Format formats a record as text
func (f *TextFormatter) Format(record *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(record, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a record and writes it directly to the writer
func (f *TextFormatter) FormatTo(record *core.Record, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(record, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// formatToBuffer writes the formatted record into the given buffer
func (f *TextFormatter) formatToBuffer(record *core.Record, buf *bytes.Buffer) {
	// Timestamp - use AppendFormat to avoid string allocation
	buf.Write(record.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	// Level - use pre-rendered token
	if int(record.Level) < len(f.levelTokens) {
		buf.WriteString(f.levelTokens[record.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	// Logger name
	if record.Logger != "" {
		buf.WriteString(record.Logger)
		buf.WriteString(": ")
	}

	// Message
	buf.WriteString(record.Message)

	// Fields
	for _, field := range record.Fields {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	}

	// Error context
	if record.Err != "" {
		buf.WriteString(" error=")
		buf.WriteString(record.Err)
	}

	buf.WriteByte('\n')
}
