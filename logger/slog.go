package logger

import (
	"context"
	"log/slog"

	"github.com/fieldline/logpipe/core"
)

// SlogHandler is an adapter that implements slog.Handler on top of a
// pipeline Logger, so stdlib log/slog call-sites feed the same queue
// and destinations as everything else.
type SlogHandler struct {
	logger *Logger
	attrs  []core.Field
	group  string
}

// NewSlogHandler creates a slog.Handler that emits through the given Logger.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToCore(level) >= s.logger.level
}

// Handle converts a slog.Record and pushes it into the pipeline.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]core.Field, 0, len(s.attrs)+record.NumAttrs())
	fields = append(fields, s.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendSlogAttr(fields, s.group, a)
		return true
	})

	s.logger.log(slogLevelToCore(record.Level), record.Message, fields)
	return nil
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendSlogAttr(newAttrs, s.group, a)
	}
	return &SlogHandler{
		logger: s.logger,
		attrs:  newAttrs,
		group:  s.group,
	}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newGroup := name
	if s.group != "" {
		newGroup = s.group + "." + name
	}
	newAttrs := make([]core.Field, len(s.attrs))
	copy(newAttrs, s.attrs)
	return &SlogHandler{
		logger: s.logger,
		attrs:  newAttrs,
		group:  newGroup,
	}
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// appendSlogAttr converts a slog.Attr into fields, flattening groups
// into dot-prefixed keys, and appends them to the given slice.
func appendSlogAttr(fields []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		// Every group member becomes a prefixed field; an inline group
		// (empty key) keeps the enclosing prefix.
		prefix := joinGroupKey(group, a.Key)
		for _, member := range a.Value.Group() {
			fields = appendSlogAttr(fields, prefix, member)
		}
		return fields
	}

	key := joinGroupKey(group, a.Key)
	switch a.Value.Kind() {
	case slog.KindString:
		return append(fields, core.Field{Key: key, Type: core.StringType, Str: a.Value.String()})
	case slog.KindInt64:
		return append(fields, core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()})
	case slog.KindFloat64:
		return append(fields, core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()})
	case slog.KindBool:
		val := int64(0)
		if a.Value.Bool() {
			val = 1
		}
		return append(fields, core.Field{Key: key, Type: core.BoolType, Int64: val})
	case slog.KindTime:
		return append(fields, core.Field{Key: key, Type: core.TimeType, Int64: a.Value.Time().UnixNano()})
	case slog.KindDuration:
		return append(fields, core.Field{Key: key, Type: core.DurationType, Int64: int64(a.Value.Duration())})
	default:
		return append(fields, core.Field{Key: key, Type: core.AnyType, Any: a.Value.Any()})
	}
}

func joinGroupKey(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}
