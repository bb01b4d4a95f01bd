package trace

import (
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogTracer forwards events to a zap logger at debug level.
type LogTracer struct {
	logger *zap.Logger
	level  Level
}

// NewLogTracer wraps logger. A nil logger becomes zap.NewNop().
func NewLogTracer(logger *zap.Logger, level Level) *LogTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTracer{logger: logger.Named("trace"), level: level}
}

// Emit logs the event with its fields.
func (t *LogTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ce := t.logger.Check(zapcore.DebugLevel, ev.Name)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 6+len(ev.Extra))
	fields = append(fields,
		zap.String("kind", ev.Kind.String()),
		zap.String("scope", ev.Scope.String()),
		zap.Uint64("seq", ev.Seq),
	)
	if ev.SpanID != 0 {
		fields = append(fields, zap.Uint64("span", ev.SpanID))
	}
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	if ev.Kind == KindSpanEnd {
		fields = append(fields, zap.Duration("elapsed", ev.Dur))
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, ev.Extra[k]))
	}
	ce.Write(fields...)
}

// Flush syncs the logger.
func (t *LogTracer) Flush() error {
	return t.logger.Sync()
}

// Close is Flush; the logger is owned by the caller.
func (t *LogTracer) Close() error {
	return t.Flush()
}

// Level returns the configured level.
func (t *LogTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *LogTracer) Enabled() bool {
	return t.level > LevelOff
}
