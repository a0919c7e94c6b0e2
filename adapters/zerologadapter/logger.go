package zerologadapter

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// Logger adapts a zerolog.Logger.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger wraps the given zerolog.Logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// NewJSONLogger creates a timestamped JSON logger writing to w at the given level.
func NewJSONLogger(w io.Writer, level zerolog.Level) *Logger {
	return NewLogger(zerolog.New(w).Level(level).With().Timestamp().Logger())
}

// NewConsoleLogger creates a human-readable logger writing to w at the given level.
func NewConsoleLogger(w io.Writer, level zerolog.Level) *Logger {
	return NewLogger(zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { write(l.logger.Debug(), msg, args) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { write(l.logger.Info(), msg, args) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { write(l.logger.Warn(), msg, args) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { write(l.logger.Error(), msg, args) }

// DebugContext logs a debug message correlated with the span in ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	write(withSpan(ctx, l.logger.Debug()), msg, args)
}

// InfoContext logs an info message correlated with the span in ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	write(withSpan(ctx, l.logger.Info()), msg, args)
}

// WarnContext logs a warning message correlated with the span in ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	write(withSpan(ctx, l.logger.Warn()), msg, args)
}

// ErrorContext logs an error message correlated with the span in ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	write(withSpan(ctx, l.logger.Error()), msg, args)
}

// write is a no-op for disabled levels, zerolog returns a nil event then.
func write(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}

	if len(args) > 0 {
		event = event.Fields(args)
	}

	event.Msg(msg)
}

func withSpan(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if event == nil {
		return nil
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return event
	}

	return event.Str(fieldTraceID, spanCtx.TraceID().String()).Str(fieldSpanID, spanCtx.SpanID().String())
}

var (
	_ shell.Logger           = (*Logger)(nil)
	_ shell.ContextualLogger = (*Logger)(nil)
)
