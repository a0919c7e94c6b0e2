package config

import (
	"errors"
	"io"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/AntonStoeckl/bookshelf-viewmodel/adapters/oteladapter"
	"github.com/AntonStoeckl/bookshelf-viewmodel/adapters/zerologadapter"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
)

// Logger is satisfied by every logger NewLogger builds.
type Logger interface {
	shell.Logger
	shell.ContextualLogger
}

// NewLogger builds the logger for the configured format and level, writing to w.
// The otel format ignores w and level: records go to the global LoggerProvider,
// see NewObservabilityProviders.
func NewLogger(w io.Writer, format string, level string) (Logger, error) {
	slogLevel, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	switch format {
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel})), nil
	case LogFormatText:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})), nil
	case LogFormatZerolog:
		return zerologadapter.NewJSONLogger(w, toZerologLevel(slogLevel)), nil
	case LogFormatOTel:
		return oteladapter.NewSlogBridgeLogger(ServiceName), nil
	default:
		return nil, errors.Join(ErrInvalidConfig, errors.New("unsupported log format: "+format))
	}
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug, nil
	case LogLevelInfo:
		return slog.LevelInfo, nil
	case LogLevelWarn:
		return slog.LevelWarn, nil
	case LogLevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Join(ErrInvalidConfig, errors.New("unsupported log level: "+level))
	}
}

func toZerologLevel(level slog.Level) zerolog.Level {
	switch level {
	case slog.LevelDebug:
		return zerolog.DebugLevel
	case slog.LevelWarn:
		return zerolog.WarnLevel
	case slog.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
