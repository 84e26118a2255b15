package log

import (
	"context"
	"io"
	"log/slog"
)

type Key struct{}

var LoggerKey = Key{}

// LevelTrace is a custom trace level for slog
// Using LevelDebug - 4 which equals -8
const LevelTrace = slog.LevelDebug - 4

func ConfigLevelStringToSlogLevel(level string) slog.Level {
	switch level {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// NewLogger builds the CLI logger: structured JSON records go to file at the
// configured level and error records are mirrored to errOut in the friendly
// console format. A nil file discards everything but the mirror.
func NewLogger(file io.Writer, errOut io.Writer, level string) *slog.Logger {
	var primary slog.Handler
	if file != nil {
		primary = slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: ConfigLevelStringToSlogLevel(level),
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey && a.Value.Any() == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
				return a
			},
		})
	}

	var secondary slog.Handler
	if errOut != nil {
		secondary = NewFriendlyErrorHandler(errOut)
	}

	return slog.New(NewDualHandler(primary, secondary))
}

// FromContext returns the logger stored in ctx, or a logger that discards
// all records when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.New(slog.DiscardHandler)
}

// WithLogger stores logger in ctx under LoggerKey.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, LoggerKey, logger)
}
