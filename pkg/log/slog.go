package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	mserrors "github.com/YuminosukeSato/minisk/pkg/errors"
)

// ErrAttrKey is the attribute key of the error passed to Logger.Error.
const ErrAttrKey = "error"

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// SlogProvider is a LoggerProvider on log/slog. Records are JSON lines with
// the same "level" and "message" keys as the zerolog provider, and errors
// carry their stacktrace through ErrFmtHandler.
type SlogProvider struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

// NewSlogProvider creates a provider writing to stderr.
func NewSlogProvider(level Level) *SlogProvider {
	return NewSlogProviderWithWriter(os.Stderr, level)
}

// NewSlogProviderWithWriter creates a provider writing to w.
func NewSlogProviderWithWriter(w io.Writer, level Level) *SlogProvider {
	lv := new(slog.LevelVar)
	lv.Set(slog.Level(level))
	ops := slog.HandlerOptions{
		Level: lv,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.LevelKey:
				if l, ok := attr.Value.Any().(slog.Level); ok {
					return slog.String("level", levelName(Level(l)))
				}
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	}
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops))
	return &SlogProvider{level: lv, logger: slog.New(handler)}
}

func levelName(l Level) string {
	switch {
	case l <= LevelDebug:
		return "debug"
	case l <= LevelInfo:
		return "info"
	case l <= LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// GetLogger implements LoggerProvider.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{l: p.logger}
}

// GetLoggerWithName implements LoggerProvider.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.logger.With(ComponentKey, name)}
}

// SetLevel implements LoggerProvider. Unlike the zerolog provider, loggers
// already handed out follow the new level.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

// RouteWarnings sends errors.Warn output through this provider.
func (p *SlogProvider) RouteWarnings() {
	mserrors.SetZerologWarnFunc(func(w error) {
		p.logger.Warn(w.Error(), ComponentKey, "warnings", ErrorTypeKey, fmt.Sprintf("%T", w))
	})
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) {
	s.l.Debug(msg, fields...)
}

func (s *slogLogger) Info(msg string, fields ...any) {
	s.l.Info(msg, fields...)
}

func (s *slogLogger) Warn(msg string, fields ...any) {
	s.l.Warn(msg, fields...)
}

func (s *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttr(err)}, fields[1:]...)
		}
	}
	s.l.Error(msg, fields...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
