package logx

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter adapts zerolog.Logger to the logx.Logger interface.
type ZerologAdapter struct {
	l zerolog.Logger
}

// NewZerolog builds a zerolog-backed Logger. With console set, entries are
// rendered by zerolog.ConsoleWriter for local development.
func NewZerolog(w io.Writer, level string, console bool) Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &ZerologAdapter{l: z}
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) { emit(z.l.Debug(), msg, fields) }

func (z *ZerologAdapter) Info(msg string, fields ...Field) { emit(z.l.Info(), msg, fields) }

func (z *ZerologAdapter) Warn(msg string, fields ...Field) { emit(z.l.Warn(), msg, fields) }

func (z *ZerologAdapter) Error(msg string, fields ...Field) { emit(z.l.Error(), msg, fields) }

// With returns a child logger carrying fields on every entry.
func (z *ZerologAdapter) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{l: ctx.Logger()}
}

func (z *ZerologAdapter) Sync() error { return nil }

// emit tolerates a nil event, which zerolog returns for disabled levels.
func emit(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
