// Package gallerylog wraps log/slog with the level-naming and field-carrying
// conventions the rest of this module's components rely on: capitalized
// level names in text output, and a context.Context-carried logger so one
// request (a pipe connection, a loader call) can attach a field once and
// have it show on every subsequent line.
package gallerylog

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey struct{}

// LevelNotice sits between Info and Warn; the viewmodel logs at this level
// when it suspends timer polling after consecutive bad loads.
const LevelNotice = slog.Level(2)

var levelNames = map[slog.Leveler]string{
	LevelNotice: "NOTICE",
}

func levelName(l slog.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < LevelNotice:
		return "INFO"
	case l < slog.LevelWarn:
		return "NOTICE"
	case l < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// New builds the module's root logger at the default (Info) level, writing
// to stderr.
func New() *slog.Logger {
	return NewAtLevel(slog.LevelInfo)
}

// NewAtLevel builds the root logger with an explicit minimum level, for the
// CLI's --log-level flag.
func NewAtLevel(minLevel slog.Leveler) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: minLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelName(lvl))
				}
			}
			return a
		},
	})
	return slog.New(h)
}

// ParseLevel maps the CLI's --log-level strings to slog levels, defaulting
// to Info on an unrecognized value.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "notice":
		return LevelNotice
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext attaches logger to ctx so downstream calls can retrieve it
// via FromContext without threading a *slog.Logger through every signature.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stashed by WithContext, or the package
// default if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

var defaultLogger = New()
