package xslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Options configure the process logger. They are read from LOG_LEVEL and
// LOG_FORMAT.
type Options struct {
	Level  Level  `env:"LOG_LEVEL" envDefault:"info"`
	Format Format `env:"LOG_FORMAT" envDefault:"json"`
}

type Level slog.Level

func (l *Level) UnmarshalText(text []byte) error {
	var level slog.Level
	if err := level.UnmarshalText(text); err != nil {
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", text)
	}
	*l = Level(level)
	return nil
}

func (l Level) String() string { return slog.Level(l).String() }

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

func (f *Format) UnmarshalText(text []byte) error {
	switch Format(strings.ToLower(string(text))) {
	case FormatJSON:
		*f = FormatJSON
	case FormatText:
		*f = FormatText
	default:
		return fmt.Errorf("invalid log format %q (valid: json, text)", text)
	}
	return nil
}

// redactedKeys never reach the output with their value.
var redactedKeys = map[string]struct{}{
	"secret":           {},
	"signature":        {},
	"stripe_signature": {},
	"authorization":    {},
}

const redacted = "[REDACTED]"

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}

func NewLogger(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:       slog.Level(opts.Level),
		ReplaceAttr: redact,
	}
	if opts.Format == FormatText {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// NewLoggerFromEnv falls back to info-level JSON when the environment holds an
// invalid value, so a typo never keeps the process from starting.
func NewLoggerFromEnv(w io.Writer) *slog.Logger {
	opts, err := env.ParseAs[Options]()
	if err != nil {
		logger := NewLogger(w, Options{Level: Level(slog.LevelInfo), Format: FormatJSON})
		logger.Warn("ignoring invalid logger configuration", Error(err))
		return logger
	}
	return NewLogger(w, opts)
}

type loggerKey struct{}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger, or slog.Default when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithAttrs returns a context whose logger carries attrs on every record.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
