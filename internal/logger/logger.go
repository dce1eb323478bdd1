package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type implLogger struct {
	zl zerolog.Logger
}

// Options configures the zerolog backend.
type Options struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

// New creates a new Logger instance writing human-readable lines to stdout.
func New(level string) Logger {
	return NewWithOptions(Options{Level: level, Format: "text"})
}

// NewWithOptions creates a Logger with an explicit format and output.
func NewWithOptions(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.ToLower(opts.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime, NoColor: true}
	}

	level := strings.ToLower(opts.Level)
	zlLevel, err := zerolog.ParseLevel(level)
	if err != nil || zlLevel == zerolog.NoLevel {
		zlLevel = zerolog.InfoLevel
	}

	return &implLogger{
		zl: zerolog.New(out).With().Timestamp().Logger().Level(zlLevel),
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &implLogger{zl: zerolog.Nop()}
}

// Zerolog exposes the underlying zerolog.Logger for libraries that need it (hlog).
func Zerolog(l Logger) zerolog.Logger {
	if impl, ok := l.(*implLogger); ok {
		return impl.zl
	}
	return zerolog.Nop()
}

// WithFields returns a context carrying a child of the ctx logger (or of l when
// ctx has none) with the given key/value pairs attached. Odd trailing keys are ignored.
func WithFields(ctx context.Context, l Logger, kv ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	zc := fromContext(ctx, Zerolog(l)).With()
	for i := 0; i+1 < len(kv); i += 2 {
		zc = zc.Str(kv[i], kv[i+1])
	}
	child := zc.Logger()
	return child.WithContext(ctx)
}

// fromContext returns the zerolog logger stored in ctx, or fallback.
func fromContext(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if ctx != nil {
		if zl := zerolog.Ctx(ctx); zl.GetLevel() != zerolog.Disabled {
			return zl
		}
	}
	return &fallback
}

func (l *implLogger) write(ctx context.Context, level zerolog.Level, msg string, args []interface{}) {
	fromContext(ctx, l.zl).WithLevel(level).Msgf(msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, zerolog.DebugLevel, msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, zerolog.InfoLevel, msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, zerolog.WarnLevel, msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, zerolog.ErrorLevel, msg, args)
}
