package logger

import "context"

// Logger is the logging interface shared by every component.
// Messages are printf-style; ctx carries the zerolog child logger added with WithFields.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}
