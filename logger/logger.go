package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
)

// Logger writes JSON records tagged with the service, host, action and request id.
type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

func NewLogger(service string) *Logger {
	return New(service, os.Stdout, slog.LevelDebug)
}

func New(service string, w io.Writer, level slog.Level) *Logger {
	hostname, _ := os.Hostname()

	handler := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))

	return &Logger{
		service:  service,
		hostname: hostname,
		handler:  handler,
	}
}

func (l *Logger) base(action, requestID string) []slog.Attr {
	return []slog.Attr{
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
		slog.String("request_id", requestID),
	}
}

func (l *Logger) Info(action, requestID, message string, attrs ...slog.Attr) {
	l.handler.LogAttrs(context.TODO(), slog.LevelInfo, message, append(l.base(action, requestID), attrs...)...)
}

func (l *Logger) Debug(action, requestID, message string, attrs ...slog.Attr) {
	l.handler.LogAttrs(context.TODO(), slog.LevelDebug, message, append(l.base(action, requestID), attrs...)...)
}

func (l *Logger) Warn(action, requestID, message string, attrs ...slog.Attr) {
	l.handler.LogAttrs(context.TODO(), slog.LevelWarn, message, append(l.base(action, requestID), attrs...)...)
}

func (l *Logger) Error(action, requestID, message string, err error, attrs ...slog.Attr) {
	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}
	attrs = append(l.base(action, requestID), attrs...)
	attrs = append(attrs, slog.Group("error",
		slog.String("msg", msg),
		slog.String("stack", string(debug.Stack())),
	))
	l.handler.LogAttrs(context.TODO(), slog.LevelError, message, attrs...)
}
