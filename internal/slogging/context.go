package slogging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfitz/formfields/internal/uuidgen"
	"github.com/gin-gonic/gin"
)

// loggerContextKey is the gin context key holding the request-scoped logger
const loggerContextKey = "logger"

// GinContextLike defines a minimal interface for contexts that can be used with the logger
type GinContextLike interface {
	Get(key any) (any, bool)
	GetHeader(key string) string
	ClientIP() string
}

// GetContextLogger returns the request logger stored by LoggerMiddleware.
// Outside that middleware a fresh request logger is built from the global one.
func GetContextLogger(c GinContextLike) *ContextLogger {
	if value, exists := c.Get(loggerContextKey); exists {
		if logger, ok := value.(*ContextLogger); ok {
			return logger
		}
	}
	return Get().WithContext(c)
}

// WithContext returns a context-aware logger that includes request information
func (l *Logger) WithContext(c GinContextLike) *ContextLogger {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuidgen.MustNewForEntity(uuidgen.EntityTypeRequest).String()
		if setter, ok := c.(interface{ Header(string, string) }); ok {
			setter.Header("X-Request-ID", requestID)
		}
	}

	ctx := context.Background()
	if gc, ok := c.(*gin.Context); ok && gc.Request != nil {
		ctx = gc.Request.Context()
	}

	return &ContextLogger{
		logger: l,
		slogger: l.slogger.With(
			slog.String("request_id", requestID),
			slog.String("client_ip", c.ClientIP()),
		),
		ctx:       ctx,
		requestID: requestID,
	}
}

// ContextLogger adds request context to log messages
type ContextLogger struct {
	logger    *Logger
	slogger   *slog.Logger
	ctx       context.Context
	requestID string
}

// RequestID returns the id attached to every record from this logger
func (cl *ContextLogger) RequestID() string {
	return cl.requestID
}

func (cl *ContextLogger) logf(level LogLevel, format string, args ...any) {
	if cl.logger.level > level {
		return
	}
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	cl.slogger.Log(cl.ctx, level.toSlogLevel(), SanitizeLogMessage(message))
}

// Debug logs a debug-level message with context
func (cl *ContextLogger) Debug(format string, args ...any) { cl.logf(LogLevelDebug, format, args...) }

// Info logs an info-level message with context
func (cl *ContextLogger) Info(format string, args ...any) { cl.logf(LogLevelInfo, format, args...) }

// Warn logs a warning-level message with context
func (cl *ContextLogger) Warn(format string, args ...any) { cl.logf(LogLevelWarn, format, args...) }

// Error logs an error-level message with context
func (cl *ContextLogger) Error(format string, args ...any) { cl.logf(LogLevelError, format, args...) }

// DebugCtx logs a debug message with additional structured attributes
func (cl *ContextLogger) DebugCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelDebug, msg, attrs...)
}

// InfoCtx logs an info message with additional structured attributes
func (cl *ContextLogger) InfoCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelInfo, msg, attrs...)
}

// WarnCtx logs a warning message with additional structured attributes
func (cl *ContextLogger) WarnCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelWarn, msg, attrs...)
}

// ErrorCtx logs an error message with additional structured attributes
func (cl *ContextLogger) ErrorCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelError, msg, attrs...)
}

// WithAttrs returns a new ContextLogger with additional attributes
func (cl *ContextLogger) WithAttrs(attrs ...slog.Attr) *ContextLogger {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return &ContextLogger{
		logger:    cl.logger,
		slogger:   cl.slogger.With(args...),
		ctx:       cl.ctx,
		requestID: cl.requestID,
	}
}
