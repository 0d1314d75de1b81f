package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	globalLogger *slog.Logger
	logLevel     slog.Level
)

// Config holds logging configuration loaded from the environment.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // json or text
}

// Init initializes the global logger from environment variables.
func Init() error {
	return InitWithConfig(Config{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	})
}

// InitWithConfig initializes the global logger with an explicit configuration.
func InitWithConfig(cfg Config) error {
	logLevel = parseLogLevel(cfg.Level)

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// traceAttrs extracts trace ID and span ID from the context for log correlation.
func traceAttrs(ctx context.Context) []any {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return []any{
		"trace_id", span.SpanContext().TraceID().String(),
		"span_id", span.SpanContext().SpanID().String(),
	}
}

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func Info(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func Error(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelError, msg, args...)
}

// ErrorWithErr logs an error message with an error object. If the context
// carries an active span the error is recorded on it as well.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if globalLogger == nil {
		globalLogger = slog.Default()
	}
	if attrs := traceAttrs(ctx); attrs != nil {
		args = append(attrs, args...)
	}
	globalLogger.Log(ctx, level, msg, args...)
}

// ReportGenerated logs one generated daily report in a uniform shape.
func ReportGenerated(ctx context.Context, date string, savings float64, narrated bool, fields ...any) {
	args := []any{
		"event", "report",
		"date", date,
		"savings", savings,
		"narrated", narrated,
	}
	args = append(args, fields...)
	Info(ctx, "Daily report generated", args...)
}

// DeliveryResult logs the outcome of one outbound delivery call.
func DeliveryResult(ctx context.Context, sink, kind string, err error, fields ...any) {
	args := []any{
		"event", "delivery",
		"sink", sink,
		"kind", kind,
	}
	args = append(args, fields...)
	if err != nil {
		ErrorWithErr(ctx, "Delivery failed", err, args...)
		return
	}
	Info(ctx, "Delivery succeeded", args...)
}

// IsDebugEnabled reports whether debug logging is active.
func IsDebugEnabled() bool {
	return logLevel <= slog.LevelDebug
}
