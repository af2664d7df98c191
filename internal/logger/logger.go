// Package logger provides the global structured logger. Records are emitted
// as slog JSON (or text) with trace and span IDs injected when tracing is on.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"natgas-trader/internal/trace"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	globalLogger *slog.Logger
	logLevel     slog.Level
)

// Config holds logging configuration.
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

// InitWithConfig initializes the global logger with a specific configuration.
func InitWithConfig(cfg Config) error {
	logLevel = parseLogLevel(cfg.Level)

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if cfg.Format == "text" {
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

func Debug(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelDebug, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, args...)
}

// ErrorWithErr logs an error message with the error attached, and records it
// on the active span when tracing is enabled.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if trace.Enabled() {
		span := oteltrace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
		}
	}
	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, allArgs...)
}

func logWithTrace(ctx context.Context, level slog.Level, msg string, args ...any) {
	if globalLogger == nil {
		return
	}
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		args = append([]any{"trace_id", traceID, "span_id", spanID}, args...)
	}
	globalLogger.Log(ctx, level, msg, args...)
}

// Signal logs the per-cycle signal snapshot (always at INFO).
func Signal(ctx context.Context, temperature, inventory, storm, composite float64, degraded int) {
	logWithTrace(ctx, slog.LevelInfo, "Signal snapshot",
		"type", "SIGNAL",
		"temperature", temperature,
		"inventory", inventory,
		"storm", storm,
		"composite", composite,
		"degraded_sources", degraded,
	)
}

// Decision logs the per-cycle trading decision (always at INFO).
func Decision(ctx context.Context, action, symbol string, composite, confidence float64, reason string) {
	if trace.Enabled() {
		span := oteltrace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("trading_decision", oteltrace.WithAttributes(
				attribute.String("action", action),
				attribute.String("symbol", symbol),
				attribute.Float64("composite", composite),
				attribute.Float64("confidence", confidence),
			))
		}
	}
	logWithTrace(ctx, slog.LevelInfo, "Trading decision made",
		"type", "DECISION",
		"action", action,
		"symbol", symbol,
		"composite", composite,
		"confidence", confidence,
		"reason", reason,
	)
}

// Trade logs an executed trade (always at INFO).
func Trade(ctx context.Context, symbol, side string, qty int, price float64, orderID string) {
	if trace.Enabled() {
		span := oteltrace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("trade_executed", oteltrace.WithAttributes(
				attribute.String("symbol", symbol),
				attribute.String("side", side),
				attribute.Int("quantity", qty),
				attribute.Float64("price", price),
				attribute.String("order_id", orderID),
			))
		}
	}
	logWithTrace(ctx, slog.LevelInfo, "Trade executed",
		"type", "TRADE",
		"symbol", symbol,
		"side", side,
		"quantity", qty,
		"price", price,
		"order_id", orderID,
	)
}

// DataQuality logs a degraded data source. The cycle continues with a
// neutral signal for that source.
func DataQuality(ctx context.Context, source string, err error) {
	logWithTrace(ctx, slog.LevelWarn, "Data source degraded to neutral signal",
		"type", "DATA_QUALITY",
		"source", source,
		"error", err,
	)
}
