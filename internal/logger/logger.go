package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"deepsent/internal/trace"
)

var (
	// Global logger instance. Starts as a no-op so packages can log before Init.
	globalLogger = zap.NewNop().Sugar()
	// Whether detailed (debug + caller) logging is enabled
	detailedLogging bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or console
	DetailedLogging bool   // Enable debug logs with caller information
}

// Init initializes the global logger based on environment variables
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv loads logging configuration from environment variables
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
	}
}

// InitWithConfig initializes the logger with a specific configuration
func InitWithConfig(config LogConfig) error {
	detailedLogging = config.DetailedLogging

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if config.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	level := parseLogLevel(config.Level)
	if detailedLogging {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.NewAtomicLevelAt(level))

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if detailedLogging {
		// logWithTrace -> Info/Warn/... -> caller
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	globalLogger = zap.New(core, opts...).Sugar()
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = globalLogger.Sync()
}

// parseLogLevel converts string log level to a zap level
func parseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getTraceAttrs extracts trace ID and span ID from context for logging
func getTraceAttrs(ctx context.Context) []any {
	traceID, spanID, ok := trace.GetTraceFields(ctx)
	if !ok {
		return nil
	}
	return []any{"trace_id", traceID, "span_id", spanID}
}

// Debug logs a debug message
func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, zapcore.DebugLevel, msg, 0, args...)
}

// Info logs an info message
func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, zapcore.InfoLevel, msg, 0, args...)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, zapcore.WarnLevel, msg, 0, args...)
}

// Error logs an error message
func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, zapcore.ErrorLevel, msg, 0, args...)
}

// ErrorWithErr logs an error message with an error object and marks the active span failed
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	logWithTrace(ctx, zapcore.ErrorLevel, msg, 0, append([]any{"error", err}, args...)...)
}

// DebugSkip is Debug for middleware wrappers; skip extra frames are dropped from caller info.
func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, zapcore.DebugLevel, msg, skip, args...)
}

// InfoSkip is Info for middleware wrappers.
func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, zapcore.InfoLevel, msg, skip, args...)
}

// WarnSkip is Warn for middleware wrappers.
func WarnSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, zapcore.WarnLevel, msg, skip, args...)
}

// ErrorWithErrSkip is ErrorWithErr for middleware wrappers.
func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	logWithTrace(ctx, zapcore.ErrorLevel, msg, skip, append([]any{"error", err}, args...)...)
}

func recordSpanError(ctx context.Context, err error) {
	if err == nil || !trace.Enabled() {
		return
	}
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// logWithTrace logs a message with trace ID and span ID if available
func logWithTrace(ctx context.Context, level zapcore.Level, msg string, skip int, args ...any) {
	if traceAttrs := getTraceAttrs(ctx); traceAttrs != nil {
		args = append(traceAttrs, args...)
	}

	l := globalLogger
	if skip > 0 && detailedLogging {
		l = l.WithOptions(zap.AddCallerSkip(skip))
	}

	switch level {
	case zapcore.DebugLevel:
		l.Debugw(msg, args...)
	case zapcore.InfoLevel:
		l.Infow(msg, args...)
	case zapcore.WarnLevel:
		l.Warnw(msg, args...)
	default:
		l.Errorw(msg, args...)
	}
}

// OperationTimer helps measure operation duration with OpenTelemetry spans
type OperationTimer struct {
	ctx    context.Context
	span   oteltrace.Span
	start  time.Time
	fields []any
}

// StartOperation starts timing an operation with an OpenTelemetry span
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	ctx, span := trace.StartSpan(ctx, operation)
	span.SetAttributes(toAttributes(fields)...)

	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)

	return &OperationTimer{
		ctx:    ctx,
		span:   span,
		start:  time.Now(),
		fields: fields,
	}
}

// End completes the operation timer and logs the duration
func (ot *OperationTimer) End(additionalFields ...any) {
	duration := time.Since(ot.start)

	ot.span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
	ot.span.SetAttributes(toAttributes(additionalFields)...)
	ot.span.SetStatus(codes.Ok, "completed")
	ot.span.End()

	fields := append(append([]any{}, ot.fields...), "duration_ms", duration.Milliseconds())
	Debug(ot.ctx, "Operation completed", append(fields, additionalFields...)...)
}

// EndWithError completes the operation timer with an error
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	duration := time.Since(ot.start)

	ot.span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
	ot.span.RecordError(err)
	ot.span.SetStatus(codes.Error, err.Error())
	ot.span.End()

	fields := append(append([]any{}, ot.fields...), "duration_ms", duration.Milliseconds(), "error", err)
	Error(ot.ctx, "Operation failed", append(fields, additionalFields...)...)
}

// GetContext returns the context with the span
func (ot *OperationTimer) GetContext() context.Context {
	return ot.ctx
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}

// Anomaly logs a detected sentiment swing (always logged regardless of level)
func Anomaly(ctx context.Context, ticker, date, kind string, change float64, count int) {
	if trace.Enabled() {
		span := oteltrace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("sentiment_anomaly", oteltrace.WithAttributes(
				attribute.String("ticker", ticker),
				attribute.String("date", date),
				attribute.String("type", kind),
				attribute.Float64("change", change),
				attribute.Int("count", count),
			))
		}
	}

	logWithTrace(ctx, zapcore.InfoLevel, "Sentiment anomaly detected", 0,
		"type", "ANOMALY",
		"ticker", ticker,
		"date", date,
		"anomaly_type", kind,
		"change", change,
		"count", count,
	)
}
