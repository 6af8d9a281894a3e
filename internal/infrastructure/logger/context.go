package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	batchIDKey   contextKey = "batch_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and attaches a logger carrying it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithBatchID tags a reconciliation batch run so every statement it
// touches logs under the same id
func WithBatchID(ctx context.Context, logger *zap.Logger, batchID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, batchIDKey, batchID)
	enriched := logger.With(zap.String("batch_id", batchID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetBatchID retrieves the batch run ID from context
func GetBatchID(ctx context.Context) string {
	id, _ := ctx.Value(batchIDKey).(string)
	return id
}

// L returns base enriched with the request and batch ids found in ctx.
// Usage: logger.L(ctx, s.logger).Info("message")
func L(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = FromContext(ctx)
	}
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetBatchID(ctx); id != "" {
		fields = append(fields, zap.String("batch_id", id))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
