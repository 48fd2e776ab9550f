package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	locationKey  contextKey = "location"
	postcodeKey  contextKey = "postcode"
)

// WithContext returns a logger decorated with the request fields found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	fields := Fields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// Fields returns the request-scoped zap fields stored in ctx.
func Fields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if v := GetRequestID(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v, ok := ctx.Value(locationKey).(string); ok && v != "" {
		fields = append(fields, zap.String("location", v))
	}
	if v, ok := ctx.Value(postcodeKey).(string); ok && v != "" {
		fields = append(fields, zap.String("postcode", v))
	}
	return fields
}

// FromContext extracts the logger stored in ctx, falling back to the global one.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l.WithContext(ctx)
	}
	return L().WithContext(ctx)
}

// ToContext adds logger to context
func ToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithTarget records the location/postcode being processed.
func WithTarget(ctx context.Context, location, postcode string) context.Context {
	ctx = context.WithValue(ctx, locationKey, location)
	return context.WithValue(ctx, postcodeKey, postcode)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
