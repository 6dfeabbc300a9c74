package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	assetKey contextKey = iota
	operationKey
)

// WithAsset stores the display name of the asset being processed.
func WithAsset(ctx context.Context, asset string) context.Context {
	return context.WithValue(ctx, assetKey, asset)
}

// WithOperation stores the pipeline operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey, operation)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if asset, ok := ctx.Value(assetKey).(string); ok && asset != "" {
		fields = append(fields, slog.String(FieldAsset, asset))
	}
	if op, ok := ctx.Value(operationKey).(string); ok && op != "" {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
