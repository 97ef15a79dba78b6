package logging

import (
	"context"
	"log/slog"

	"gaffer/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldNodeID is the standardized structured logging key for graph node identifiers.
	FieldNodeID = "node_id"
	// FieldNodeType is the standardized structured logging key for node type names.
	FieldNodeType = "node_type"
	// FieldGraphID is the standardized structured logging key for graph identifiers.
	FieldGraphID = "graph_id"
	// FieldAssetID is the standardized structured logging key for asset identifiers.
	FieldAssetID = "asset_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := services.NodeIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldNodeID, id))
	}
	if id, ok := services.GraphIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldGraphID, id))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
