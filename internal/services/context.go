package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	nodeIDKey    contextKey = "node_id"
	graphIDKey   contextKey = "graph_id"
	requestIDKey contextKey = "request_id"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithNodeID annotates context with the node currently executing.
func WithNodeID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, nodeIDKey, id)
}

// NodeIDFromContext returns the executing node identifier if present.
func NodeIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(nodeIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithGraphID annotates context with the graph being executed.
func WithGraphID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, graphIDKey, id)
}

// GraphIDFromContext returns the graph identifier if present.
func GraphIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(graphIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
