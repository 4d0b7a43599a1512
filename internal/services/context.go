package services

import "context"

type contextKey string

const (
	objectKey    contextKey = "object"
	stageKey     contextKey = "stage"
	executionKey contextKey = "execution"
	requestIDKey contextKey = "request_id"
)

// WithObject annotates context with the bucket::/key description of the
// object being processed.
func WithObject(ctx context.Context, object string) context.Context {
	if object == "" {
		return ctx
	}
	return context.WithValue(ctx, objectKey, object)
}

// ObjectFromContext returns the object description if present.
func ObjectFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(objectKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the workflow stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithExecution annotates context with the workflow execution name.
func WithExecution(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, executionKey, name)
}

// ExecutionFromContext returns the execution name if present.
func ExecutionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(executionKey).(string); ok && v != "" {
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
