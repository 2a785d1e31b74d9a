package core

import "context"

// Context keys for comparison runs
type contextKey string

const runUUIDKey contextKey = "runUUID"

// withRunUUID stores the run correlation id in the context
func withRunUUID(ctx context.Context, runUUID string) context.Context {
	return context.WithValue(ctx, runUUIDKey, runUUID)
}

// RunUUIDFromContext returns the run correlation id from context
func RunUUIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(runUUIDKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
