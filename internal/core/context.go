package core

import "context"

type contextKey string

const ctxKeySessionID contextKey = "session_id"

// ContextWithSessionID adds the dashboard session ID to ctx for logging.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// SessionIDFromContext extracts the session ID from ctx, or "".
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}
