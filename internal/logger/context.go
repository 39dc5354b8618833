package logger

import "context"

type contextKey struct{}

var requestIDKey = contextKey{}

// WithRequestID stores a request id so log lines emitted deeper in a
// handler can be correlated with the request that triggered them.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the stored request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
