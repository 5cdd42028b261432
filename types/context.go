package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRequestID  contextKey = "request_id"
	keySequenceID contextKey = "sequence_id"
)

// WithRequestID adds the request correlation ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID extracts the request correlation ID from context.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}

// WithSequenceID adds the sequence ID to context.
func WithSequenceID(ctx context.Context, sequenceID string) context.Context {
	return context.WithValue(ctx, keySequenceID, sequenceID)
}

// SequenceID extracts the sequence ID from context.
func SequenceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keySequenceID).(string)
	return v, ok && v != ""
}
