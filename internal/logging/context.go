package logging

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type traceIDKey struct{}

// FromContext returns the logger stored in ctx, or a disabled logger when none is.
// A trace ID in ctx is attached to the returned logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	logger := zerolog.Ctx(ctx)
	if id := TraceIDFromContext(ctx); id != "" {
		l := logger.With().Str("trace_id", id).Logger()
		return &l
	}
	return logger
}

// ContextWithTraceID stores a trace ID in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetOrGenerateTraceID returns the trace ID in ctx or a new ULID.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return NewID()
}

// NewID returns a new lexicographically sortable ULID string.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
