// Package appctx carries request-scoped values (trace, acting user) through
// context.Context.
package appctx

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext carries request tracing information.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceKey struct{}

// NewTraceContext creates a fresh trace context with generated ids.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.NewString(),
		RequestID: uuid.NewString(),
	}
}

// WithTrace adds trace info to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns trace info from context or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if trace, ok := ctx.Value(traceKey{}).(*TraceContext); ok {
		return trace
	}
	return nil
}

// GetTraceID returns the trace id or empty string.
func GetTraceID(ctx context.Context) string {
	if trace := GetTrace(ctx); trace != nil {
		return trace.TraceID
	}
	return ""
}

// GetRequestID returns the request id or empty string.
func GetRequestID(ctx context.Context) string {
	if trace := GetTrace(ctx); trace != nil {
		return trace.RequestID
	}
	return ""
}
