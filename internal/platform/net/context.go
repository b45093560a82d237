// Package net holds request scoped context values and the JSON envelope shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{ name string }

var keyOperator = ctxKey{"operator"}

// WithRequestID stores reqID where chi's RequestID middleware would
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on ctx or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithOperator tags ctx with the operator a bearer token resolved to
func WithOperator(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, keyOperator, name)
}

// Operator returns the authenticated operator on ctx or ""
func Operator(ctx context.Context) string {
	s, _ := ctx.Value(keyOperator).(string)
	return s
}
