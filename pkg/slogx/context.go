package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores logger on ctx. Handlers pick it up with FromContext so
// every line carries the request id attached by HTTPMiddleware.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithSubject tags the request logger with the authenticated subject.
// An empty id leaves ctx unchanged.
func WithSubject(ctx context.Context, subjectID string) context.Context {
	if subjectID == "" {
		return ctx
	}
	return With(ctx, SubjectIDKey, subjectID)
}
