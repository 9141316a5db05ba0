package http

import (
	"context"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

type principalKey struct{}

// WithPrincipal attaches p to ctx. The principal is set once by the
// authentication middleware and only read afterwards.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
