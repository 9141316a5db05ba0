package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// Authenticate runs the authentication guard and attaches the resulting
// principal to the request context.
func (r *Router) Authenticate() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p, err := r.Guard.Authenticate(req.Context(), service.AuthRequest{
				Authorization: req.Header.Get("Authorization"),
				IP:            r.clientIP(req),
			})
			if err != nil {
				writeError(w, req, err)
				return
			}

			ctx := WithPrincipal(req.Context(), p)
			ctx = slogx.WithSubject(ctx, p.Identity.ID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// RequireGuest rejects callers presenting a valid access token. Anything
// else passes through.
func (r *Router) RequireGuest() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if err := r.Guard.RejectAuthenticated(req.Header.Get("Authorization")); err != nil {
				writeError(w, req, err)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// RateLimit counts the request against limit. A nil limit rejects every
// request as a misconfigured route.
func (r *Router) RateLimit(limit *service.RouteLimit) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			d, err := r.Limiter.Allow(req.Context(), service.RateRequest{
				Authorization: req.Header.Get("Authorization"),
				IP:            r.clientIP(req),
				Endpoint:      req.URL.Path,
				Method:        req.Method,
			}, limit)

			if d.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			}
			if err != nil {
				if d.RetryAfter > 0 {
					secs := int((d.RetryAfter + time.Second - 1) / time.Second)
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				writeError(w, req, err)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// RequireAccess must run after Authenticate.
func (r *Router) RequireAccess(need service.Requirement) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			var principal *domain.Principal
			if p, ok := PrincipalFrom(req.Context()); ok {
				principal = &p
			}
			if err := r.Policy.Authorize(req.Context(), principal, need); err != nil {
				writeError(w, req, err)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
