package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// RouteLimit is the fixed-window budget of one route.
type RouteLimit struct {
	Window      time.Duration `yaml:"window" mapstructure:"window"`
	MaxRequests int           `yaml:"max_requests" mapstructure:"max_requests"`
}

func (l *RouteLimit) valid() bool {
	return l != nil && l.Window > 0 && l.MaxRequests > 0
}

// RateRequest identifies the caller and route being counted.
type RateRequest struct {
	Authorization string
	IP            string
	Endpoint      string
	Method        string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Count     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is set when the request was rejected.
	RetryAfter time.Duration
}

// RateLimiter counts requests per identity, route and method in fixed
// windows. Exhausting a window blocks the identity for one window length.
type RateLimiter struct {
	Windows store.RateWindows

	// Codec identifies authenticated callers. Without it every caller is
	// counted by address.
	Codec *jwtx.Codec

	// Permissive disables limiting entirely, for development.
	Permissive bool

	Now func() time.Time
}

func (r *RateLimiter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Identity picks the subject of a valid access token, falling back to the
// source address. Only a verified token is trusted, so a forged subject
// cannot move a caller into someone else's bucket.
func (r *RateLimiter) Identity(req RateRequest) domain.IdentityKey {
	if r.Codec != nil {
		if raw, ok := jwtx.ExtractBearerToken(req.Authorization); ok {
			if claims, err := r.Codec.VerifyAccessToken(raw); err == nil && claims.Subject != "" {
				return domain.IdentityKey{Kind: domain.IdentitySubject, Value: claims.Subject}
			}
		}
	}
	return domain.IdentityKey{Kind: domain.IdentityIP, Value: req.IP}
}

// Allow counts req against limit. A rejected request returns the decision
// together with ErrRateLimited.
func (r *RateLimiter) Allow(ctx context.Context, req RateRequest, limit *RouteLimit) (Decision, error) {
	if r.Permissive {
		return Decision{Allowed: true}, nil
	}
	if !limit.valid() {
		slogx.FromContext(ctx).Error("rate limit missing for route",
			slog.String("endpoint", req.Endpoint),
			slog.String("method", req.Method),
		)
		return Decision{}, ErrRouteMisconfigured
	}

	now := r.now()
	key := domain.RateWindowKey{
		Identity:    r.Identity(req),
		Endpoint:    req.Endpoint,
		Method:      req.Method,
		WindowStart: domain.WindowStart(now, limit.Window),
	}

	allowed := false
	w, err := r.Windows.Apply(ctx, key, limit.Window, func(cur, prev *domain.RateWindow) error {
		allowed = step(cur, prev, now, limit)
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).Error("rate window update failed", slog.Any("error", err))
		return Decision{}, Internal(err)
	}

	d := Decision{
		Allowed:   allowed,
		Limit:     limit.MaxRequests,
		Count:     w.RequestCount,
		Remaining: max(0, limit.MaxRequests-w.RequestCount),
		ResetAt:   w.WindowEnd,
	}
	if allowed {
		return d, nil
	}

	d.Remaining = 0
	d.RetryAfter = w.BlockUntil.Sub(now)
	if d.RetryAfter < time.Second {
		d.RetryAfter = time.Second
	}
	slogx.FromContext(ctx).Info("rate limit exceeded",
		slog.String("identity_kind", string(key.Identity.Kind)),
		slog.String("endpoint", req.Endpoint),
		slog.Time("block_until", w.BlockUntil),
	)
	return d, ErrRateLimited
}

// step applies one request to cur and reports whether it is allowed.
func step(cur, prev *domain.RateWindow, now time.Time, limit *RouteLimit) bool {
	if cur.BlockedAt(now) {
		return false
	}
	// A block set late in the previous window is still in force.
	if prev != nil && prev.BlockedAt(now) {
		cur.IsBlocked = true
		cur.BlockUntil = prev.BlockUntil
		return false
	}
	if cur.IsBlocked {
		cur.IsBlocked = false
		cur.BlockUntil = time.Time{}
	}

	if cur.RequestCount >= limit.MaxRequests {
		cur.IsBlocked = true
		cur.BlockUntil = now.Add(limit.Window)
		cur.RequestCount++
		return false
	}
	cur.RequestCount++
	return true
}
