package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	limit := &RouteLimit{Window: time.Minute, MaxRequests: 3}

	// Start ten seconds into a window so boundaries are predictable.
	start := domain.WindowStart(env.clock.Now(), limit.Window)
	env.clock.Set(start.Add(10 * time.Second))

	req := RateRequest{IP: "192.0.2.1", Endpoint: "/v1/auth/sign-in", Method: http.MethodPost}

	for i := 1; i <= 3; i++ {
		d, err := env.limiter.Allow(ctx, req, limit)
		require.NoError(t, err, "request %d", i)
		require.True(t, d.Allowed)
		require.Equal(t, 3-i, d.Remaining)
		require.Equal(t, start.Add(time.Minute), d.ResetAt)
	}

	d, err := env.limiter.Allow(ctx, req, limit)
	require.ErrorIs(t, err, ErrRateLimited)
	require.False(t, d.Allowed)
	require.Equal(t, time.Minute, d.RetryAfter)
	require.Equal(t, http.StatusTooManyRequests, AsError(err).Status())

	key := domain.RateWindowKey{
		Identity:    domain.IdentityKey{Kind: domain.IdentityIP, Value: req.IP},
		Endpoint:    req.Endpoint,
		Method:      req.Method,
		WindowStart: start,
	}
	w, err := env.store.RateWindows().GetRateWindow(ctx, key)
	require.NoError(t, err)
	require.True(t, w.IsBlocked)
	require.Equal(t, 4, w.RequestCount)
	require.Equal(t, start.Add(70*time.Second), w.BlockUntil)

	t.Run("blocked requests are not counted", func(t *testing.T) {
		_, err := env.limiter.Allow(ctx, req, limit)
		require.ErrorIs(t, err, ErrRateLimited)

		w, err := env.store.RateWindows().GetRateWindow(ctx, key)
		require.NoError(t, err)
		require.Equal(t, 4, w.RequestCount)
	})

	t.Run("block carries into the next window", func(t *testing.T) {
		env.clock.Set(start.Add(65 * time.Second))
		d, err := env.limiter.Allow(ctx, req, limit)
		require.ErrorIs(t, err, ErrRateLimited)
		require.Equal(t, 5*time.Second, d.RetryAfter)
	})

	t.Run("allowed again after the block lifts", func(t *testing.T) {
		env.clock.Set(start.Add(75 * time.Second))
		d, err := env.limiter.Allow(ctx, req, limit)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 1, d.Count)
	})

	t.Run("other routes are independent", func(t *testing.T) {
		other := req
		other.Endpoint = "/v1/auth/refresh"
		_, err := env.limiter.Allow(ctx, other, limit)
		require.NoError(t, err)
	})
}

func TestRateLimiterMisconfiguredAndPermissive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	req := RateRequest{IP: "192.0.2.1", Endpoint: "/x", Method: http.MethodGet}

	for _, limit := range []*RouteLimit{nil, {}, {Window: time.Minute}, {MaxRequests: 3}} {
		_, err := env.limiter.Allow(ctx, req, limit)
		require.ErrorIs(t, err, ErrRouteMisconfigured)
		require.Equal(t, http.StatusInternalServerError, AsError(err).Status())
	}

	permissive := &RateLimiter{Windows: env.store.RateWindows(), Permissive: true}
	for range 10 {
		d, err := permissive.Allow(ctx, req, nil)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
}

func TestRateLimiterIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "pw")
	pair := env.signIn(t, user.Email, "pw")
	limit := &RouteLimit{Window: time.Minute, MaxRequests: 2}

	t.Run("verified subject is tracked across addresses", func(t *testing.T) {
		id := env.limiter.Identity(RateRequest{Authorization: bearer(pair.AccessToken), IP: "192.0.2.1"})
		require.Equal(t, domain.IdentityKey{Kind: domain.IdentitySubject, Value: user.ID}, id)

		for i, ip := range []string{"192.0.2.1", "198.51.100.7", "203.0.113.9"} {
			_, err := env.limiter.Allow(ctx, RateRequest{
				Authorization: bearer(pair.AccessToken),
				IP:            ip,
				Endpoint:      "/v1/auth/sign-out",
				Method:        http.MethodPost,
			}, limit)
			if i < 2 {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrRateLimited)
			}
		}
	})

	t.Run("invalid token falls back to address", func(t *testing.T) {
		id := env.limiter.Identity(RateRequest{Authorization: "Bearer forged", IP: "192.0.2.1"})
		require.Equal(t, domain.IdentityKey{Kind: domain.IdentityIP, Value: "192.0.2.1"}, id)
	})
}

func TestStep(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	limit := &RouteLimit{Window: time.Minute, MaxRequests: 1}

	t.Run("expired block is cleared", func(t *testing.T) {
		cur := &domain.RateWindow{IsBlocked: true, BlockUntil: now.Add(-time.Second)}
		require.True(t, step(cur, nil, now, limit))
		require.False(t, cur.IsBlocked)
		require.Equal(t, 1, cur.RequestCount)
	})

	t.Run("lifted previous block is ignored", func(t *testing.T) {
		prev := &domain.RateWindow{IsBlocked: true, BlockUntil: now.Add(-time.Second)}
		cur := &domain.RateWindow{}
		require.True(t, step(cur, prev, now, limit))
	})
}
