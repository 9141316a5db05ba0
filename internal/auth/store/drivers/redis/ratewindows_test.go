package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRateWindows(t *testing.T) (*miniredis.Miniredis, *RateWindows) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRateWindows(client)
}

func testKey(now time.Time, window time.Duration) domain.RateWindowKey {
	return domain.RateWindowKey{
		Identity:    domain.IdentityKey{Kind: domain.IdentitySubject, Value: "subject-1"},
		Endpoint:    "/v1/auth/refresh",
		Method:      "POST",
		WindowStart: domain.WindowStart(now, window),
	}
}

func incr(cur, prev *domain.RateWindow) error {
	cur.RequestCount++
	return nil
}

func TestRateWindowsApply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, rw := newTestRateWindows(t)
	window := time.Minute
	key := testKey(time.Now(), window)

	require.NoError(t, rw.Ping(ctx))

	for i := 1; i <= 3; i++ {
		w, err := rw.Apply(ctx, key, window, incr)
		require.NoError(t, err)
		require.Equal(t, i, w.RequestCount)
	}

	got, err := rw.GetRateWindow(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 3, got.RequestCount)
	require.Equal(t, key.WindowStart.Add(window), got.WindowEnd)

	t.Run("error discards the write", func(t *testing.T) {
		_, err := rw.Apply(ctx, key, window, func(cur, prev *domain.RateWindow) error {
			cur.RequestCount = 50
			return store.ErrConflict
		})
		require.ErrorIs(t, err, store.ErrConflict)

		got, err := rw.GetRateWindow(ctx, key)
		require.NoError(t, err)
		require.Equal(t, 3, got.RequestCount)
	})

	t.Run("previous window is visible", func(t *testing.T) {
		next := key
		next.WindowStart = key.WindowStart.Add(window)

		_, err := rw.Apply(ctx, next, window, func(cur, prev *domain.RateWindow) error {
			require.NotNil(t, prev)
			require.Equal(t, 3, prev.RequestCount)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("missing window", func(t *testing.T) {
		other := key
		other.Method = "GET"
		_, err := rw.GetRateWindow(ctx, other)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRateWindowsBlockSurvivesTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, rw := newTestRateWindows(t)
	window := time.Minute
	key := testKey(time.Now(), window)

	_, err := rw.Apply(ctx, key, window, func(cur, prev *domain.RateWindow) error {
		cur.IsBlocked = true
		cur.BlockUntil = cur.WindowEnd.Add(5 * time.Minute)
		return nil
	})
	require.NoError(t, err)

	ttl := mr.TTL(redisKey(key))
	require.Greater(t, ttl, 4*time.Minute)

	got, err := rw.GetRateWindow(ctx, key)
	require.NoError(t, err)
	require.True(t, got.IsBlocked)
	require.Equal(t, key.WindowStart.Add(window+5*time.Minute), got.BlockUntil)
}

func TestRateWindowsConcurrentApply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, rw := newTestRateWindows(t)
	window := time.Minute
	key := testKey(time.Now(), window)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rw.Apply(ctx, key, window, incr)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, store.ErrConflict)
	}

	got, err := rw.GetRateWindow(ctx, key)
	require.NoError(t, err)
	require.Equal(t, succeeded, got.RequestCount)
}
