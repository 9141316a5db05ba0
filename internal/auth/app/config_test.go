package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "dev")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 10, cfg.HashCost)
	require.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 30, cfg.RateLimitMaxRequests)
	require.Equal(t, 3, cfg.RateLimitSignInMax)
	require.False(t, cfg.RateLimitPermissive)
	require.Equal(t, BackendSQLite, cfg.RateLimitBackend)
	require.Equal(t, "gatekeeper", cfg.Issuer)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 5*time.Minute, cfg.BlacklistCacheTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("AUTH_ACCESS_SECRET", "a")
	t.Setenv("AUTH_REFRESH_SECRET", "b")
	t.Setenv("AUTH_ACCESS_TTL", "5m")
	t.Setenv("AUTH_HASH_COST", "12")
	t.Setenv("RATELIMIT_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATELIMIT_SIGNIN_MAX", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 12, cfg.HashCost)
	require.Equal(t, BackendRedis, cfg.RateLimitBackend)
	require.Equal(t, 5, cfg.RateLimitSignInMax)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"secrets required outside dev", map[string]string{"ENV": "prod"}},
		{"permissive outside dev", map[string]string{
			"ENV": "prod", "AUTH_ACCESS_SECRET": "a", "AUTH_REFRESH_SECRET": "b", "RATELIMIT_PERMISSIVE": "true",
		}},
		{"redis without address", map[string]string{"RATELIMIT_BACKEND": "redis"}},
		{"unknown backend", map[string]string{"RATELIMIT_BACKEND": "memcached"}},
		{"hash cost out of range", map[string]string{"AUTH_HASH_COST": "40"}},
		{"zero sign-in budget", map[string]string{"RATELIMIT_SIGNIN_MAX": "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ENV", "dev")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
