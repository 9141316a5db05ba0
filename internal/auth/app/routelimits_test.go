package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestRouteLimits(t *testing.T) {
	t.Parallel()

	cfg := Config{RateLimitWindow: time.Minute, RateLimitMaxRequests: 30, RateLimitSignInMax: 3}

	t.Run("defaults", func(t *testing.T) {
		limits, err := cfg.RouteLimits()
		require.NoError(t, err)
		require.Equal(t, service.RouteLimit{Window: time.Minute, MaxRequests: 3}, limits[httpapi.RouteSignIn])
		require.Equal(t, service.RouteLimit{Window: time.Minute, MaxRequests: 30}, limits[httpapi.RouteRefresh])
		require.Equal(t, service.RouteLimit{Window: time.Minute, MaxRequests: 30}, limits[httpapi.RouteSignOut])
	})

	t.Run("file overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
routes:
  "POST /v1/auth/sign-in":
    window: 5m
    max_requests: 10
`), 0o600))

		c := cfg
		c.RateLimitRoutesFile = path
		limits, err := c.RouteLimits()
		require.NoError(t, err)
		require.Equal(t, service.RouteLimit{Window: 5 * time.Minute, MaxRequests: 10}, limits[httpapi.RouteSignIn])
		require.Equal(t, 30, limits[httpapi.RouteRefresh].MaxRequests)
	})

	t.Run("invalid entries are rejected", func(t *testing.T) {
		_, err := parseRouteLimits([]byte("routes:\n  \"POST /x\":\n    window: 1m\n"))
		require.Error(t, err)

		_, err = parseRouteLimits([]byte("routes: ["))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		c := cfg
		c.RateLimitRoutesFile = filepath.Join(t.TempDir(), "absent.yaml")
		_, err := c.RouteLimits()
		require.Error(t, err)
	})
}
