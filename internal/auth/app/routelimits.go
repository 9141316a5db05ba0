package app

import (
	"fmt"
	"os"

	httpapi "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"gopkg.in/yaml.v3"
)

// routeLimitsFile is the layout of RATELIMIT_ROUTES_FILE:
//
//	routes:
//	  "POST /v1/auth/sign-in":
//	    window: 60s
//	    max_requests: 3
type routeLimitsFile struct {
	Routes map[string]service.RouteLimit `yaml:"routes"`
}

// RouteLimits builds the budget of every rate limited route. Entries from
// RATELIMIT_ROUTES_FILE replace the defaults of the same route.
func (c Config) RouteLimits() (httpapi.RouteLimits, error) {
	def := service.RouteLimit{Window: c.RateLimitWindow, MaxRequests: c.RateLimitMaxRequests}
	limits := httpapi.RouteLimits{
		httpapi.RouteSignIn:  {Window: c.RateLimitWindow, MaxRequests: c.RateLimitSignInMax},
		httpapi.RouteSignOut: def,
		httpapi.RouteRefresh: def,
	}

	if c.RateLimitRoutesFile == "" {
		return limits, nil
	}

	raw, err := os.ReadFile(c.RateLimitRoutesFile)
	if err != nil {
		return nil, fmt.Errorf("read route limits: %w", err)
	}
	overrides, err := parseRouteLimits(raw)
	if err != nil {
		return nil, fmt.Errorf("parse route limits %s: %w", c.RateLimitRoutesFile, err)
	}
	for route, limit := range overrides {
		limits[route] = limit
	}
	return limits, nil
}

func parseRouteLimits(raw []byte) (map[string]service.RouteLimit, error) {
	var f routeLimitsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	for route, limit := range f.Routes {
		if limit.Window <= 0 || limit.MaxRequests <= 0 {
			return nil, fmt.Errorf("route %q: window and max_requests must be positive", route)
		}
	}
	return f.Routes, nil
}
