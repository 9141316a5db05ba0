package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"

	_ "github.com/aussiebroadwan/gatekeeper/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Route patterns. They double as keys of RouteLimits.
const (
	RouteSignIn     = "POST /v1/auth/sign-in"
	RouteSignOut    = "POST /v1/auth/sign-out"
	RouteRefresh    = "POST /v1/auth/refresh"
	RouteSignOutAll = "POST /v1/auth/sign-out-all"
	RouteMe         = "GET /v1/auth/me"
	RouteAuditLogs  = "GET /v1/admin/audit-logs"
)

// RouteLimits maps a route pattern to its fixed-window budget.
type RouteLimits map[string]service.RouteLimit

// For returns the budget of pattern, or nil when none is configured.
func (l RouteLimits) For(pattern string) *service.RouteLimit {
	limit, ok := l[pattern]
	if !ok {
		return nil
	}
	return &limit
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	clientIP     httpx.KeyExtractor

	store  store.Store
	limits RouteLimits

	Guard    *service.Guard
	Sessions *service.SessionService
	Limiter  *service.RateLimiter
	Policy   *service.AccessPolicy
	Audit    *service.AuditService

	// RateBackend is checked by /readyz when rate windows are kept outside
	// the main store.
	RateBackend Pinger
}

func NewRouter(
	buildVersion string,
	st store.Store,
	limits RouteLimits,
	clientIP httpx.KeyExtractor,
	logger *slog.Logger,
) *Router {
	if clientIP == nil {
		clientIP = httpx.IPKeyExtractor
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		clientIP:     clientIP,
		store:        st,
		limits:       limits,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(authsdk.ErrInternal),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatekeeper Authentication Service API
//	@version		0.1.0
//	@description	Session based authentication with short lived access tokens, rotating refresh tokens and per-route rate limiting.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs signed with separate secrets.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gatekeeper
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{Sessions: r.Sessions, ClientIP: r.clientIP}

	// Sign-in is for anonymous callers only. The limiter runs first so that
	// probing with stolen tokens is counted too.
	r.Mux.Handle(RouteSignIn,
		httpx.Chain(http.HandlerFunc(h.HandleSignIn),
			r.RateLimit(r.limits.For(RouteSignIn)),
			r.RequireGuest(),
		),
	)

	r.Mux.Handle(RouteSignOut,
		httpx.Chain(http.HandlerFunc(h.HandleSignOut),
			r.RateLimit(r.limits.For(RouteSignOut)),
			r.Authenticate(),
		),
	)

	r.Mux.Handle(RouteRefresh,
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.RateLimit(r.limits.For(RouteRefresh)),
		),
	)

	r.Mux.Handle(RouteSignOutAll,
		httpx.Chain(http.HandlerFunc(h.HandleSignOutAll),
			r.Authenticate(),
		),
	)

	r.Mux.Handle(RouteMe,
		httpx.Chain(MeHandler(),
			r.Authenticate(),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AuditLogsHandler{Audit: r.Audit}

	r.Mux.Handle(RouteAuditLogs,
		httpx.Chain(h,
			r.Authenticate(),
			r.RequireAccess(service.Requirement{
				Roles:       []string{domain.RoleAdmin},
				Permissions: []string{domain.PermissionAuditRead},
			}),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - in-memory token bucket, probes may poll frequently
	public := httpx.RateLimitMiddleware(httpx.PublicLimit, r.clientIP, authsdk.ErrRateLimited)

	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), public),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.RateBackend), public),
	)
}
