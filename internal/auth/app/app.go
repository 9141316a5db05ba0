package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/cache"
	redisdriver "github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db           store.Store
	rateWindows  store.RateWindows
	redis        goredis.UniversalClient // nil unless RATELIMIT_BACKEND=redis
	redisWindows *redisdriver.RateWindows
	revocations  *cache.Blacklist
	codec        *jwtx.Codec
	hasher       *cryptox.Hasher

	// Services
	guard               *service.Guard
	sessionService      *service.SessionService
	rateLimiter         *service.RateLimiter
	accessPolicy        *service.AccessPolicy
	auditService        *service.AuditService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatekeeper",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initRateWindows(); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.initCodec(); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initServices()

	if err := app.bootstrap(context.Background()); err != nil {
		app.closeStores()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// Handler exposes the configured router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"rate_backend", app.cfg.RateLimitBackend,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		app.closeStores()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.revocations != nil {
		app.revocations.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRateWindows picks where fixed-window counters live. Redis lets several
// replicas share one budget per caller.
func (app *Application) initRateWindows() error {
	if app.cfg.RateLimitBackend != BackendRedis {
		app.rateWindows = app.db.RateWindows()
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	windows := redisdriver.NewRateWindows(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := windows.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.redis = client
	app.redisWindows = windows
	app.rateWindows = windows
	app.logger.Info("rate windows stored in redis", "addr", app.cfg.RedisAddr)
	return nil
}

// initCodec builds the token codec. Outside dev, LoadConfig already refused
// to start without secrets.
func (app *Application) initCodec() error {
	access, refresh := app.cfg.AccessSecret, app.cfg.RefreshSecret
	if access == "" || refresh == "" {
		var err error
		if access, err = ephemeralSecret(access); err != nil {
			return err
		}
		if refresh, err = ephemeralSecret(refresh); err != nil {
			return err
		}
		app.logger.Warn("using ephemeral token secrets, all tokens are lost on restart")
	}

	codec, err := jwtx.NewCodec(jwtx.Options{
		AccessSecret:  []byte(access),
		RefreshSecret: []byte(refresh),
		Issuer:        app.cfg.Issuer,
		Audience:      app.cfg.Audience,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec
	app.hasher = cryptox.NewHasher(app.cfg.HashCost)
	return nil
}

func ephemeralSecret(current string) (string, error) {
	if current != "" {
		return current, nil
	}
	secret, err := cryptox.GenerateToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	return secret, nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.revocations = cache.NewBlacklist(app.db.Blacklist(), app.cfg.BlacklistCacheTTL)

	app.guard = &service.Guard{
		Codec:       app.codec,
		Store:       app.db,
		Revocations: app.revocations,
	}
	app.sessionService = &service.SessionService{
		Codec:       app.codec,
		Hasher:      app.hasher,
		Store:       app.db,
		Revocations: app.revocations,
	}
	app.rateLimiter = &service.RateLimiter{
		Windows:    app.rateWindows,
		Codec:      app.codec,
		Permissive: app.cfg.RateLimitPermissive,
	}
	if app.cfg.RateLimitPermissive {
		app.logger.Warn("rate limiting is disabled")
	}
	app.accessPolicy = &service.AccessPolicy{Store: app.db}
	app.auditService = &service.AuditService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Hasher: app.hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.RateWindows = app.rateWindows
}

// bootstrap seeds the first admin when credentials are configured and the
// user table is still empty.
func (app *Application) bootstrap(ctx context.Context) error {
	if app.cfg.BootstrapEmail == "" {
		return nil
	}

	ctx = slogx.WithContext(ctx, app.logger)
	_, err := app.bootstrapService.Bootstrap(ctx, domain.BootstrapData{
		AdminEmail:    app.cfg.BootstrapEmail,
		AdminPassword: app.cfg.BootstrapPassword,
	})
	switch {
	case errors.Is(err, service.ErrBootstrapAlready):
		app.logger.Debug("bootstrap skipped, users already exist")
		return nil
	case err != nil:
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	limits, err := app.cfg.RouteLimits()
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		limits,
		httpx.ClientIPExtractor(app.cfg.TrustProxyHeaders),
		app.logger,
	)

	// Wire services to router
	router.Guard = app.guard
	router.Sessions = app.sessionService
	router.Limiter = app.rateLimiter
	router.Policy = app.accessPolicy
	router.Audit = app.auditService
	if app.redisWindows != nil {
		router.RateBackend = app.redisWindows
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
