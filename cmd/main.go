package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"adminportal/internal/caching"
	"adminportal/internal/common"
	"adminportal/internal/config"
	"adminportal/internal/handlers"
	"adminportal/internal/jobs/background"
	"adminportal/internal/metrics"
	"adminportal/internal/middleware"
	"adminportal/internal/repositories"
	"adminportal/internal/services"
	"adminportal/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// The company directory lives in an externally-owned schema, often on a
	// separate server. It shares the pool only when no separate URL is set.
	directoryPool := pool
	if cfg.DirectoryDatabaseURL != cfg.DatabaseURL {
		directoryPool, err = database.NewPool(ctx, cfg.DirectoryDatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to directory database: %v", err)
		}
		defer directoryPool.Close()
	}

	metrics.Init()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	tokenRepo := repositories.NewRefreshTokenRepo(pool)
	actionLogRepo := repositories.NewActionLogRepo(pool)
	companyRepo := repositories.NewCompanyRepo(directoryPool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Services
	actionLogSvc := services.NewActionLogService(actionLogRepo)
	hasher := services.NewPasswordHasher()
	policy := services.NewPasswordPolicy(cfg.PasswordMinLength, cfg.ForbiddenPasswords)
	lockout := services.NewLockoutService(cfg.LockoutThreshold, cfg.LockoutWindow, cfg.LockoutCooldown)
	tokenSvc := services.NewRefreshTokenService(tokenRepo, userRepo, actionLogSvc, cfg.RefreshTokenTTL)
	authSvc := services.NewAuthService(userRepo, tokenSvc, lockout, hasher, actionLogSvc, cfg.JWTSecret, cfg.AccessTokenTTL)
	userSvc := services.NewUserService(userRepo, companyRepo, hasher, policy, tokenSvc, actionLogSvc)
	companySvc := services.NewCompanyService(companyRepo, userRepo, cacheSvc)

	archiveSvc, err := services.NewArchiveService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.ArchiveBucket, actionLogRepo)
	if err != nil {
		log.Fatalf("Failed to initialize archive storage: %v", err)
	}

	// Middleware
	resolver := middleware.NewTenantResolver(actionLogSvc)
	rateLimiter := middleware.NewRateLimiter(cacheSvc)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc, userSvc)
	accountHandler := handlers.NewAccountHandler(userSvc)
	userHandler := handlers.NewUserHandler(userSvc, resolver)
	companyHandler := handlers.NewCompanyHandler(companySvc, actionLogSvc, resolver)
	auditHandler := handlers.NewAuditHandler(actionLogSvc, resolver)
	healthHandler := handlers.NewHealthHandler(pool, directoryPool, cacheSvc, archiveSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(tokenRepo, archiveSvc, cfg.TokenRetention)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("ERROR: scheduler shutdown: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		TargetHeader: common.CorrelationHeader,
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok {
			msg := fmt.Sprintf("%v", he.Message)
			if he.Code == http.StatusUnauthorized {
				_ = common.SendUnauthorizedError(c)
				return
			}
			_ = c.JSON(he.Code, common.CreateErrorResponse(c, http.StatusText(he.Code), msg, nil))
			return
		}
		log.Printf("ERROR: unhandled [%s]: %v", c.Response().Header().Get(common.CorrelationHeader), err)
		_ = common.SendServerError(c)
	}

	registerRoutes(e, cfg, routeHandlers{
		auth:      authHandler,
		account:   accountHandler,
		users:     userHandler,
		companies: companyHandler,
		audit:     auditHandler,
		health:    healthHandler,
	}, resolver, rateLimiter)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Printf("Starting admin portal v%s on %s (env=%s)", version, addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

type routeHandlers struct {
	auth      *handlers.AuthHandler
	account   *handlers.AccountHandler
	users     *handlers.UserHandler
	companies *handlers.CompanyHandler
	audit     *handlers.AuditHandler
	health    *handlers.HealthHandler
}

func registerRoutes(e *echo.Echo, cfg *config.Config, h routeHandlers, resolver *middleware.TenantResolver, rateLimiter *middleware.RateLimiter) {
	// Unauthenticated endpoints
	e.GET("/health", h.health.Health)
	e.GET("/health/ready", h.health.Ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.POST("/api/auth/login", h.auth.Login)
	e.POST("/api/auth/refresh", h.auth.Refresh)

	// Authenticated endpoints
	jwtMiddleware := middleware.JWT(cfg.JWTSecret)

	auth := e.Group("/api/auth", jwtMiddleware)
	auth.POST("/logout", h.auth.Logout)
	auth.GET("/me", h.auth.Me)

	account := e.Group("/api/account", jwtMiddleware)
	account.POST("/change-password",
		h.account.ChangePassword,
		rateLimiter.PerIP("change-password", cfg.ChangePasswordLimit, cfg.ChangePasswordWindow))

	api := e.Group("/api", jwtMiddleware, resolver.Middleware())

	api.GET("/users", h.users.List)
	api.POST("/users", h.users.Create)
	api.GET("/users/:id", h.users.Get)
	api.PUT("/users/:id", h.users.Update)

	api.GET("/companies", h.companies.List)
	api.GET("/companies/directory", h.companies.Directory)
	api.GET("/companies/:code", h.companies.Get)
	api.PUT("/companies/:code", h.companies.Update)

	api.GET("/audit/actions", h.audit.ListActions)
}
