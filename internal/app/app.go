package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/lingualearn/auth-service/internal/config"
	"github.com/lingualearn/auth-service/internal/handler"
	"github.com/lingualearn/auth-service/internal/repository"
	"github.com/lingualearn/auth-service/internal/service"
	"github.com/lingualearn/auth-service/internal/utils"
	"github.com/lingualearn/auth-service/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra     Infrastructure
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	scheduler *Scheduler
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	lockout := service.NewLockoutPolicy(
		repos.LoginAttempt,
		cfg.Security.LockoutWindow.Duration,
		cfg.Security.LockoutMaxFailures,
	)

	rateLimiter := service.NewRateLimiter(
		infra.Redis(),
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
	)

	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos,
		jwtManager,
		lockout,
		infra.Logger(),
		cfg.Security.BCryptCost,
		cfg.Security.LoginAttemptRetention.Duration,
	)

	scheduler, err := NewScheduler(authService, cfg.Maintenance.Schedule, infra.Logger())
	if err != nil {
		return nil, err
	}

	authHandler := handler.NewAuthHandler(authService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("lingualearn-auth"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, authService, rateLimiter, healthChecker, infra.Logger(), infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:     infra,
		config:    cfg,
		router:    router,
		server:    srv,
		scheduler: scheduler,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	logger *zap.Logger,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	// Unauthenticated endpoints are throttled per IP. Authenticated ones are
	// not: a valid access token already gates them.
	throttle := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, logger)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", throttle, authHandler.Register)
			auth.POST("/login", throttle, authHandler.Login)
			auth.POST("/refresh", throttle, authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(handler.AuthMiddleware(authService))
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/logout-all", authHandler.LogoutAll)
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	a.scheduler.Start()

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 3)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.scheduler.Stop(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
