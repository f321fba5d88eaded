package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/taskflow/config"
	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/handler"
	"github.com/Payphone-Digital/taskflow/internal/middleware"
	"github.com/Payphone-Digital/taskflow/internal/repository"
	"github.com/Payphone-Digital/taskflow/internal/router"
	"github.com/Payphone-Digital/taskflow/internal/service"
	"github.com/Payphone-Digital/taskflow/pkg/circuit"
	"github.com/Payphone-Digital/taskflow/pkg/database"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/Payphone-Digital/taskflow/pkg/metrics"
	"github.com/Payphone-Digital/taskflow/pkg/ratelimit"
	"github.com/Payphone-Digital/taskflow/pkg/redis"
	"github.com/Payphone-Digital/taskflow/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterGinValidators(); err != nil {
		logger.GetLogger().Fatal("Failed to register validators", zap.Error(err))
	}

	db, err := database.NewPostgresDB(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if config.App.SeedDemo {
		if err := database.SeedDemo(db); err != nil {
			// Not fatal: the service works without demo data
			logger.GetLogger().Error("Failed to seed demo data", zap.Error(err))
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Rate limit store: Redis when enabled and reachable, in-memory otherwise
	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Warn("Redis unavailable, rate limiting falls back to memory", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	limiterStore := newLimiterStore(redisClient, appMetrics)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	tokenService := service.NewTokenService(config.JWT)
	authService := service.NewAuthService(userRepo, tokenService, service.WithMetrics(appMetrics))
	taskService := service.NewTaskService(taskRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)

	var redisPing handler.PingFunc
	if redisClient != nil {
		redisPing = redisClient.Ping
	}
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, redisPing)

	// Middleware
	jwtMiddleware := middleware.NewJWTMiddleware(tokenService, appMetrics)
	authLimiter := middleware.NewRateLimiter(
		limiterStore,
		"auth",
		constants.RateLimitKeyAuth,
		config.RateLimit.Request,
		config.RateLimit.Duration,
		appMetrics,
	)

	r := router.NewRouter(
		authHandler,
		taskHandler,
		healthHandler,

		jwtMiddleware,
		authLimiter,
		appMetrics,
		registry,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}
	logger.GetLogger().Info("Server exited")
}

// newLimiterStore puts the Redis store behind a circuit breaker with an in-memory
// fallback, so a Redis outage degrades to per-instance limits.
func newLimiterStore(redisClient *redis.Client, m *metrics.Metrics) ratelimit.Store {
	memory := ratelimit.NewMemoryStore()
	if redisClient == nil {
		return memory
	}

	breaker := circuit.NewBreaker("redis-ratelimit", circuit.DefaultConfig(), logger.GetLogger(),
		circuit.WithStateChangeHook(func(name string, _, to circuit.State) {
			m.SetBreakerState(name, int(to))
		}),
	)
	m.SetBreakerState(breaker.Name(), int(breaker.State()))

	return ratelimit.NewFallbackStore(
		ratelimit.NewRedisStore(redisClient.Redis(), constants.RateLimitKeyPrefix),
		memory,
		breaker,
		logger.GetLogger(),
		m.IncRateLimitFallback,
	)
}
