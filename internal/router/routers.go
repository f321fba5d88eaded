package router

import (
	"github.com/Payphone-Digital/taskflow/config"
	"github.com/Payphone-Digital/taskflow/internal/handler"
	"github.com/Payphone-Digital/taskflow/internal/middleware"
	"github.com/Payphone-Digital/taskflow/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Router struct {
	authHandler   *handler.AuthHandler
	taskHandler   *handler.TaskHandler
	healthHandler *handler.HealthHandler

	jwtMw       *middleware.JWTMiddleware
	authLimiter *middleware.RateLimiter
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	Config      *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	task *handler.TaskHandler,
	health *handler.HealthHandler,

	jwtMw *middleware.JWTMiddleware,
	authLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		taskHandler:   task,
		healthHandler: health,

		jwtMw:       jwtMw,
		authLimiter: authLimiter,
		metrics:     m,
		gatherer:    gatherer,
		Config:      config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.DefaultContextMiddleware(r.Config.App.Timeout)...)
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(r.metrics.Middleware())
	router.Use(middleware.CORS(r.Config.App.FrontendURL))

	router.GET("/health", r.healthHandler.HealthCheck)
	if r.gatherer != nil {
		router.GET("/metrics", metrics.Handler(r.gatherer))
	}

	r.authRoutes(router.Group(""))
	r.taskRoutes(router.Group(""))

	return router
}
