package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	database PingFunc
	redis    PingFunc
	timeout  time.Duration
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthHandler takes the database ping and an optional redis ping (nil when redis is disabled).
func NewHealthHandler(database, redis PingFunc) *HealthHandler {
	return &HealthHandler{
		database: database,
		redis:    redis,
		timeout:  5 * time.Second,
	}
}

// HealthCheck reports 503 when the database is unreachable. Redis only backs the
// rate limiter, which falls back to memory, so it never fails the check.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response := HealthCheckResponse{
		Status:    statusHealthy,
		Version:   constants.AppVersion,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]HealthCheck),
	}

	dbStatus := check(ctx, "database", h.database)
	response.Checks["database"] = dbStatus
	if dbStatus.Status != statusHealthy {
		response.Status = statusUnhealthy
	}

	if h.redis == nil {
		response.Checks["redis"] = HealthCheck{Status: statusDisabled}
	} else {
		response.Checks["redis"] = check(ctx, "redis", h.redis)
	}

	statusCode := http.StatusOK
	if response.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}

func check(ctx context.Context, name string, ping PingFunc) HealthCheck {
	if ping == nil {
		return HealthCheck{Status: statusUnhealthy, Message: name + " not initialized"}
	}
	if err := ping(ctx); err != nil {
		logger.GetLogger().Error("Health check failed", zap.String("dependency", name), zap.Error(err))
		return HealthCheck{Status: statusUnhealthy, Message: name + " ping failed"}
	}
	return HealthCheck{Status: statusHealthy}
}
