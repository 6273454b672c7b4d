package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

type Pinger interface {
	Ping() error
}

type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

type BreakerReporter interface {
	BreakerState() string
}

// HealthDeps are the components /health/ready reports on. Cache and
// Breaker are optional.
type HealthDeps struct {
	Database Pinger
	Cache    CacheChecker
	Breaker  BreakerReporter
}

// SetupHealthRoutes registers health check endpoints and /metrics
func SetupHealthRoutes(router *gin.Engine, deps HealthDeps) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	})

	// The database is required; a failing cache only degrades realtime
	// fan-out to the local instance.
	router.GET("/health/ready", func(c *gin.Context) {
		resp := HealthResponse{
			Status:     "ready",
			Timestamp:  time.Now().UTC(),
			Components: map[string]string{"database": "up"},
		}
		status := http.StatusOK

		if err := deps.Database.Ping(); err != nil {
			resp.Status = "unavailable"
			resp.Components["database"] = "down"
			status = http.StatusServiceUnavailable
		}

		if deps.Cache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			resp.Components["cache"] = "up"
			if err := deps.Cache.HealthCheck(ctx); err != nil {
				resp.Components["cache"] = "down"
				if status == http.StatusOK {
					resp.Status = "degraded"
				}
			}
		}

		if deps.Breaker != nil {
			resp.Components["realtime_publish"] = deps.Breaker.BreakerState()
		}

		c.JSON(status, resp)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
