// Package server builds the HTTP surface of the exporter.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resighting-export/internal/runs"
	"resighting-export/internal/services/health"
	"resighting-export/internal/shared/config"
	"resighting-export/internal/shared/metrics"
	"resighting-export/internal/shared/server/middleware"
	"resighting-export/internal/shared/server/respond"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config      config.Config
	RunsHandler *runs.Handler
	Health      *health.Service
	// Limiter is shared across routers in tests; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(0)
	}
	api.GET("/health", func(c *gin.Context) {
		ok, checks := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	})

	if deps.RunsHandler != nil {
		deps.RunsHandler.RegisterPage(r, "/")
		var guards []gin.HandlerFunc
		if deps.Config.ExportsPerMinute > 0 {
			rule := middleware.RateLimitRule{
				Rate:  float64(deps.Config.ExportsPerMinute) / 60.0,
				Burst: max(deps.Config.ExportBurst, 1),
			}
			guards = append(guards, middleware.Throttle(rule, deps.Limiter))
		}
		deps.RunsHandler.RegisterRoutes(api, guards...)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
