package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/vibcheck/api/handler"
	"github.com/use-agent/vibcheck/api/middleware"
	"github.com/use-agent/vibcheck/cache"
	"github.com/use-agent/vibcheck/config"
)

// NewRouter creates a configured Gin engine serving run results while the
// browser is held open.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if keys are configured) → RateLimit
//
// Health stays outside auth so probes always work.
func NewRouter(store *cache.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(store, startTime))

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Server.APIKeys))
	protected.Use(middleware.RateLimit(cfg.Server.RequestsPerSecond, cfg.Server.Burst))

	protected.GET("/runs/latest", handler.LatestRun(store))
	protected.GET("/runs/:id", handler.GetRun(store))
	protected.GET("/screenshots/:name", handler.Screenshot(store))

	return r
}
