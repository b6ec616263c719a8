package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/vibcheck/cache"
	"github.com/use-agent/vibcheck/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status is "failing" when the latest run errored or failed its checks,
// "idle" before the first run finishes.
func Health(store *cache.Store, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "idle"
		if latest, ok := store.Latest(); ok {
			status = "passing"
			if !latest.Succeeded() {
				status = "failing"
			}
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Runs:    store.Len(),
			Version: Version,
		})
	}
}
