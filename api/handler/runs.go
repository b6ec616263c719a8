package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/vibcheck/cache"
	"github.com/use-agent/vibcheck/models"
)

// LatestRun returns a handler for GET /api/v1/runs/latest.
func LatestRun(store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := store.Latest()
		if !ok {
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "no run has finished yet")
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

// GetRun returns a handler for GET /api/v1/runs/:id.
func GetRun(store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := store.Get(c.Param("id"))
		if !ok {
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "run not found")
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

// Screenshot returns a handler for GET /api/v1/screenshots/:name.
//
// Only files recorded by the latest run are served, so the name can never
// reach outside the output directory.
func Screenshot(store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		run, ok := store.Latest()
		if !ok {
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "no run has finished yet")
			return
		}
		for _, shot := range run.Screenshots {
			if filepath.Base(shot.File) == name {
				c.File(shot.File)
				return
			}
		}
		respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "screenshot not captured in latest run")
	}
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: msg},
	})
}
