package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database connection
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthCheck returns 200 while the database answers and 503 otherwise
func HealthCheck(db Pinger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, Response{
				OK:    false,
				Error: "database unavailable",
				Code:  "UNAVAILABLE",
				Data:  gin.H{"status": "unhealthy", "database": "unhealthy"},
			})
			return
		}

		respondOK(c, http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
