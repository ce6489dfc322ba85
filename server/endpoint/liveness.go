package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Liveness answers the orchestrator's liveness check. It never consults
// upstream providers; a missing credential makes /health degraded, not the
// process dead. The goroutine count exposes leaked capture or countdown
// goroutines.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "alive",
			"service":        serviceName,
			"uptime_seconds": int64(time.Since(startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
		})
	}
}
