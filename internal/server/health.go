package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/monitoring"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
}

// RegisterHealthRoutes adds the health endpoints to a Gin router.
// Endpoints:
//   - GET /health - status, timestamp, service name, version, uptime
//   - HEAD /health - lightweight check for load balancers
//   - GET /health/memory - runtime memory statistics
func RegisterHealthRoutes(router gin.IRoutes, serviceName, version string, startTime time.Time) {
	router.GET("/health", healthHandler(serviceName, version, startTime))
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health/memory", gin.WrapF(monitoring.MemoryHealthHandler))
}

func healthHandler(serviceName, version string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Service:   serviceName,
			Version:   version,
			Uptime:    formatUptime(now.Sub(startTime)),
		})
	}
}

// formatUptime renders d as "3d 4h 5m", "4h 5m", "5m 6s" or "6s".
func formatUptime(d time.Duration) string {
	const hoursPerDay = 24

	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
