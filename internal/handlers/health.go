package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "storefront-service"

// ReadinessCheck reports whether one dependency is usable
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	checks   map[string]ReadinessCheck
	optional map[string]bool
}

// NewHealthHandler creates a health handler with no dependency checks
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: map[string]ReadinessCheck{}, optional: map[string]bool{}}
}

// WithCheck registers a dependency. Optional dependencies are reported but
// never fail readiness.
func (h *HealthHandler) WithCheck(name string, optional bool, check ReadinessCheck) *HealthHandler {
	h.checks[name] = check
	h.optional[name] = optional
	return h
}

// DatabaseCheck pings the database behind db
func DatabaseCheck(db *gorm.DB) ReadinessCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// RedisCheck pings redis
func RedisCheck(client *redis.Client) ReadinessCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Health handles liveness checks
// @Summary Health check endpoint
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": "1.0.0",
	})
}

// Ready handles readiness checks
// @Summary Readiness check endpoint
// @Description Check that the database and cache are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			if !h.optional[name] {
				status = http.StatusServiceUnavailable
			}
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": serviceName,
		"checks":  results,
	})
}
