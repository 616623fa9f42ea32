package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omkarr10/Vagabond/internal/database"
	"github.com/omkarr10/Vagabond/internal/redisx"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db      *database.PostgresDB
	redis   *redisx.Client // nil when redis is not configured
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redis *redisx.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, version: version}
}

// Health is the liveness probe
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready is the readiness probe; it checks the backing stores
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
